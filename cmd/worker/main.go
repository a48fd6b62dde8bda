package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/campaign"
	"bitbucket.org/mmdatafocus/crm_backend/config"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8081"

// Standalone campaign worker. Runs the same per-minute sweep as the main
// server; deploy either this or the in-server cron, not both, unless Redis
// locking is configured.
func main() {
	port := os.Getenv("WORKER_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Health endpoint only; this process serves no app traffic.
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("health server stopped: " + err.Error())
		}
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	worker := campaign.NewWorker()
	if err := worker.Start(); err != nil {
		logger.WithFields(logrus.Fields{"field": "campaign"}).Panic("failed to start campaign worker: " + err.Error())
	}
	log.Println("Campaign worker started")

	<-sigCtx.Done()

	// Let any in-flight sweep finish before dropping connections.
	<-worker.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
