package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/dedup"
	"bitbucket.org/mmdatafocus/crm_backend/embedding"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/vectorstore"
	"github.com/google/uuid"
)

// Ops tool: run a duplicate-job scan for one tenant and print the groups,
// or find candidates similar to a single job with --job-id.
func main() {
	tenantId := flag.String("tenant-id", "", "Required: tenant id")
	jobIdStr := flag.String("job-id", "", "Optional: scan a single job instead of the whole tenant")
	statusCsv := flag.String("status", "", "Optional: comma-separated job statuses to scan")
	days := flag.Int("days", 0, "Optional: only scan jobs created within this many days")
	flag.Parse()

	if strings.TrimSpace(*tenantId) == "" {
		fmt.Fprintln(os.Stderr, "--tenant-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db, err := config.GetTenantDB(*tenantId)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open tenant pool: %v\n", err)
		os.Exit(1)
	}

	cfg := config.GetVectorConfig()
	service := dedup.NewService(
		db,
		*tenantId,
		embedding.NewVoyageClient(cfg.VoyageApiKey),
		vectorstore.NewQdrantStore(cfg.VectorUrl, cfg.VectorApiKey),
		cfg,
	)

	ctx := context.Background()
	if strings.TrimSpace(*jobIdStr) != "" {
		jobId, err := uuid.Parse(strings.TrimSpace(*jobIdStr))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid job id: %v\n", err)
			os.Exit(1)
		}
		results, err := service.FindSimilarJobs(ctx, jobId)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d similar job(s) for %s\n", len(results), jobId)
		for _, result := range results {
			fmt.Printf("  %s score=%.4f reasons=%s\n", result.JobId, result.Score, strings.Join(result.MatchReasons, "; "))
		}
		return
	}

	var statuses []models.JobStatus
	for _, s := range strings.Split(*statusCsv, ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, models.JobStatus(s))
		}
	}
	groups, err := service.ScanForDuplicates(ctx, statuses, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d duplicate group(s)\n", len(groups))
	for i, group := range groups {
		fmt.Printf("group %d confidence=%.4f\n", i+1, group.Confidence)
		for _, id := range group.JobIds {
			fmt.Printf("  %s\n", id)
		}
		for _, reason := range group.MatchReasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
}
