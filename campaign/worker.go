package campaign

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Worker sweeps every tenant once a minute and advances active campaigns.
// Tenants run sequentially; per-campaign advisory locks keep replicated
// workers from double-processing a campaign within one tick.
type Worker struct {
	cron      *cron.Cron
	providers []EmailProvider
	lockTTL   time.Duration
}

func NewWorker() *Worker {
	return &Worker{
		cron: cron.New(),
		// O365 first, Gmail fallback. Order matters.
		providers: []EmailProvider{NewO365Provider(), NewGmailProvider()},
		lockTTL:   55 * time.Second,
	}
}

// Start registers the per-minute sweep and starts the scheduler.
func (w *Worker) Start() error {
	_, err := w.cron.AddFunc("* * * * *", func() {
		w.CheckAndProcessCampaigns(context.Background())
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

func (w *Worker) Stop() context.Context {
	return w.cron.Stop()
}

// CheckAndProcessCampaigns is one sweep over all tenants. A failing tenant
// is logged and skipped; the sweep continues.
func (w *Worker) CheckAndProcessCampaigns(ctx context.Context) {
	logger := config.GetLogger()
	tenantIds, err := config.ListTenantIds(ctx)
	if err != nil {
		config.LogError(logger, "worker.go", "CheckAndProcessCampaigns", "ListTenantIds", nil, err)
		return
	}
	for _, tenantId := range tenantIds {
		db, err := config.GetTenantDB(tenantId)
		if err != nil {
			config.LogError(logger, "worker.go", "CheckAndProcessCampaigns", "GetTenantDB", tenantId, err)
			continue
		}
		if err := w.processTenant(ctx, tenantId, db); err != nil {
			config.LogError(logger, "worker.go", "CheckAndProcessCampaigns", "ProcessTenant", tenantId, err)
		}
	}
}

func (w *Worker) processTenant(ctx context.Context, tenantId string, db *gorm.DB) error {
	campaigns, err := models.FindActiveCampaigns(db)
	if err != nil {
		return err
	}
	logger := config.GetLogger()
	for _, campaign := range campaigns {
		release, ok := w.acquireCampaignLock(ctx, tenantId, campaign.ID.String())
		if !ok {
			continue
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return w.processCampaign(ctx, tx, campaign, time.Now().UTC())
		})
		release()
		if err != nil {
			config.LogError(logger, "worker.go", "processTenant", "ProcessCampaign", campaign.ID, err)
		}
	}
	return nil
}

// acquireCampaignLock takes the per-campaign advisory lock for this tick.
// With no Redis configured the lock degrades to a no-op, which is safe for
// a single worker.
func (w *Worker) acquireCampaignLock(ctx context.Context, tenantId, campaignId string) (func(), bool) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, true
	}
	lock, err := locker.Obtain(ctx, "campaign-send:"+tenantId+":"+campaignId, w.lockTTL, nil)
	if err != nil {
		if !errors.Is(err, redislock.ErrNotObtained) {
			config.LogError(config.GetLogger(), "worker.go", "acquireCampaignLock", "Obtain", campaignId, err)
		}
		return nil, false
	}
	return func() { _ = lock.Release(ctx) }, true
}

// processCampaign advances one campaign by at most one batch.
func (w *Worker) processCampaign(ctx context.Context, tx *gorm.DB, campaign *models.Campaign, now time.Time) error {
	if campaign.Status == models.CampaignStatusScheduled {
		if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(now) {
			return nil
		}
		err := tx.Model(&models.Campaign{}).Where("id = ?", campaign.ID).
			Update("status", models.CampaignStatusSending).Error
		if err != nil {
			return err
		}
		campaign.Status = models.CampaignStatusSending
	}

	sendLog, err := models.GetOrCreateSendLog(tx, campaign.ID, now)
	if err != nil {
		return err
	}
	remainingToday := campaign.DailyCap() - sendLog.EmailsSent
	if remainingToday <= 0 {
		return nil
	}

	batchSize := ComputeBatchSize(campaign.SendPace, remainingToday)
	recipients, err := models.FindPendingRecipients(tx, campaign.ID, batchSize)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return w.completeCampaign(tx, campaign)
	}

	sent := 0
	for _, recipient := range recipients {
		if w.sendToRecipient(ctx, tx, campaign, recipient, now) {
			sent++
		}
	}
	if sent > 0 {
		err := tx.Model(&models.CampaignSendLog{}).Where("id = ?", sendLog.ID).
			Updates(map[string]any{
				"emails_sent":  gorm.Expr("emails_sent + ?", sent),
				"last_sent_at": now,
			}).Error
		if err != nil {
			return err
		}
	}

	pending, err := models.CountPendingRecipients(tx, campaign.ID)
	if err != nil {
		return err
	}
	if pending == 0 {
		return w.completeCampaign(tx, campaign)
	}
	return nil
}

func (w *Worker) completeCampaign(tx *gorm.DB, campaign *models.Campaign) error {
	return tx.Model(&models.Campaign{}).Where("id = ?", campaign.ID).
		Update("status", models.CampaignStatusCompleted).Error
}

// sendToRecipient attempts one send through the provider chain and marks
// the recipient terminally. Transport failures fail the recipient, never
// the campaign.
func (w *Worker) sendToRecipient(ctx context.Context, tx *gorm.DB, campaign *models.Campaign, recipient *models.CampaignRecipient, now time.Time) bool {
	logger := config.GetLogger()
	if recipient.Contact == nil || recipient.Contact.Email == "" {
		w.markRecipient(tx, recipient, models.EmailStatusFailed, nil)
		return false
	}

	body := campaign.EmailBody
	if recipient.PersonalizedContent != "" {
		body = recipient.PersonalizedContent
	}

	for _, provider := range w.providers {
		sender, err := provider.Prepare(ctx, tx, campaign.OwnerId)
		if err != nil {
			config.LogError(logger, "worker.go", "sendToRecipient", "Prepare "+provider.Name(), campaign.OwnerId, err)
			continue
		}
		if sender == nil {
			continue
		}
		err = provider.Send(ctx, sender, recipient.Contact.Email, campaign.EmailSubject, body)
		if err != nil {
			config.LogError(logger, "worker.go", "sendToRecipient", "Send "+provider.Name(), recipient.ID, err)
			w.markRecipient(tx, recipient, models.EmailStatusFailed, nil)
			return false
		}
		w.markRecipient(tx, recipient, models.EmailStatusSent, &now)
		return true
	}

	// No provider had a usable token.
	w.markRecipient(tx, recipient, models.EmailStatusFailed, nil)
	return false
}

func (w *Worker) markRecipient(tx *gorm.DB, recipient *models.CampaignRecipient, status models.EmailStatus, sentAt *time.Time) {
	updates := map[string]any{"email_status": status}
	if sentAt != nil {
		updates["sent_at"] = *sentAt
	}
	err := tx.Model(&models.CampaignRecipient{}).Where("id = ?", recipient.ID).
		Updates(updates).Error
	if err != nil {
		config.LogError(config.GetLogger(), "worker.go", "markRecipient", "UpdateRecipient", recipient.ID, err)
	}
	recipient.EmailStatus = status
	recipient.SentAt = sentAt
}

// ComputeBatchSize spreads a campaign's hourly pace over the 60 ticks of
// an hour, clamped by what the daily cap still allows today.
func ComputeBatchSize(pace models.SendPace, remainingToday int) int {
	hourly, ok := models.PaceLimits[pace]
	if !ok {
		hourly = models.PaceLimits[models.SendPaceSlow]
	}
	batch := hourly / 60
	if batch < 1 {
		batch = 1
	}
	if batch > remainingToday {
		batch = remainingToday
	}
	return batch
}
