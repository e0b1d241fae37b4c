package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"roomsizes/config"
	"roomsizes/models"
	"roomsizes/services"
	"roomsizes/storage"
)

// Scheduler computes a periodic stats digest and files it in the local
// digest store for operational history.
type Scheduler struct {
	cfg       config.DigestConfig
	analytics *services.AnalyticsService
	store     *storage.DigestStore
	cron      *cron.Cron
}

func New(cfg config.DigestConfig, analytics *services.AnalyticsService, store *storage.DigestStore) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		analytics: analytics,
		store:     store,
		cron:      cron.New(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron == "" {
		log.Println("Digest scheduler disabled (no cron expression)")
		return nil
	}

	log.Printf("Starting digest scheduler with cron: %s", s.cfg.Cron)
	_, err := s.cron.AddFunc(s.cfg.Cron, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("Digest run error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	s.cron.Start()
	return nil
}

// RunOnce computes the 7d report and stores it as a digest row.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	report, err := s.analytics.Report(ctx, models.Period7D)
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	digest := &models.StatsDigest{
		Period:     models.Period7D,
		ComputedAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := s.store.InsertDigest(digest); err != nil {
		return fmt.Errorf("store digest: %w", err)
	}

	log.Printf("Stored stats digest %d (period %s, %d searches)", digest.ID, models.Period7D, report.Stats.TotalSearches)
	return nil
}

func (s *Scheduler) Stop() {
	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(5 * time.Second):
		log.Println("Digest scheduler stop timed out")
	}
}
