package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/services"
	"github.com/go-co-op/gocron"
)

// Refresh periods. The three jobs run independently; a slow or failing
// cycle on one never delays the others.
const (
	ExchangeRateInterval = 1 * time.Hour
	MarketsInterval      = 5 * time.Minute
	AnalysisInterval     = 4 * time.Hour

	jobTimeout = 2 * time.Minute
)

// Scheduler manages the recurring cache refresh jobs.
type Scheduler struct {
	cron      *gocron.Scheduler
	refresher *services.RefreshService
}

// NewScheduler creates a new scheduler instance
func NewScheduler(refresher *services.RefreshService) *Scheduler {
	return &Scheduler{
		cron:      gocron.NewScheduler(time.UTC),
		refresher: refresher,
	}
}

// Start registers all refresh jobs and starts them asynchronously.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	s.cron.Every(ExchangeRateInterval).Do(func() {
		s.runJob("exchange rate refresh", s.refresher.RefreshExchangeRate)
	})

	s.cron.Every(MarketsInterval).Do(func() {
		s.runJob("markets refresh", s.refresher.RefreshMarkets)
	})

	s.cron.Every(AnalysisInterval).Do(func() {
		s.runJob("analysis regeneration", func(ctx context.Context) {
			s.refresher.RegenerateAnalysis(ctx)
		})
	})

	s.cron.StartAsync()
	log.Println("Scheduler started successfully")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// runJob bounds a job with a timeout and absorbs panics so one failing
// cycle cannot cancel future ticks.
func (s *Scheduler) runJob(name string, job func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in %s: %v", name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	job(ctx)
	log.Printf("Completed %s in %v", name, time.Since(start))
}
