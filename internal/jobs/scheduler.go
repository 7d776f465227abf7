package jobs

import (
	"context"
	"log"
	"time"

	"coachtrack/internal/config"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the reminder scans on fixed cron expressions, all
// evaluated in the canonical timezone. The cron library's single-fire
// behavior is the only dedup mechanism; a manual re-trigger will re-send.
type Scheduler struct {
	cron    *cron.Cron
	scanner *Scanner
}

// NewScheduler wires the configured cron entries. Invalid expressions fail
// construction so a typo is caught at startup, not at first fire.
func NewScheduler(scanner *Scanner, cfg config.JobsConfig, loc *time.Location) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))
	s := &Scheduler{cron: c, scanner: scanner}

	entries := []struct {
		spec string
		scan string
	}{
		{cfg.InactivityCron, ScanInactivity},
		{cfg.WorkoutCron, ScanWorkout},
		{cfg.DietCron, ScanDiet},
		{cfg.HydrationCron, ScanHydration},
		{cfg.WeeklyCron, ScanWeekly},
		{cfg.CheckinDueCron, ScanCheckinDue},
		{cfg.CoachSummaryCron, ScanCoachSummary},
	}

	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		scan := e.scan
		_, err := c.AddFunc(e.spec, func() {
			// Each run gets a fresh context; there is no persisted cursor
			// between runs.
			if _, err := s.scanner.Run(context.Background(), scan); err != nil {
				log.Printf("ERROR: scheduled scan %q: %v", scan, err)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start begins firing the cron entries.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("INFO: reminder scheduler started with %d entries", len(s.cron.Entries()))
}

// Stop halts the scheduler and waits for any running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("INFO: reminder scheduler stopped")
}
