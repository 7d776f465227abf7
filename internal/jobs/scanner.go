// Package jobs implements the scheduled reminder scans: all-users sweeps
// that evaluate the threshold predicates and hand qualifying users to the
// push notifier. Delivery is best-effort and at-most-once; a per-user
// failure is recorded and the sweep continues.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"coachtrack/internal/domain"
	"coachtrack/internal/metrics"
	"coachtrack/internal/notify"
	"coachtrack/internal/repository"
)

// Outcome classifies what happened to one user during a scan.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ScanResult is the typed per-user record of a sweep. Failures are
// collected, never propagated.
type ScanResult struct {
	UserID  string
	Outcome Outcome
	Reason  string
	Err     error
}

// ScanReport summarizes one scan run.
type ScanReport struct {
	Scan     string
	Started  time.Time
	Finished time.Time
	Results  []ScanResult
}

// Counts returns the number of sent, skipped and failed users.
func (r *ScanReport) Counts() (sent, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSent:
			sent++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return
}

// Log writes the run summary.
func (r *ScanReport) Log() {
	sent, skipped, failed := r.Counts()
	log.Printf("INFO: scan %q finished in %s: %d sent, %d skipped, %d failed",
		r.Scan, r.Finished.Sub(r.Started), sent, skipped, failed)
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			log.Printf("WARN: scan %q: user %s failed: %v", r.Scan, res.UserID, res.Err)
		}
	}
}

// Scanner runs the reminder sweeps.
type Scanner struct {
	users        repository.UserRepository
	daily        repository.DailyRecordRepository
	weekly       repository.WeeklyRecordRepository
	notifier     notify.Notifier
	historyLimit int
	loc          *time.Location
	now          func() time.Time
}

// NewScanner creates a Scanner. The location defines the civil-day boundary
// every predicate is evaluated against.
func NewScanner(
	users repository.UserRepository,
	daily repository.DailyRecordRepository,
	weekly repository.WeeklyRecordRepository,
	notifier notify.Notifier,
	historyLimit int,
	loc *time.Location,
) *Scanner {
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &Scanner{
		users:        users,
		daily:        daily,
		weekly:       weekly,
		notifier:     notifier,
		historyLimit: historyLimit,
		loc:          loc,
		now:          time.Now,
	}
}

// Scan names accepted by Run.
const (
	ScanInactivity   = "inactivity"
	ScanWorkout      = "workout"
	ScanDiet         = "diet"
	ScanHydration    = "hydration"
	ScanWeekly       = "weekly"
	ScanCheckinDue   = "checkin-due"
	ScanCoachSummary = "coach-summary"
)

// Run dispatches a scan by name. Used by the cron entries and the manual
// admin trigger alike.
func (s *Scanner) Run(ctx context.Context, name string) (*ScanReport, error) {
	switch name {
	case ScanInactivity:
		return s.InactivityScan(ctx), nil
	case ScanWorkout:
		return s.WorkoutScan(ctx), nil
	case ScanDiet:
		return s.DietScan(ctx), nil
	case ScanHydration:
		return s.HydrationScan(ctx), nil
	case ScanWeekly:
		return s.WeeklyReflectionScan(ctx), nil
	case ScanCheckinDue:
		return s.CheckinDueScan(ctx), nil
	case ScanCoachSummary:
		return s.CoachSummaryScan(ctx), nil
	default:
		return nil, fmt.Errorf("unknown scan %q", name)
	}
}

// InactivityScan reminds clients who have not filed a daily record in
// at least 4 days.
func (s *Scanner) InactivityScan(ctx context.Context) *ScanReport {
	return s.metricScan(ctx, ScanInactivity,
		func(snap metrics.Snapshot) bool { return snap.Inactive() },
		notify.Notification{
			Title:   "We miss your check-ins!",
			Message: "You have not logged a daily entry in a few days. A quick log keeps your coach in the loop.",
			URL:     "/daily",
		})
}

// WorkoutScan reminds clients whose last logged workout is at least 5 days old.
func (s *Scanner) WorkoutScan(ctx context.Context) *ScanReport {
	return s.metricScan(ctx, ScanWorkout,
		func(snap metrics.Snapshot) bool { return snap.WorkoutLapsed() },
		notify.Notification{
			Title:   "Time to train",
			Message: "No workout logged for 5 days. Even a short session counts.",
			URL:     "/daily",
		})
}

// DietScan reminds clients whose last fully compliant day is at least 5 days old.
func (s *Scanner) DietScan(ctx context.Context) *ScanReport {
	return s.metricScan(ctx, ScanDiet,
		func(snap metrics.Snapshot) bool { return snap.DietLapsed() },
		notify.Notification{
			Title:   "Back on track",
			Message: "It has been a while since a fully compliant day. Tomorrow is a good day to reset.",
			URL:     "/daily",
		})
}

// HydrationScan reminds clients who have not hit their water target in
// at least 3 days.
func (s *Scanner) HydrationScan(ctx context.Context) *ScanReport {
	return s.metricScan(ctx, ScanHydration,
		func(snap metrics.Snapshot) bool { return snap.HydrationLapsed() },
		notify.Notification{
			Title:   "Drink up",
			Message: "Your water target has not been met for a few days.",
			URL:     "/daily",
		})
}

/// metricScan is the shared sweep shape: fetch window, compute, branch, send.
func (s *Scanner) metricScan(ctx context.Context, name string, fires func(metrics.Snapshot) bool, n notify.Notification) *ScanReport {
	report := &ScanReport{Scan: name, Started: s.now()}
	defer func() {
		report.Finished = s.now()
		report.Log()
	}()

	clients, err := s.users.ListActiveClients(ctx)
	if err != nil {
		report.Results = append(report.Results, ScanResult{Outcome: OutcomeFailed, Reason: "list clients", Err: err})
		return report
	}

	now := s.now()
	for _, client := range clients {
		id := client.ID.Hex()

		records, err := s.daily.ListRecent(ctx, client.ID, s.historyLimit)
		if err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "fetch history", Err: err})
			continue
		}

		snap := metrics.Compute(records, client.WaterTargetLiters, now, s.loc)
		if snap.Empty() {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "no history"})
			continue
		}
		if !fires(snap) {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "predicate not met"})
			continue
		}

		if err := s.notifier.NotifyUser(ctx, id, n); err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "send", Err: err})
			continue
		}
		report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSent})
	}
	return report
}

// WeeklyReflectionScan reminds clients who have not submitted this week's
// reflection. Existence check, not a computed metric.
func (s *Scanner) WeeklyReflectionScan(ctx context.Context) *ScanReport {
	report := &ScanReport{Scan: ScanWeekly, Started: s.now()}
	defer func() {
		report.Finished = s.now()
		report.Log()
	}()

	clients, err := s.users.ListActiveClients(ctx)
	if err != nil {
		report.Results = append(report.Results, ScanResult{Outcome: OutcomeFailed, Reason: "list clients", Err: err})
		return report
	}

	week := domain.WeekKey(s.now(), s.loc)
	for _, client := range clients {
		id := client.ID.Hex()

		exists, err := s.weekly.ExistsForWeek(ctx, client.ID, week)
		if err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "existence check", Err: err})
			continue
		}
		if exists {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "already submitted"})
			continue
		}

		err = s.notifier.NotifyUser(ctx, id, notify.Notification{
			Title:   "Weekly reflection",
			Message: "Your weekly reflection has not been filled in yet.",
			URL:     "/weekly",
		})
		if err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "send", Err: err})
			continue
		}
		report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSent})
	}
	return report
}

// CheckinDueScan reminds clients whose cached next-check-in date is today
// or in the past.
func (s *Scanner) CheckinDueScan(ctx context.Context) *ScanReport {
	report := &ScanReport{Scan: ScanCheckinDue, Started: s.now()}
	defer func() {
		report.Finished = s.now()
		report.Log()
	}()

	clients, err := s.users.ListActiveClients(ctx)
	if err != nil {
		report.Results = append(report.Results, ScanResult{Outcome: OutcomeFailed, Reason: "list clients", Err: err})
		return report
	}

	now := s.now()
	for _, client := range clients {
		id := client.ID.Hex()

		if client.NextCheckinAt == nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "no check-in scheduled"})
			continue
		}
		if domain.CivilDaysBetween(now, *client.NextCheckinAt, s.loc) < 0 {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "not due yet"})
			continue
		}

		err := s.notifier.NotifyUser(ctx, id, notify.Notification{
			Title:   "Check-in due",
			Message: "Your next check-in with your coach is due. Book a slot!",
			URL:     "/checkins",
		})
		if err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "send", Err: err})
			continue
		}
		report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSent})
	}
	return report
}

// CoachSummaryScan sends each coach an aggregated count of flagged clients.
func (s *Scanner) CoachSummaryScan(ctx context.Context) *ScanReport {
	report := &ScanReport{Scan: ScanCoachSummary, Started: s.now()}
	defer func() {
		report.Finished = s.now()
		report.Log()
	}()

	coaches, err := s.users.ListByRole(ctx, domain.RoleCoach)
	if err != nil {
		report.Results = append(report.Results, ScanResult{Outcome: OutcomeFailed, Reason: "list coaches", Err: err})
		return report
	}

	now := s.now()
	for _, coach := range coaches {
		id := coach.ID.Hex()

		clients, err := s.users.GetClientsByCoachID(ctx, coach.ID)
		if err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "list clients", Err: err})
			continue
		}
		if len(clients) == 0 {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "no clients"})
			continue
		}

		flagged := 0
		for _, client := range clients {
			records, err := s.daily.ListRecent(ctx, client.ID, s.historyLimit)
			if err != nil {
				// A single bad client must not sink the coach's summary.
				continue
			}
			snap := metrics.Compute(records, client.WaterTargetLiters, now, s.loc)
			if snap.Inactive() || snap.WorkoutLapsed() || snap.DietLapsed() || snap.HydrationLapsed() {
				flagged++
			}
		}
		if flagged == 0 {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSkipped, Reason: "nothing flagged"})
			continue
		}

		err = s.notifier.NotifyUser(ctx, id, notify.Notification{
			Title:   "Client summary",
			Message: fmt.Sprintf("%d of your %d clients need attention.", flagged, len(clients)),
			URL:     "/dashboard",
		})
		if err != nil {
			report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeFailed, Reason: "send", Err: err})
			continue
		}
		report.Results = append(report.Results, ScanResult{UserID: id, Outcome: OutcomeSent})
	}
	return report
}
