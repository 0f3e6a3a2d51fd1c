package infra

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"cncsignals/internal/usecase"
)

// Snapshotter is implemented by stores that can write a backup copy of
// themselves (the file driver).
type Snapshotter interface {
	Snapshot(dir string) (string, error)
}

// Scheduler runs the background maintenance jobs: periodic store backups
// and a nightly stats reconciliation sweep. The daily quota reset is NOT
// scheduled here; it stays lazy, evaluated on access.
type Scheduler struct {
	cron      *cron.Cron
	sessions  *usecase.SessionService
	snapshots Snapshotter // nil when the store driver has no backups
	backupDir string
}

// NewScheduler creates a new maintenance scheduler.
func NewScheduler(sessions *usecase.SessionService, snapshots Snapshotter, backupDir string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		sessions:  sessions,
		snapshots: snapshots,
		backupDir: backupDir,
	}
}

// Start registers and starts the maintenance jobs.
func (s *Scheduler) Start() error {
	// Hourly store backup (file driver only).
	if s.snapshots != nil {
		if _, err := s.cron.AddFunc("0 * * * *", s.runBackup); err != nil {
			return err
		}
	}

	// Nightly sweep: re-derive every identity's stats from its persisted
	// history and repair drift. Never touches usage counters.
	if _, err := s.cron.AddFunc("30 3 * * *", s.runReconcile); err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("maintenance scheduler started",
		"backups", s.snapshots != nil)
	return nil
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	slog.Info("maintenance scheduler stopped")
}

func (s *Scheduler) runBackup() {
	path, err := s.snapshots.Snapshot(s.backupDir)
	if err != nil {
		slog.Error("store backup failed", "error", err)
		return
	}
	slog.Info("store backup written", "path", path)
}

func (s *Scheduler) runReconcile() {
	repaired, err := s.sessions.ReconcileStats()
	if err != nil {
		slog.Error("stats reconciliation failed", "error", err)
		return
	}
	if repaired > 0 {
		slog.Info("stats reconciliation repaired drift", "identities", repaired)
	}
}
