// Package cleanup runs the sync log retention in the background.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const maxRestarts = 3

type Notifier interface {
	Notify(text string)
}

type Service struct {
	db       *sqlx.DB
	keepDays int
	interval time.Duration
	notifier Notifier
	now      func() time.Time
}

func NewService(db *sqlx.DB, keepDays int, interval time.Duration, notifier Notifier) *Service {
	return &Service{
		db:       db,
		keepDays: keepDays,
		interval: interval,
		notifier: notifier,
		now:      time.Now,
	}
}

// RunOnce deletes the sync log entries older than keepDays.
func (s *Service) RunOnce() (int64, error) {
	logger := logging.GetLogger()
	logger.Debug("Start cleanup.RunOnce")
	defer logger.Debug("End cleanup.RunOnce")

	if s.keepDays <= 0 {
		return 0, nil
	}
	before := s.now().AddDate(0, 0, -s.keepDays)
	n, err := synclog.DeleteOlderThan(s.db, before)
	if err != nil {
		return 0, errors.Wrap(err, "failed synclog.DeleteOlderThan")
	}
	if n > 0 {
		logger.Infof("Removed %d sync log entries older than %s", n, before.Format(synclog.TimestampLayout))
	}
	return n, nil
}

// Run cleans up every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	logger := logging.GetLogger()
	logger.Info("Start Service Cleanup")
	defer logger.Info("End Service Cleanup")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(); err != nil {
			logger.Errorf("failed cleanup: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunWithRecovered restarts Run after a panic, giving up after maxRestarts.
func (s *Service) RunWithRecovered(ctx context.Context) {
	logger := logging.GetLogger()
	logger.Info("Start Service CleanupWithRecovered")
	defer logger.Info("End Service CleanupWithRecovered")

	for index := 0; index < maxRestarts; index++ {
		if !s.runRecovered(ctx) {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	s.notify("Cleanup service restarts stopped")
}

// runRecovered reports whether Run ended with a panic.
func (s *Service) runRecovered(ctx context.Context) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			logging.GetLogger().Errorf("cleanup panic: %v", r)
			s.notify(fmt.Sprintf("Cleanup service failed and will be restarted, error: %v", r))
		}
	}()
	s.Run(ctx)
	return false
}

func (s *Service) notify(text string) {
	if s.notifier != nil {
		s.notifier.Notify(text)
	}
}
