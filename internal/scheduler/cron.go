package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/controllers"
)

// releaseWindow is how far back each scan looks. Slightly over one day so
// a delayed run cannot miss a release between two daily scans.
const releaseWindow = 26 * time.Hour

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	notifyCtrl       *controllers.NotifyController
	releaseCheckSpec string
	logger           *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(notifyCtrl *controllers.NotifyController, releaseCheckSpec string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		notifyCtrl:       notifyCtrl,
		releaseCheckSpec: releaseCheckSpec,
		logger:           logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.releaseCheckSpec, func() {
		s.runReleaseCheck()
	})
	if err != nil {
		return fmt.Errorf("failed to add release check job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("spec", s.releaseCheckSpec).Info("Scheduler started")

	// Run an initial scan immediately so a restart never skips a day
	go s.runReleaseCheck()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runReleaseCheck executes the release notification job
func (s *Scheduler) runReleaseCheck() {
	s.logger.Info("Running scheduled release check")
	ctx := context.Background()

	if err := s.notifyCtrl.CheckReleases(ctx, releaseWindow); err != nil {
		s.logger.WithError(err).Error("Release check failed")
	} else {
		s.logger.Info("Release check completed")
	}
}
