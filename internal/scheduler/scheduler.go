package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/telconova/notifier/internal/config"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/senders"
	"github.com/telconova/notifier/internal/services"
)

// Scheduler drives the two periodic delivery passes. Each pass is
// non-reentrant (a tick is skipped while the previous run of the same pass is
// still executing); the two passes may run concurrently with each other.
type Scheduler struct {
	cron     *cron.Cron
	registry *senders.Registry
	limiter  *rate.Limiter
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(registry *senders.Registry) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	ratePerSecond := config.SendRatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = config.DefaultSendRatePerSecond
	}

	return &Scheduler{
		registry: registry,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the queue pass and the retry pass and begins ticking.
func (s *Scheduler) Start() error {
	log.Info().Dur("queue_interval", config.QueuePassInterval).Dur("retry_interval", config.RetryPassInterval).
		Msg("starting delivery scheduler")

	cronLogger := cron.PrintfLogger(&log.Logger)
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", config.QueuePassInterval), s.QueuePass); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", config.RetryPassInterval), s.RetryPass); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop cancels in-flight rate waits and blocks until running passes finish.
func (s *Scheduler) Stop() {
	log.Info().Msg("stopping delivery scheduler")

	s.cancel()

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("delivery scheduler stopped")
}

// QueuePass drains all PENDING notifications in priority order.
func (s *Scheduler) QueuePass() {
	pending, err := services.PendingNotifications()

	if err != nil {
		log.Error().Err(err).Msg("queue pass: failed to load pending notifications")
		return
	}

	if len(pending) == 0 {
		log.Debug().Msg("queue pass: queue is empty")
		return
	}

	log.Info().Int("count", len(pending)).Msg("queue pass: processing pending notifications")
	s.processBatch(pending)
}

// RetryPass re-dispatches every retry-eligible notification.
func (s *Scheduler) RetryPass() {
	eligible, err := services.RetryEligibleNotifications()

	if err != nil {
		log.Error().Err(err).Msg("retry pass: failed to load retry-eligible notifications")
		return
	}

	if len(eligible) == 0 {
		log.Debug().Msg("retry pass: nothing to retry")
		return
	}

	log.Info().Int("count", len(eligible)).Msg("retry pass: reprocessing failed notifications")
	s.processBatch(eligible)
}

// processBatch handles notifications sequentially. A failure on one
// notification is converted into its failure transition and the batch
// continues.
func (s *Scheduler) processBatch(notifications []models.Notification) {
	for i := range notifications {
		notification := &notifications[i]

		if err := s.limiter.Wait(s.ctx); err != nil {
			log.Warn().Err(err).Msg("rate limiter interrupted, aborting batch")
			return
		}

		if err := services.ProcessNotification(notification, s.registry); err != nil {
			log.Error().Err(err).Uint("notification_id", notification.ID).
				Msg("error processing notification")

			if err := services.HandleFailure(notification, err.Error()); err != nil {
				log.Error().Err(err).Uint("notification_id", notification.ID).
					Msg("failed to record failure transition")
			}
		}
	}
}

// Global scheduler instance
var globalScheduler *Scheduler

// Initialize creates and starts the global scheduler
func Initialize(registry *senders.Registry) error {
	globalScheduler = NewScheduler(registry)
	return globalScheduler.Start()
}

// Shutdown stops the global scheduler
func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}
