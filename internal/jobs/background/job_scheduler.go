package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fakti/internal/logging"
	"fakti/internal/repositories"

	"github.com/bsm/redislock"
	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const (
	purgeInterval = time.Hour
	purgeLockKey  = "jobs:purge-reset-tokens"
	purgeLockTTL  = 5 * time.Minute
)

// JobScheduler runs the periodic maintenance jobs. Each run takes a Redis
// lock first so that only one replica does the work.
type JobScheduler struct {
	scheduler gocron.Scheduler
	locker    *redislock.Client
	resets    repositories.PasswordResetRepository
	logger    logrus.FieldLogger
	now       func() time.Time

	mu   sync.RWMutex
	jobs map[string]gocron.Job
}

func NewJobScheduler(locker *redislock.Client, resets repositories.PasswordResetRepository, logger logrus.FieldLogger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		locker:    locker,
		resets:    resets,
		logger:    logger,
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.WithField("jobs", js.JobNames()).Info("starting background jobs")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background jobs")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerJobs() error {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(purgeInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), purgeLockTTL)
			defer cancel()
			_, _ = js.PurgeResetTokens(ctx)
		}),
		gocron.WithName("purge-reset-tokens"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create purge job: %w", err)
	}

	js.mu.Lock()
	js.jobs["purge-reset-tokens"] = job
	js.mu.Unlock()
	return nil
}

// PurgeResetTokens deletes expired and used password reset tokens. It
// returns 0 without error when another replica holds the lock.
func (js *JobScheduler) PurgeResetTokens(ctx context.Context) (int64, error) {
	lock, err := js.locker.Obtain(ctx, purgeLockKey, purgeLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		js.logger.WithField("lock", purgeLockKey).Debug("purge already running elsewhere")
		return 0, nil
	}
	if err != nil {
		logging.LogError(js.logger, "jobs", "PurgeResetTokens", "obtain lock", purgeLockKey, err)
		return 0, err
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logging.LogError(js.logger, "jobs", "PurgeResetTokens", "release lock", purgeLockKey, err)
		}
	}()

	purged, err := js.resets.PurgeExpired(ctx, js.now())
	if err != nil {
		logging.LogError(js.logger, "jobs", "PurgeResetTokens", "purge", nil, err)
		return 0, err
	}
	js.logger.WithField("purged", purged).Info("purged password reset tokens")
	return purged, nil
}
