// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SweepStaging deletes staged uploads older than maxAge. These are left behind
// only when a submission's cleanup itself failed.
func (s *SubmissionService) SweepStaging(ctx context.Context, maxAge time.Duration) (int, error) {
	keys, err := s.Store.ListOlderThan(ctx, StagingPrefix, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			log.Printf("[Scheduler] Failed to remove staged upload %s: %v", key, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// StartStagingSweeper runs SweepStaging every interval until the scheduler is shut down.
func (s *SubmissionService) StartStagingSweeper(interval, maxAge time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			removed, err := s.SweepStaging(ctx, maxAge)
			if err != nil {
				log.Printf("[Scheduler] Staging sweep error: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("🧹 [Scheduler] Removed %d orphaned staged uploads", removed)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
