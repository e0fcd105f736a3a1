package scheduler

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DailyResetter is the single operation the scheduler drives.
type DailyResetter interface {
	ResetDailyHabits(ctx context.Context) error
}

// Scheduler flips completedToday off every midnight so streak checks the
// next day see a clean slate.
type Scheduler struct {
	cron    *cron.Cron
	tracker DailyResetter
}

func New(tracker DailyResetter) *Scheduler {
	if tracker == nil {
		log.Fatal("attempt to create scheduler with nil tracker")
	}
	return &Scheduler{
		cron:    cron.New(),
		tracker: tracker,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		if err := s.tracker.ResetDailyHabits(ctx); err != nil {
			slog.Error("daily habit reset failed", slog.String("error", err.Error()))
			return
		}
		slog.Info("daily habit reset done")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
