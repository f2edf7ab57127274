package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Cleaner forgets references to expired sandboxes.
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

type Scheduler struct {
	cleaner  Cleaner
	schedule string
	c        *cron.Cron
}

func NewScheduler(cleaner Cleaner, schedule string) *Scheduler {
	return &Scheduler{cleaner: cleaner, schedule: schedule}
}

// Start registers the cleanup pass and starts the cron loop.
func (s *Scheduler) Start() {
	s.c = cron.New(cron.WithSeconds())

	_, err := s.c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cleared, err := s.cleaner.Cleanup(ctx)
		if err != nil {
			log.Printf("sandbox cleanup pass failed: %v", err)
			return
		}
		if cleared > 0 {
			log.Printf("sandbox cleanup pass cleared %d expired reference(s)", cleared)
		}
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Printf("Cron scheduler started (sandbox cleanup: %q)", s.schedule)
	s.c.Start()
}

// Stop halts the cron loop; running jobs finish on their own.
func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}
