package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
)

// Scheduler runs the staff digest: a periodic log line with the request
// queue counts, so operators see a stuck pending queue without opening
// the inbox. Observability only; it never mutates documents.
type Scheduler struct {
	requests *repository.RequestRepo
	spec     string
	cron     *cron.Cron
}

// NewScheduler creates a digest scheduler with the given cron spec
// (seconds granularity, e.g. "0 0 * * * *" for hourly).
func NewScheduler(requests *repository.RequestRepo, spec string) *Scheduler {
	return &Scheduler{requests: requests, spec: spec}
}

// Start initializes the cron task.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		s.runDigest()
	})
	if err != nil {
		log.Printf("Failed to create digest cron job: %v", err)
		return
	}

	log.Printf("Digest scheduler started (spec %q)", s.spec)
	c.Start()
	s.cron = c
}

// Stop halts the scheduler; running jobs finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reqs, err := s.requests.List(ctx)
	if err != nil {
		log.Printf("[warn] operation=digest list failed: %v", err)
		return
	}

	log.Printf("[info] operation=digest total=%d pending=%d scheduling=%d in_progress=%d completed=%d",
		len(reqs),
		domain.CountByStatus(reqs, domain.StatusPending),
		domain.CountByStatus(reqs, domain.StatusWaitingConfirmation),
		domain.CountByStatus(reqs, domain.StatusInProgress),
		domain.CountByStatus(reqs, domain.StatusCompleted),
	)
}
