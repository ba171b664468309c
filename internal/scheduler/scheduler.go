// Package scheduler runs the time-driven jobs: the per-minute promotion of
// scheduled articles whose publish time has elapsed, and the weekly digest.
// It is an explicitly constructed service with Start/Stop — no globals.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/newsdesk/newsroom/internal/repository"

	"github.com/robfig/cron/v3"
)

const (
	defaultPromoteSpec = "* * * * *"
	defaultDigestSpec  = "0 9 * * 0"
)

// DigestRunner is the weekly job contract; satisfied by notify.Digest.
type DigestRunner interface {
	Run(ctx context.Context) error
}

// Config carries the cron specs and the deployment timezone.
type Config struct {
	// PromoteSpec is the promotion tick schedule. Defaults to every minute.
	PromoteSpec string
	// DigestSpec is the digest schedule. Defaults to Sunday 09:00.
	DigestSpec string
	// Timezone is the IANA zone the specs are evaluated in. Empty means local.
	Timezone string
}

// Scheduler owns the recurring jobs. Each job is wrapped with a reentrancy
// guard: a tick that is still running when the next one is due causes the new
// tick to be skipped, never to overlap.
type Scheduler struct {
	articles repository.ArticleRepository
	digest   DigestRunner
	cron     *cron.Cron

	promoteSpec string
	digestSpec  string
	now         func() time.Time
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a stopped scheduler.
func New(articles repository.ArticleRepository, digest DigestRunner, cfg Config, opts ...Option) (*Scheduler, error) {
	location := time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		location = loc
	}

	s := &Scheduler{
		articles:    articles,
		digest:      digest,
		promoteSpec: cfg.PromoteSpec,
		digestSpec:  cfg.DigestSpec,
		now:         time.Now,
	}
	if s.promoteSpec == "" {
		s.promoteSpec = defaultPromoteSpec
	}
	if s.digestSpec == "" {
		s.digestSpec = defaultDigestSpec
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	return s, nil
}

// Start registers the jobs and begins ticking.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.promoteSpec, func() {
		if _, err := s.PromoteDue(context.Background()); err != nil {
			log.Printf("[scheduler] promotion tick failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("register promotion job: %w", err)
	}

	if s.digest != nil {
		if _, err := s.cron.AddFunc(s.digestSpec, func() {
			if err := s.digest.Run(context.Background()); err != nil {
				log.Printf("[scheduler] digest run failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("register digest job: %w", err)
		}
	}

	s.cron.Start()
	log.Printf("[scheduler] started (promote %q, digest %q)", s.promoteSpec, s.digestSpec)
	return nil
}

// Stop halts scheduling and waits for in-flight jobs, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

// PromoteDue runs one promotion tick: every article with status=scheduled and
// publishedAt <= now is flipped to published. The flip is a conditional write,
// so an article whose status was concurrently edited away from scheduled is
// left alone. One failing article never aborts the rest of the batch, and
// re-running the tick is a no-op for already-published articles.
func (s *Scheduler) PromoteDue(ctx context.Context) (int, error) {
	due, err := s.articles.ListDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("query due articles: %w", err)
	}

	promoted := 0
	var firstErr error
	for _, article := range due {
		ok, err := s.articles.Promote(ctx, article.ID)
		if err != nil {
			log.Printf("[scheduler] failed to promote article %s: %v", article.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			// Lost the race against a manual edit; the next legitimate
			// schedule will pick it up again.
			continue
		}
		promoted++
		log.Printf("[scheduler] published article %s", article.ID)
	}

	if promoted < len(due) && firstErr != nil {
		return promoted, errors.Join(fmt.Errorf("promoted %d of %d due articles", promoted, len(due)), firstErr)
	}
	return promoted, nil
}
