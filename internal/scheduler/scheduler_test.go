package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/newsdesk/newsroom/internal/domain"
	"github.com/newsdesk/newsroom/internal/repository"

	"github.com/google/uuid"
)

// stubArticles covers only the scheduler's slice of the repository contract.
type stubArticles struct {
	due        map[uuid.UUID]domain.Article
	promoteErr map[uuid.UUID]error
	lostRace   map[uuid.UUID]bool
	promoted   []uuid.UUID
}

func newStubArticles() *stubArticles {
	return &stubArticles{
		due:        make(map[uuid.UUID]domain.Article),
		promoteErr: make(map[uuid.UUID]error),
		lostRace:   make(map[uuid.UUID]bool),
	}
}

func (s *stubArticles) addDue(at time.Time) uuid.UUID {
	id := uuid.New()
	s.due[id] = domain.Article{ID: id, Status: domain.StatusScheduled, PublishedAt: &at}
	return id
}

func (s *stubArticles) ListDue(_ context.Context, cutoff time.Time) ([]domain.Article, error) {
	var out []domain.Article
	for _, a := range s.due {
		if !a.PublishedAt.After(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubArticles) Promote(_ context.Context, id uuid.UUID) (bool, error) {
	if err := s.promoteErr[id]; err != nil {
		return false, err
	}
	if s.lostRace[id] {
		return false, nil
	}
	s.promoted = append(s.promoted, id)
	delete(s.due, id)
	return true, nil
}

func (s *stubArticles) Create(context.Context, domain.Article) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubArticles) GetByID(context.Context, uuid.UUID) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubArticles) List(context.Context, repository.ArticleFilter, int, int) ([]domain.Article, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubArticles) ListPublished(context.Context, int) ([]domain.Article, error) {
	return nil, errors.New("not implemented")
}

func (s *stubArticles) Transition(context.Context, uuid.UUID, func(*domain.Article) error) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubArticles) MutateContent(context.Context, uuid.UUID, func(*domain.Article) error) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubArticles) IncrementViewCount(context.Context, uuid.UUID) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubArticles) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

func newScheduler(t *testing.T, articles repository.ArticleRepository, now time.Time) *Scheduler {
	t.Helper()
	s, err := New(articles, nil, Config{}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestPromoteDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	articles := newStubArticles()
	articles.addDue(now.Add(-time.Minute))
	articles.addDue(now.Add(-time.Hour))
	notYet := articles.addDue(now.Add(time.Hour))

	s := newScheduler(t, articles, now)

	promoted, err := s.PromoteDue(context.Background())
	if err != nil {
		t.Fatalf("PromoteDue: %v", err)
	}
	if promoted != 2 {
		t.Fatalf("promoted = %d, want 2", promoted)
	}
	for _, id := range articles.promoted {
		if id == notYet {
			t.Fatal("article scheduled for the future must not be promoted")
		}
	}

	// Re-running the tick finds nothing left to do.
	promoted, err = s.PromoteDue(context.Background())
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("second tick promoted = %d, want 0", promoted)
	}
}

func TestPromoteDueContinuesPastFailures(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	articles := newStubArticles()
	articles.addDue(now.Add(-time.Minute))
	broken := articles.addDue(now.Add(-time.Minute))
	articles.addDue(now.Add(-time.Minute))
	articles.promoteErr[broken] = fmt.Errorf("connection reset")

	s := newScheduler(t, articles, now)

	promoted, err := s.PromoteDue(context.Background())
	if promoted != 2 {
		t.Fatalf("promoted = %d, want 2 despite one failure", promoted)
	}
	if err == nil {
		t.Fatal("partial failure must surface an error")
	}
}

func TestPromoteDueLeavesConcurrentEditsAlone(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	articles := newStubArticles()
	edited := articles.addDue(now.Add(-time.Minute))
	articles.lostRace[edited] = true

	s := newScheduler(t, articles, now)

	promoted, err := s.PromoteDue(context.Background())
	if err != nil {
		t.Fatalf("PromoteDue: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("promoted = %d, want 0 when the conditional write loses", promoted)
	}
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	if _, err := New(newStubArticles(), nil, Config{Timezone: "Mars/Olympus"}); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s, err := New(newStubArticles(), nil, Config{PromoteSpec: "not a cron spec"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("expected error for malformed cron spec")
	}
}
