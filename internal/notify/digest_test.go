package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/newsdesk/newsroom/internal/domain"
	"github.com/newsdesk/newsroom/internal/repository"

	"github.com/google/uuid"
)

type stubPublished struct {
	articles []domain.Article
	err      error
}

func (s *stubPublished) ListPublished(_ context.Context, limit int) ([]domain.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && limit < len(s.articles) {
		return s.articles[:limit], nil
	}
	return s.articles, nil
}

func (s *stubPublished) Create(context.Context, domain.Article) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubPublished) GetByID(context.Context, uuid.UUID) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubPublished) List(context.Context, repository.ArticleFilter, int, int) ([]domain.Article, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubPublished) ListDue(context.Context, time.Time) ([]domain.Article, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPublished) Transition(context.Context, uuid.UUID, func(*domain.Article) error) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubPublished) MutateContent(context.Context, uuid.UUID, func(*domain.Article) error) (domain.Article, error) {
	return domain.Article{}, errors.New("not implemented")
}

func (s *stubPublished) Promote(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubPublished) IncrementViewCount(context.Context, uuid.UUID) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubPublished) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

type stubSubscribers struct {
	subscribers []domain.Subscriber
	err         error
}

func (s *stubSubscribers) ListConfirmed(context.Context) ([]domain.Subscriber, error) {
	return s.subscribers, s.err
}

type recordingNotifier struct {
	sent    []string
	bodies  []string
	failFor map[string]error
}

func (n *recordingNotifier) Send(_ context.Context, to, _, body string) error {
	if err := n.failFor[to]; err != nil {
		return err
	}
	n.sent = append(n.sent, to)
	n.bodies = append(n.bodies, body)
	return nil
}

func published(title, content string) domain.Article {
	now := time.Now()
	return domain.Article{
		ID:          uuid.New(),
		Title:       title,
		Content:     content,
		Status:      domain.StatusPublished,
		PublishedAt: &now,
	}
}

func subscriber(email string) domain.Subscriber {
	return domain.Subscriber{ID: uuid.New(), Email: email}
}

func TestDigestRun(t *testing.T) {
	articles := &stubPublished{articles: []domain.Article{
		published("Headline one", "Body one"),
		published("Headline two", "Body two"),
	}}
	subscribers := &stubSubscribers{subscribers: []domain.Subscriber{
		subscriber("a@example.com"),
		subscriber("b@example.com"),
	}}
	notifier := &recordingNotifier{}

	digest := NewDigest(articles, subscribers, notifier, "https://news.example/", 5)
	if err := digest.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("sent to %d subscribers, want 2", len(notifier.sent))
	}
	body := notifier.bodies[0]
	if !strings.Contains(body, "Headline one") || !strings.Contains(body, "Headline two") {
		t.Fatal("digest body must contain every article title")
	}
	if !strings.Contains(body, "https://news.example/api/news/") {
		t.Fatal("digest body must link back to the site")
	}
}

func TestDigestRunIsolatesSubscriberFailures(t *testing.T) {
	articles := &stubPublished{articles: []domain.Article{published("Headline", "Body")}}
	subscribers := &stubSubscribers{subscribers: []domain.Subscriber{
		subscriber("ok@example.com"),
		subscriber("broken@example.com"),
		subscriber("also-ok@example.com"),
	}}
	notifier := &recordingNotifier{failFor: map[string]error{
		"broken@example.com": errors.New("mailbox full"),
	}}

	digest := NewDigest(articles, subscribers, notifier, "https://news.example", 5)
	if err := digest.Run(context.Background()); err != nil {
		t.Fatalf("Run must not fail because one subscriber does: %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("sent to %d subscribers, want 2", len(notifier.sent))
	}
}

func TestDigestRunSkipsWhenNothingToSend(t *testing.T) {
	notifier := &recordingNotifier{}

	t.Run("no subscribers", func(t *testing.T) {
		digest := NewDigest(
			&stubPublished{articles: []domain.Article{published("Headline", "Body")}},
			&stubSubscribers{},
			notifier, "https://news.example", 5,
		)
		if err := digest.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})

	t.Run("no published articles", func(t *testing.T) {
		digest := NewDigest(
			&stubPublished{},
			&stubSubscribers{subscribers: []domain.Subscriber{subscriber("a@example.com")}},
			notifier, "https://news.example", 5,
		)
		if err := digest.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})

	if len(notifier.sent) != 0 {
		t.Fatalf("sent = %v, want none", notifier.sent)
	}
}

func TestDigestRunPropagatesQueryFailure(t *testing.T) {
	digest := NewDigest(
		&stubPublished{err: errors.New("db down")},
		&stubSubscribers{subscribers: []domain.Subscriber{subscriber("a@example.com")}},
		&recordingNotifier{}, "https://news.example", 5,
	)
	if err := digest.Run(context.Background()); err == nil {
		t.Fatal("expected error when the article query fails")
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("short body", 200); got != "short body" {
		t.Errorf("excerpt = %q, want unchanged", got)
	}

	long := strings.Repeat("word ", 100)
	got := excerpt(long, 50)
	if len(got) > 55 {
		t.Errorf("excerpt too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated excerpt should end with ellipsis, got %q", got)
	}

	// Multi-byte content without spaces must still truncate to valid UTF-8.
	cyrillic := strings.Repeat("репортаж", 20)
	got = excerpt(cyrillic, 50)
	if !utf8.ValidString(got) {
		t.Errorf("excerpt is not valid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) > 51 {
		t.Errorf("excerpt too long: %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated excerpt should end with ellipsis, got %q", got)
	}
}
