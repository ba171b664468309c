package repository

import (
	"context"
	"time"

	"github.com/newsdesk/newsroom/internal/domain"

	"github.com/google/uuid"
)

// ArticleFilter restricts listing to what the viewer may see.
type ArticleFilter struct {
	// All disables visibility filtering (editorial viewers).
	All bool
	// VisibleTo widens the public set with the viewer's own articles.
	// Nil with All=false means published articles only.
	VisibleTo *uuid.UUID
}

// ArticleRepository defines the persistence operations for articles.
//
// Transition and MutateContent serialize concurrent mutations of the same
// article with a row-level lock; the apply callback runs against the locked
// current state, so guard checks inside it are race-free. MutateContent
// additionally snapshots the pre-mutation content fields into the version
// ledger within the same transaction, assigning MAX(version)+1 atomically.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.Article) (domain.Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Article, error)
	List(ctx context.Context, filter ArticleFilter, limit, offset int) ([]domain.Article, int, error)
	ListPublished(ctx context.Context, limit int) ([]domain.Article, error)
	ListDue(ctx context.Context, cutoff time.Time) ([]domain.Article, error)
	Transition(ctx context.Context, id uuid.UUID, apply func(*domain.Article) error) (domain.Article, error)
	MutateContent(ctx context.Context, id uuid.UUID, apply func(*domain.Article) error) (domain.Article, error)
	// Promote conditionally flips a scheduled article to published. It reports
	// false when the article was no longer scheduled, so a concurrent edit that
	// reverted the status is never overwritten.
	Promote(ctx context.Context, id uuid.UUID) (bool, error)
	// IncrementViewCount bumps the counter of a published article and returns
	// the new value. Non-published articles are left untouched.
	IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ArticleVersionRepository reads the append-only version ledger. Writes happen
// only through ArticleRepository.MutateContent; versions are never updated or
// deleted except by cascade with their parent article.
type ArticleVersionRepository interface {
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ArticleVersion, error)
	// GetByID resolves a version scoped to its owning article; a version id
	// that belongs to a different article is NotFound.
	GetByID(ctx context.Context, articleID, versionID uuid.UUID) (domain.ArticleVersion, error)
}

// SubscriberRepository exposes the confirmed digest recipients.
type SubscriberRepository interface {
	ListConfirmed(ctx context.Context) ([]domain.Subscriber, error)
}
