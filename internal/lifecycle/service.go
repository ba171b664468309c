// Package lifecycle implements the article state machine: it validates
// transitions against the access policy, snapshots content into the version
// ledger on mutation, and applies status changes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/newsdesk/newsroom/internal/blob"
	"github.com/newsdesk/newsroom/internal/domain"
	"github.com/newsdesk/newsroom/internal/policy"
	"github.com/newsdesk/newsroom/internal/repository"

	"github.com/google/uuid"
)

// Service owns article status and drives every transition.
type Service struct {
	articles repository.ArticleRepository
	versions repository.ArticleVersionRepository
	blobs    blob.Store
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the state machine to its collaborators.
func NewService(
	articles repository.ArticleRepository,
	versions repository.ArticleVersionRepository,
	blobs blob.Store,
	opts ...Option,
) *Service {
	s := &Service{
		articles: articles,
		versions: versions,
		blobs:    blobs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries the payload for the create transition. Document is an
// optional attachment uploaded to the blob store before the article is saved.
type CreateRequest struct {
	Title       string
	Content     string
	Tags        string
	Document    []byte
	ContentType string
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
// Tags is the raw delimited input, split at the boundary of this service.
type UpdateRequest struct {
	Title   *string
	Content *string
	Tags    *string
}

// Create authors a new draft article.
func (s *Service) Create(ctx context.Context, p domain.Principal, req CreateRequest) (domain.Article, error) {
	if !policy.CanCreate(p) {
		return domain.Article{}, fmt.Errorf("create: %w", domain.ErrAccessDenied)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Article{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	documentURL := ""
	if len(req.Document) > 0 {
		url, err := s.blobs.Put(ctx, req.Document, req.ContentType)
		if err != nil {
			return domain.Article{}, fmt.Errorf("store attachment: %w", errors.Join(domain.ErrDependencyFailure, err))
		}
		documentURL = url
	}

	article := domain.NewArticle(p.ID, title, req.Content, documentURL, domain.SplitTags(req.Tags))
	created, err := s.articles.Create(ctx, article)
	if err != nil {
		return domain.Article{}, err
	}
	return created, nil
}

// Update applies a partial content edit. The pre-edit state is snapshotted as
// a new version in the same transaction; a published or rejected article
// reverts to draft.
func (s *Service) Update(ctx context.Context, p domain.Principal, id uuid.UUID, req UpdateRequest) (domain.Article, error) {
	return s.articles.MutateContent(ctx, id, func(a *domain.Article) error {
		if !policy.CanUpdate(p, *a) {
			return fmt.Errorf("update: %w", domain.ErrAccessDenied)
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
			}
			a.Title = title
		}
		if req.Content != nil {
			a.Content = *req.Content
		}
		if req.Tags != nil {
			a.Tags = domain.SplitTags(*req.Tags)
		}
		if a.Status == domain.StatusPublished || a.Status == domain.StatusRejected {
			a.Status = domain.StatusDraft
			a.PublishedAt = nil
		}
		return nil
	})
}

// Submit moves a draft or rejected article into the approval queue.
func (s *Service) Submit(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Article, error) {
	return s.articles.Transition(ctx, id, func(a *domain.Article) error {
		if !policy.CanSubmit(p, *a) {
			return fmt.Errorf("submit: %w", domain.ErrAccessDenied)
		}
		if a.Status != domain.StatusDraft && a.Status != domain.StatusRejected {
			return fmt.Errorf("%w: cannot submit from %s", domain.ErrInvalidStateTransition, a.Status)
		}
		a.Status = domain.StatusPendingApproval
		return nil
	})
}

// Approve publishes a pending article. A future publishAt schedules it
// instead; an absent or past publishAt publishes immediately.
func (s *Service) Approve(ctx context.Context, p domain.Principal, id uuid.UUID, publishAt *time.Time) (domain.Article, error) {
	return s.articles.Transition(ctx, id, func(a *domain.Article) error {
		if !policy.CanApprove(p) {
			return fmt.Errorf("approve: %w", domain.ErrAccessDenied)
		}
		if a.Status != domain.StatusPendingApproval {
			return fmt.Errorf("%w: cannot approve from %s", domain.ErrInvalidStateTransition, a.Status)
		}
		now := s.now()
		if publishAt != nil && publishAt.After(now) {
			a.Status = domain.StatusScheduled
			t := *publishAt
			a.PublishedAt = &t
		} else {
			a.Status = domain.StatusPublished
			a.PublishedAt = &now
		}
		return nil
	})
}

// Reject returns a pending article to its author.
func (s *Service) Reject(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.Article, error) {
	return s.articles.Transition(ctx, id, func(a *domain.Article) error {
		if !policy.CanReject(p) {
			return fmt.Errorf("reject: %w", domain.ErrAccessDenied)
		}
		if a.Status != domain.StatusPendingApproval {
			return fmt.Errorf("%w: cannot reject from %s", domain.ErrInvalidStateTransition, a.Status)
		}
		a.Status = domain.StatusRejected
		a.PublishedAt = nil
		return nil
	})
}

// Rollback restores the content fields of a prior version. The current state
// is snapshotted first, so rolling back twice to the same version yields the
// same content but two distinct new snapshots.
func (s *Service) Rollback(ctx context.Context, p domain.Principal, id, versionID uuid.UUID) (domain.Article, error) {
	if !policy.CanRollback(p) {
		return domain.Article{}, fmt.Errorf("rollback: %w", domain.ErrAccessDenied)
	}

	// Versions are immutable, so reading the target outside the mutation
	// transaction is safe.
	target, err := s.versions.GetByID(ctx, id, versionID)
	if err != nil {
		return domain.Article{}, err
	}

	return s.articles.MutateContent(ctx, id, func(a *domain.Article) error {
		a.Title = target.Title
		a.Content = target.Content
		a.DocumentURL = target.DocumentURL
		a.Tags = append([]string(nil), target.Tags...)
		a.Status = domain.StatusDraft
		a.PublishedAt = nil
		return nil
	})
}

// Delete removes an article and, by cascade, its versions. An attached
// document is deleted from the blob store on a best-effort basis.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if !policy.CanDelete(p) {
		return fmt.Errorf("delete: %w", domain.ErrAccessDenied)
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}

	if article.DocumentURL != "" {
		if err := s.blobs.Delete(ctx, article.DocumentURL); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("[lifecycle] failed to delete attachment for article %s: %v", id, err)
		}
	}
	return nil
}

// Get reads a single article. Reading a published article increments its view
// counter as a side effect; non-published articles are visible only to the
// author and to editors/admins.
func (s *Service) Get(ctx context.Context, p *domain.Principal, id uuid.UUID) (domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	if !policy.CanView(p, article) {
		// Invisible articles read as absent rather than forbidden.
		return domain.Article{}, fmt.Errorf("get article: %w", domain.ErrNotFound)
	}
	if article.IsPublic() {
		count, err := s.articles.IncrementViewCount(ctx, id)
		if err != nil {
			// The conditional update loses a race only when the article left
			// published concurrently; the read itself still succeeds.
			log.Printf("[lifecycle] view count increment failed for article %s: %v", id, err)
		} else {
			article.ViewCount = count
		}
	}
	return article, nil
}

// List pages articles the viewer may see.
func (s *Service) List(ctx context.Context, p *domain.Principal, limit, offset int) ([]domain.Article, int, error) {
	filter := repository.ArticleFilter{}
	if p != nil {
		if p.Role == domain.RoleEditor || p.Role == domain.RoleAdmin {
			filter.All = true
		} else {
			id := p.ID
			filter.VisibleTo = &id
		}
	}
	return s.articles.List(ctx, filter, limit, offset)
}

// Versions returns the article's snapshot ledger, newest first.
func (s *Service) Versions(ctx context.Context, p domain.Principal, id uuid.UUID) ([]domain.ArticleVersion, error) {
	if !policy.CanListVersions(p) {
		return nil, fmt.Errorf("versions: %w", domain.ErrAccessDenied)
	}
	if _, err := s.articles.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.versions.ListByArticle(ctx, id)
}
