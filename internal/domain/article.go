package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the lifecycle states of an article. There is no terminal
// state; published and rejected articles remain editable.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusPublished       Status = "published"
	StatusScheduled       Status = "scheduled"
	StatusRejected        Status = "rejected"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusDraft, StatusPendingApproval, StatusPublished, StatusScheduled, StatusRejected:
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
}

// Article is a single unit of editorial content. It is owned by the lifecycle
// service and mutated only through defined transitions.
type Article struct {
	ID          uuid.UUID
	Title       string
	Content     string
	DocumentURL string
	Tags        []string
	AuthorID    uuid.UUID
	Status      Status
	PublishedAt *time.Time
	ViewCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewArticle creates a draft article for the given author.
func NewArticle(authorID uuid.UUID, title, content, documentURL string, tags []string) Article {
	now := time.Now()
	return Article{
		ID:          uuid.New(),
		Title:       title,
		Content:     content,
		DocumentURL: documentURL,
		Tags:        copyTags(tags),
		AuthorID:    authorID,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsPublic reports whether the article is visible to unauthenticated readers.
func (a Article) IsPublic() bool {
	return a.Status == StatusPublished
}

// Snapshot captures the article's current content fields as an unversioned
// ArticleVersion. The version number is assigned at the storage boundary.
func (a Article) Snapshot() ArticleVersion {
	return ArticleVersion{
		ArticleID:   a.ID,
		Title:       a.Title,
		Content:     a.Content,
		DocumentURL: a.DocumentURL,
		Tags:        copyTags(a.Tags),
	}
}

// SplitTags turns a comma-delimited tag input into an ordered tag list.
// Empty segments are dropped; insertion order is preserved.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
