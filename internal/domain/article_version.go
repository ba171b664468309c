package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArticleVersion is an immutable snapshot of an article's content fields,
// taken immediately before a mutating transition was applied. Version numbers
// are per-article, start at 1, and are strictly increasing. The latest version
// records what the article looked like *before* the most recent mutation, not
// its current state.
type ArticleVersion struct {
	ID          uuid.UUID
	ArticleID   uuid.UUID
	Title       string
	Content     string
	DocumentURL string
	Tags        []string
	Version     int64
	CreatedAt   time.Time
}
