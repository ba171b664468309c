package notify

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/newsdesk/newsroom/internal/domain"
	"github.com/newsdesk/newsroom/internal/repository"
)

const defaultDigestSize = 5

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="text-align: center;">Weekly Highlights</h2>
    <p>Hello,</p>
    <p>Here are this week's top stories:</p>
    <ul style="list-style-type: none; padding: 0;">
      {{range .Articles}}<li style="margin-bottom: 15px;">
        <h3><a href="{{$.BaseURL}}/api/news/{{.ID}}" style="color: #1a73e8; text-decoration: none;">{{.Title}}</a></h3>
        <p>{{.Excerpt}}</p>
      </li>
      {{end}}
    </ul>
    <p>Stay tuned for more updates next week!</p>
  </div>
</body>
</html>`))

type digestItem struct {
	ID      string
	Title   string
	Excerpt string
}

// Digest assembles the weekly newsletter from the most recent published
// articles and dispatches it to every confirmed subscriber.
type Digest struct {
	articles    repository.ArticleRepository
	subscribers repository.SubscriberRepository
	notifier    Notifier
	baseURL     string
	size        int
}

// NewDigest wires the digest job. size <= 0 falls back to five articles.
func NewDigest(
	articles repository.ArticleRepository,
	subscribers repository.SubscriberRepository,
	notifier Notifier,
	baseURL string,
	size int,
) *Digest {
	if size <= 0 {
		size = defaultDigestSize
	}
	return &Digest{
		articles:    articles,
		subscribers: subscribers,
		notifier:    notifier,
		baseURL:     strings.TrimRight(baseURL, "/"),
		size:        size,
	}
}

// Run executes one digest dispatch. A subscriber that cannot be reached is
// logged and skipped; the remaining subscribers still receive the digest.
func (d *Digest) Run(ctx context.Context) error {
	subscribers, err := d.subscribers.ListConfirmed(ctx)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		log.Printf("[digest] no subscribers, skipping")
		return nil
	}

	articles, err := d.articles.ListPublished(ctx, d.size)
	if err != nil {
		return fmt.Errorf("load published articles: %w", err)
	}
	if len(articles) == 0 {
		log.Printf("[digest] no published articles, skipping")
		return nil
	}

	body, err := d.render(articles)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	sent := 0
	for _, subscriber := range subscribers {
		if err := d.notifier.Send(ctx, subscriber.Email, "Weekly Highlights", body); err != nil {
			log.Printf("[digest] failed to notify %s: %v", subscriber.Email, err)
			continue
		}
		sent++
	}
	log.Printf("[digest] sent to %d of %d subscribers", sent, len(subscribers))
	return nil
}

func (d *Digest) render(articles []domain.Article) (string, error) {
	items := make([]digestItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, digestItem{
			ID:      a.ID.String(),
			Title:   a.Title,
			Excerpt: excerpt(a.Content, 200),
		})
	}

	var buf strings.Builder
	err := digestTemplate.Execute(&buf, struct {
		BaseURL  string
		Articles []digestItem
	}{BaseURL: d.baseURL, Articles: items})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// excerpt truncates to at most limit characters, preferring a word boundary.
// Cutting on runes keeps multi-byte content valid UTF-8.
func excerpt(content string, limit int) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
