package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsdesk/newsroom/internal/db"
	"github.com/newsdesk/newsroom/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const articleColumns = `id, title, content, document_url, tags, author_id, status, published_at, view_count, created_at, updated_at`

type articleRepository struct {
	conn *db.Connection
}

// NewArticleRepository wires a repository backed by the shared connection.
func NewArticleRepository(conn *db.Connection) ArticleRepository {
	return &articleRepository{conn: conn}
}

func (r *articleRepository) Create(ctx context.Context, article domain.Article) (domain.Article, error) {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}

	row := r.conn.Pool.QueryRow(
		ctx,
		`INSERT INTO articles (id, title, content, document_url, tags, author_id, status, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+articleColumns,
		article.ID,
		article.Title,
		article.Content,
		article.DocumentURL,
		article.Tags,
		article.AuthorID,
		string(article.Status),
		timestamptz(article.PublishedAt),
	)

	created, err := scanArticle(row)
	if err != nil {
		return domain.Article{}, storageError("create article", err)
	}
	return created, nil
}

func (r *articleRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	row := r.conn.Pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	article, err := scanArticle(row)
	if err != nil {
		return domain.Article{}, storageError("get article", err)
	}
	return article, nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter, limit, offset int) ([]domain.Article, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + articleColumns + `, COUNT(*) OVER() AS total_count FROM articles`
	args := []any{}
	switch {
	case filter.All:
		// No visibility restriction.
	case filter.VisibleTo != nil:
		query += ` WHERE (status = 'published' OR author_id = $1)`
		args = append(args, *filter.VisibleTo)
	default:
		query += ` WHERE status = 'published'`
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storageError("list articles", err)
	}
	defer rows.Close()

	articles := []domain.Article{}
	total := 0
	for rows.Next() {
		article, count, err := scanArticleWithCount(rows)
		if err != nil {
			return nil, 0, storageError("scan article", err)
		}
		articles = append(articles, article)
		total = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageError("iterate articles", err)
	}

	return articles, total, nil
}

func (r *articleRepository) ListPublished(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE status = 'published'
		 ORDER BY published_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storageError("list published articles", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

func (r *articleRepository) ListDue(ctx context.Context, cutoff time.Time) ([]domain.Article, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE status = 'scheduled' AND published_at <= $1
		 ORDER BY published_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, storageError("list due articles", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

func (r *articleRepository) Transition(ctx context.Context, id uuid.UUID, apply func(*domain.Article) error) (domain.Article, error) {
	return r.mutate(ctx, id, false, apply)
}

func (r *articleRepository) MutateContent(ctx context.Context, id uuid.UUID, apply func(*domain.Article) error) (domain.Article, error) {
	return r.mutate(ctx, id, true, apply)
}

// mutate runs the lock → guard → snapshot → write sequence in one transaction
// scoped to the article's row. Serialization conflicts are retried exactly
// once before surfacing as a storage failure.
func (r *articleRepository) mutate(ctx context.Context, id uuid.UUID, snapshot bool, apply func(*domain.Article) error) (domain.Article, error) {
	article, err := r.mutateOnce(ctx, id, snapshot, apply)
	if err != nil && isSerializationFailure(err) {
		article, err = r.mutateOnce(ctx, id, snapshot, apply)
	}
	return article, err
}

func (r *articleRepository) mutateOnce(ctx context.Context, id uuid.UUID, snapshot bool, apply func(*domain.Article) error) (domain.Article, error) {
	var result domain.Article
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1 FOR UPDATE`, id)
		article, err := scanArticle(row)
		if err != nil {
			return storageError("lock article", err)
		}

		before := article.Snapshot()

		if err := apply(&article); err != nil {
			// Guard failures carry their own taxonomy; the transaction rolls back.
			return err
		}

		if snapshot {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO article_versions (article_id, title, content, document_url, tags, version)
				 VALUES ($1, $2, $3, $4, $5,
				         (SELECT COALESCE(MAX(version), 0) + 1 FROM article_versions WHERE article_id = $1))`,
				id,
				before.Title,
				before.Content,
				before.DocumentURL,
				before.Tags,
			); err != nil {
				return storageError("snapshot article version", err)
			}
		}

		updated := tx.QueryRow(
			ctx,
			`UPDATE articles
			 SET title = $2, content = $3, document_url = $4, tags = $5, status = $6,
			     published_at = $7, updated_at = now()
			 WHERE id = $1
			 RETURNING `+articleColumns,
			id,
			article.Title,
			article.Content,
			article.DocumentURL,
			article.Tags,
			string(article.Status),
			timestamptz(article.PublishedAt),
		)
		result, err = scanArticle(updated)
		if err != nil {
			return storageError("update article", err)
		}
		return nil
	})
	if err != nil {
		if isClassified(err) {
			return domain.Article{}, err
		}
		// Begin/commit failures come back unclassified from WithTx.
		return domain.Article{}, storageError("article mutation", err)
	}
	return result, nil
}

func (r *articleRepository) Promote(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn.Pool.Exec(
		ctx,
		`UPDATE articles SET status = 'published', updated_at = now()
		 WHERE id = $1 AND status = 'scheduled'`,
		id,
	)
	if err != nil {
		return false, storageError("promote article", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *articleRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.conn.Pool.QueryRow(
		ctx,
		`UPDATE articles SET view_count = view_count + 1
		 WHERE id = $1 AND status = 'published'
		 RETURNING view_count`,
		id,
	).Scan(&count)
	if err != nil {
		return 0, storageError("increment view count", err)
	}
	return count, nil
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Versions go with the article via ON DELETE CASCADE.
	tag, err := r.conn.Pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return storageError("delete article", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete article: %w", domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article     domain.Article
		status      string
		publishedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.DocumentURL,
		&article.Tags,
		&article.AuthorID,
		&status,
		&publishedAt,
		&article.ViewCount,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return domain.Article{}, err
	}
	article.Status = domain.Status(status)
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return article, nil
}

func scanArticleWithCount(row rowScanner) (domain.Article, int, error) {
	var (
		article     domain.Article
		status      string
		publishedAt pgtype.Timestamptz
		total       int64
	)
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.DocumentURL,
		&article.Tags,
		&article.AuthorID,
		&status,
		&publishedAt,
		&article.ViewCount,
		&article.CreatedAt,
		&article.UpdatedAt,
		&total,
	); err != nil {
		return domain.Article{}, 0, err
	}
	article.Status = domain.Status(status)
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return article, int(total), nil
}

func collectArticles(rows pgx.Rows) ([]domain.Article, error) {
	articles := []domain.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, storageError("scan article", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate articles", err)
	}
	return articles, nil
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func isClassified(err error) bool {
	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidStateTransition,
		domain.ErrAccessDenied,
		domain.ErrUnauthenticated,
		domain.ErrValidation,
		domain.ErrDependencyFailure,
		domain.ErrStorage,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// 40001 serialization_failure, 40P01 deadlock_detected.
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func storageError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	// Keep the driver error in the chain so serialization failures stay
	// classifiable while callers match on ErrStorage.
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStorage, err))
}
