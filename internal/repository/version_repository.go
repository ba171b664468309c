package repository

import (
	"context"

	"github.com/newsdesk/newsroom/internal/db"
	"github.com/newsdesk/newsroom/internal/domain"

	"github.com/google/uuid"
)

const versionColumns = `id, article_id, title, content, document_url, tags, version, created_at`

type articleVersionRepository struct {
	conn *db.Connection
}

// NewArticleVersionRepository wires a read-side repository for the version ledger.
func NewArticleVersionRepository(conn *db.Connection) ArticleVersionRepository {
	return &articleVersionRepository{conn: conn}
}

func (r *articleVersionRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ArticleVersion, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT `+versionColumns+` FROM article_versions
		 WHERE article_id = $1
		 ORDER BY version DESC`,
		articleID,
	)
	if err != nil {
		return nil, storageError("list article versions", err)
	}
	defer rows.Close()

	versions := []domain.ArticleVersion{}
	for rows.Next() {
		var v domain.ArticleVersion
		if err := rows.Scan(
			&v.ID,
			&v.ArticleID,
			&v.Title,
			&v.Content,
			&v.DocumentURL,
			&v.Tags,
			&v.Version,
			&v.CreatedAt,
		); err != nil {
			return nil, storageError("scan article version", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate article versions", err)
	}
	return versions, nil
}

func (r *articleVersionRepository) GetByID(ctx context.Context, articleID, versionID uuid.UUID) (domain.ArticleVersion, error) {
	// Scoping by article id makes a foreign version id indistinguishable from
	// a missing one.
	var v domain.ArticleVersion
	err := r.conn.Pool.QueryRow(
		ctx,
		`SELECT `+versionColumns+` FROM article_versions
		 WHERE id = $1 AND article_id = $2`,
		versionID,
		articleID,
	).Scan(
		&v.ID,
		&v.ArticleID,
		&v.Title,
		&v.Content,
		&v.DocumentURL,
		&v.Tags,
		&v.Version,
		&v.CreatedAt,
	)
	if err != nil {
		return domain.ArticleVersion{}, storageError("get article version", err)
	}
	return v, nil
}
