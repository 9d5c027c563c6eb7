package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// ArticleRepository persists knowledge-base articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.KBArticle) error
	GetByID(ctx context.Context, id string) (*domain.KBArticle, error)
	SetEmbedding(ctx context.Context, articleID string, embedding []float32) error
	Publish(ctx context.Context, articleID string) error
}

// ArticleSearcher runs a tenant-scoped similarity search over published
// articles. Results are ordered by descending similarity with article id
// as the deterministic tie-break.
type ArticleSearcher interface {
	Search(ctx context.Context, vector []float32, organizationID string, k int) ([]domain.ArticleMatch, error)
}

// ArticleStore implements ArticleRepository and ArticleSearcher over pgx,
// using a pgvector cosine-distance query for search.
type ArticleStore struct {
	pool *pgxpool.Pool
}

var (
	_ ArticleRepository = (*ArticleStore)(nil)
	_ ArticleSearcher   = (*ArticleStore)(nil)
)

// NewArticleStore instantiates the store.
func NewArticleStore(pool *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{pool: pool}
}

func (r *ArticleStore) Create(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        INSERT INTO kb_articles (organization_id, title, content, status, embedding)
        VALUES ($1,$2,$3,$4,$5::vector)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.OrganizationID,
		article.Title,
		article.Content,
		article.Status,
		vectorLiteral(article.Embedding),
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *ArticleStore) GetByID(ctx context.Context, id string) (*domain.KBArticle, error) {
	const query = `
        SELECT id, organization_id, title, content, status, created_at, updated_at
        FROM kb_articles WHERE id=$1`
	var article domain.KBArticle
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&article.ID,
		&article.OrganizationID,
		&article.Title,
		&article.Content,
		&article.Status,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *ArticleStore) SetEmbedding(ctx context.Context, articleID string, embedding []float32) error {
	const query = `UPDATE kb_articles SET embedding=$2::vector, updated_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, articleID, vectorLiteral(embedding))
	return err
}

func (r *ArticleStore) Publish(ctx context.Context, articleID string) error {
	const query = `UPDATE kb_articles SET status=$2, updated_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, articleID, domain.ArticleStatusPublished)
	return err
}

func (r *ArticleStore) Search(ctx context.Context, vector []float32, organizationID string, k int) ([]domain.ArticleMatch, error) {
	const query = `
        SELECT id, title, content, 1 - (embedding <=> $1::vector) AS similarity
        FROM kb_articles
        WHERE organization_id=$2 AND status=$3 AND embedding IS NOT NULL
        ORDER BY similarity DESC, id ASC
        LIMIT $4`
	rows, err := r.pool.Query(ctx, query, vectorLiteral(vector), organizationID, domain.ArticleStatusPublished, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ArticleMatch
	for rows.Next() {
		var match domain.ArticleMatch
		if err := rows.Scan(&match.ArticleID, &match.Title, &match.Content, &match.Similarity); err != nil {
			return nil, err
		}
		result = append(result, match)
	}
	return result, rows.Err()
}

// vectorLiteral renders a float32 slice in pgvector's input format.
func vectorLiteral(vector []float32) string {
	if len(vector) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
