// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

var ErrUnknownCategory = fmt.Errorf("category does not exist: %w", core.ErrInvalidInput)

// viewSelect expects the viewer id (or "") as $1.
const viewSelect = `
	SELECT p.id, p.title, p.summary, p.image, p.content, p.tags, p.author_id,
		p.category_id, p.published, p.created_at, p.updated_at,
		u.name AS author_name, u.image AS author_image, c.name AS category_name,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
		EXISTS (
			SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.author_id::text = $1
		) AS liked_by_me
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

type Repository interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Post, error)
	GetView(ctx context.Context, id, viewerID string) (*View, error)
	// CompareAndSetStatus moves the post from one status to another and
	// reports core.ErrInvalidTransition when it was not in from.
	CompareAndSetStatus(ctx context.Context, id string, from, to Status) error
	ListPublished(ctx context.Context, params ListParams, viewerID string) ([]View, int, error)
	Latest(ctx context.Context, limit int) ([]View, error)
	ListByAuthor(ctx context.Context, authorID string, publishedOnly bool, viewerID string) ([]View, error)
	ListLikedBy(ctx context.Context, userID, viewerID string) ([]View, error)
	ListByStatus(ctx context.Context, status Status) ([]View, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Post) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO posts (
			id, title, summary, image, content, tags, author_id, category_id, published
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.Title, p.Summary, p.Image, p.Content, p.Tags,
		p.AuthorID, p.CategoryID, p.Status,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if core.IsForeignKeyViolation(err, "posts_category_id_fkey") {
			return fmt.Errorf("create post: %w", ErrUnknownCategory)
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update rewrites the editable fields and the status in one statement.
func (r *repository) Update(ctx context.Context, p *Post) error {
	row := r.db.QueryRowxContext(ctx, `
		UPDATE posts
		SET title = $2, summary = $3, image = $4, content = $5, tags = $6,
			category_id = $7, published = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Title, p.Summary, p.Image, p.Content, p.Tags, p.CategoryID, p.Status,
	)
	err := row.Scan(&p.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update post: %w", core.ErrUpdateFailed)
	case core.IsForeignKeyViolation(err, "posts_category_id_fkey"):
		return fmt.Errorf("update post: %w", ErrUnknownCategory)
	case err != nil:
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete post: %w", core.ErrDeletionFailed)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := r.db.GetContext(ctx, &p, `
		SELECT id, title, summary, image, content, tags, author_id, category_id,
			published, created_at, updated_at
		FROM posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (r *repository) GetView(ctx context.Context, id, viewerID string) (*View, error) {
	var v View
	err := r.db.GetContext(ctx, &v, viewSelect+` WHERE p.id = $2`, viewerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post view: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post view: %w", err)
	}
	return &v, nil
}

func (r *repository) CompareAndSetStatus(ctx context.Context, id string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET published = $3, updated_at = NOW()
		WHERE id = $1 AND published = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}
	if n > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("set post status: post is %s, not %s: %w",
		current.Status, from, core.ErrInvalidTransition)
}

func (r *repository) ListPublished(
	ctx context.Context,
	params ListParams,
	viewerID string,
) ([]View, int, error) {
	params.Normalize()

	args := []any{viewerID, Published}
	conditions := []string{"p.published = $2"}

	if params.Search != "" {
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(
			p.title ILIKE $%[1]d OR p.summary ILIKE $%[1]d OR p.content ILIKE $%[1]d
			OR p.tags::text ILIKE $%[1]d OR c.name ILIKE $%[1]d OR u.name ILIKE $%[1]d)`, n))
	}

	if params.Category != "" {
		args = append(args, params.Category)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(c.id::text = $%[1]d OR LOWER(c.name) = LOWER($%[1]d))", n))
	}

	if params.Tag != "" {
		args = append(args, params.Tag)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM jsonb_array_elements_text(p.tags) t
				WHERE LOWER(t) = LOWER($%d))`, len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `
		SELECT COUNT(*) FROM posts p
		JOIN users u ON u.id = p.author_id
		JOIN categories c ON c.id = p.category_id
		WHERE $1::text = $1::text AND ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, viewSelect, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var views []View
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return views, total, nil
}

func (r *repository) Latest(ctx context.Context, limit int) ([]View, error) {
	var views []View
	err := r.db.SelectContext(ctx, &views, viewSelect+`
		WHERE p.published = $2
		ORDER BY p.created_at DESC
		LIMIT $3`, "", Published, limit)
	if err != nil {
		return nil, fmt.Errorf("latest posts: %w", err)
	}
	return views, nil
}

func (r *repository) ListByAuthor(
	ctx context.Context,
	authorID string,
	publishedOnly bool,
	viewerID string,
) ([]View, error) {
	query := viewSelect + ` WHERE p.author_id = $2`
	args := []any{viewerID, authorID}
	if publishedOnly {
		query += ` AND p.published = $3`
		args = append(args, Published)
	}
	query += ` ORDER BY p.created_at DESC`

	var views []View
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("list authored posts: %w", err)
	}
	return views, nil
}

func (r *repository) ListLikedBy(ctx context.Context, userID, viewerID string) ([]View, error) {
	var views []View
	err := r.db.SelectContext(ctx, &views, viewSelect+`
		WHERE p.published = $3
			AND EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.author_id = $2)
		ORDER BY p.created_at DESC`, viewerID, userID, Published)
	if err != nil {
		return nil, fmt.Errorf("list liked posts: %w", err)
	}
	return views, nil
}

// ListByStatus returns oldest first so the review queue is worked in order.
func (r *repository) ListByStatus(ctx context.Context, status Status) ([]View, error) {
	var views []View
	err := r.db.SelectContext(ctx, &views, viewSelect+`
		WHERE p.published = $2
		ORDER BY p.created_at ASC`, "", status)
	if err != nil {
		return nil, fmt.Errorf("list posts by status: %w", err)
	}
	return views, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"published"`
		Count  int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT published, COUNT(*) AS count FROM posts GROUP BY published`)
	if err != nil {
		return nil, fmt.Errorf("count posts by status: %w", err)
	}

	out := map[Status]int{UnderReview: 0, Published: 0, Rejected: 0}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
