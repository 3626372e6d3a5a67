// AngelaMos | 2026
// repository_test.go

package post

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

var postColumns = []string{
	"id", "title", "summary", "image", "content", "tags", "author_id",
	"category_id", "published", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepositoryCreateStoresUnderReview(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO posts").
		WithArgs("p1", "T", nil, "", "<p>x</p>", []byte(`["a"]`), "u1", "c1", "false").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &Post{
		ID: "p1", Title: "T", Content: "<p>x</p>", Tags: Tags{"a"},
		AuthorID: "u1", CategoryID: "c1", Status: UnderReview,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateUnknownCategory(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO posts").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "posts_category_id_fkey"})

	err := repo.Create(context.Background(), &Post{ID: "p1"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRepositoryDeleteNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM posts").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrDeletionFailed)
}

func TestRepositoryUpdateNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE posts").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), &Post{ID: "missing"})
	assert.ErrorIs(t, err, core.ErrUpdateFailed)
}

func TestRepositoryGetByIDScansStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(
			"p1", "T", nil, "", "<p>x</p>", []byte(`["a","b"]`), "u1", "c1", "reject", now, now,
		))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, Rejected, p.Status)
	assert.Equal(t, Tags{"a", "b"}, p.Tags)
	assert.Nil(t, p.Summary)
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id").
		WillReturnRows(sqlmock.NewRows(postColumns))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryCompareAndSetStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE posts SET published").
		WithArgs("p1", "false", "true").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CompareAndSetStatus(context.Background(), "p1", UnderReview, Published))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCompareAndSetStatusLostRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec("UPDATE posts SET published").
		WithArgs("p1", "false", "reject").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(
			"p1", "T", nil, "", "", []byte(`[]`), "u1", "c1", "true", now, now,
		))

	err := repo.CompareAndSetStatus(context.Background(), "p1", UnderReview, Rejected)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCompareAndSetStatusMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE posts SET published").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id").
		WillReturnRows(sqlmock.NewRows(postColumns))

	err := repo.CompareAndSetStatus(context.Background(), "gone", UnderReview, Published)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryListPublishedFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("viewer", "true", "%100\\%%", "Hydro", "dam").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY p.created_at DESC").
		WithArgs("viewer", "true", "%100\\%%", "Hydro", "dam", 12, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	views, total, err := repo.ListPublished(context.Background(), ListParams{
		Search: "100%", Category: "Hydro", Tag: "dam",
	}, "viewer")
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCountByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("GROUP BY published").
		WillReturnRows(sqlmock.NewRows([]string{"published", "count"}).
			AddRow("true", 4).
			AddRow("false", 2))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{Published: 4, UnderReview: 2, Rejected: 0}, counts)
}
