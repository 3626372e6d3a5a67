// AngelaMos | 2026
// database_test.go

package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hydro", "hydro"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`C:\dams`, `C:\\dams`},
		{`\%_`, `\\\%\_`},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLike(tt.in))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "likes_post_author_key"}

	tests := []struct {
		name        string
		err         error
		constraints []string
		want        bool
	}{
		{"any constraint", unique, nil, true},
		{"matching constraint", unique, []string{"likes_post_author_key"}, true},
		{"one of several", unique, []string{"users_email_key", "likes_post_author_key"}, true},
		{"other constraint", unique, []string{"users_email_key"}, false},
		{"wrapped", fmt.Errorf("insert like: %w", unique), []string{"likes_post_author_key"}, true},
		{"foreign key code", &pgconn.PgError{Code: pgForeignKeyViolation}, nil, false},
		{"not a pg error", errors.New("duplicate key"), nil, false},
		{"nil", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err, tt.constraints...))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "posts_category_id_fkey"}

	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("create post: %w", fk), "posts_category_id_fkey"))
	assert.False(t, IsForeignKeyViolation(fk, "posts_author_id_fkey"))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: pgUniqueViolation}))
}

func TestWithJitter(t *testing.T) {
	assert.Zero(t, withJitter(0))

	base := 7 * time.Minute
	for range 50 {
		got := withJitter(base)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+base/7)
	}
}
