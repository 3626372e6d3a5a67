// AngelaMos | 2026
// entity.go

package post

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Post struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Summary    *string   `db:"summary"`
	Image      string    `db:"image"`
	Content    string    `db:"content"`
	Tags       Tags      `db:"tags"`
	AuthorID   string    `db:"author_id"`
	CategoryID string    `db:"category_id"`
	Status     Status    `db:"published"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (p *Post) IsPublished() bool {
	return p.Status == Published
}

// View is a post joined with what listings and detail pages show next to it.
type View struct {
	Post
	AuthorName   string `db:"author_name"`
	AuthorImage  string `db:"author_image"`
	CategoryName string `db:"category_name"`
	LikeCount    int    `db:"like_count"`
	LikedByMe    bool   `db:"liked_by_me"`
}

// Tags is stored as a JSONB array and keeps its order.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return b, nil
}

func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}
