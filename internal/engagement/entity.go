// AngelaMos | 2026
// entity.go

package engagement

import (
	"time"
)

// Like is present while the user likes the post and deleted on unlike.
type Like struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	AuthorID  string    `db:"author_id"`
	Liked     bool      `db:"liked"`
	CreatedAt time.Time `db:"created_at"`
}

type ToggleResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
