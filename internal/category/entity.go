// AngelaMos | 2026
// entity.go

package category

import (
	"time"
)

type Category struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
