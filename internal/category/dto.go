// AngelaMos | 2026
// dto.go

package category

import (
	"time"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type MutationResponse struct {
	Category CategoryResponse `json:"category"`
	Message  string           `json:"message"`
}

func ToCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

func ToCategoryResponseList(cs []Category) []CategoryResponse {
	out := make([]CategoryResponse, len(cs))
	for i := range cs {
		out[i] = ToCategoryResponse(&cs[i])
	}
	return out
}
