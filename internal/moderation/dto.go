// AngelaMos | 2026
// dto.go

package moderation

import (
	"github.com/nhpc-ltd/blog-api/internal/post"
)

const (
	ActionPublish = "publish"
	ActionReject  = "reject"
)

type ReviewRequest struct {
	Action string `json:"action" validate:"required"`
}

type ReviewResponse struct {
	ID      string      `json:"id"`
	Status  post.Status `json:"status"`
	Message string      `json:"message"`
}
