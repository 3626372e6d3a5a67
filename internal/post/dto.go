// AngelaMos | 2026
// dto.go

package post

import (
	"strings"
	"time"
)

// PostInput is shared by create and edit.
type PostInput struct {
	Title      string   `json:"title"      validate:"required,min=1,max=100"`
	CategoryID string   `json:"categoryId" validate:"required,uuid"`
	Summary    *string  `json:"summary"    validate:"omitempty,min=10,max=300"`
	Tags       []string `json:"tags"       validate:"required,min=1,max=10,dive,required,min=1,max=30"`
	Content    string   `json:"content"    validate:"required"`
	Image      string   `json:"image"      validate:"omitempty,url,max=2048"`
}

// Normalize trims whitespace and drops duplicate tags, keeping first
// occurrence order.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Image = strings.TrimSpace(in.Image)

	if in.Summary != nil {
		s := strings.TrimSpace(*in.Summary)
		if s == "" {
			in.Summary = nil
		} else {
			in.Summary = &s
		}
	}

	seen := make(map[string]struct{}, len(in.Tags))
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, t)
	}
	in.Tags = tags
}

type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Category string `json:"category"`
	Tag      string `json:"tag"`
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 12
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	p.Search = strings.TrimSpace(p.Search)
	p.Category = strings.TrimSpace(p.Category)
	p.Tag = strings.TrimSpace(p.Tag)
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type AuthorSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PostResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Summary   *string         `json:"summary"`
	Image     string          `json:"image"`
	Content   string          `json:"content,omitempty"`
	Tags      []string        `json:"tags"`
	Status    Status          `json:"status"`
	Author    AuthorSummary   `json:"author"`
	Category  CategorySummary `json:"category"`
	LikeCount int             `json:"likeCount"`
	LikedByMe *bool           `json:"likedByMe,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type LikedResponse struct {
	Liked bool `json:"liked"`
}

// ToPostResponse renders a view. Listings pass withContent=false; likedByMe
// is only reported to an authenticated viewer.
func ToPostResponse(v *View, withContent, authenticated bool) PostResponse {
	resp := PostResponse{
		ID:      v.ID,
		Title:   v.Title,
		Summary: v.Summary,
		Image:   v.Image,
		Tags:    v.Tags,
		Status:  v.Status,
		Author: AuthorSummary{
			ID:    v.AuthorID,
			Name:  v.AuthorName,
			Image: v.AuthorImage,
		},
		Category: CategorySummary{
			ID:   v.CategoryID,
			Name: v.CategoryName,
		},
		LikeCount: v.LikeCount,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if withContent {
		resp.Content = v.Content
	}
	if authenticated {
		liked := v.LikedByMe
		resp.LikedByMe = &liked
	}
	return resp
}

func ToPostResponseList(vs []View, authenticated bool) []PostResponse {
	out := make([]PostResponse, len(vs))
	for i := range vs {
		out[i] = ToPostResponse(&vs[i], false, authenticated)
	}
	return out
}
