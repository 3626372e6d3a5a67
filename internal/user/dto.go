// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
	"time"
)

type RegisterRequest struct {
	Username   string `json:"username"   validate:"required,min=1,max=20,username"`
	Email      string `json:"email"      validate:"required,email,max=255"`
	Type       string `json:"type"       validate:"omitempty,oneof=user admin"`
	EmployeeID string `json:"employeeId" validate:"omitempty,max=32,alphanum"`
	Password   string `json:"password"   validate:"required,min=8,max=128"`
}

type UpdateProfileRequest struct {
	Image       string `json:"image"       validate:"required,url,max=2048"`
	Designation string `json:"designation" validate:"required,designation"`
	Bio         string `json:"bio"         validate:"max=100"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Bio         string    `json:"bio"`
	Designation string    `json:"designation"`
	Image       string    `json:"image"`
	EmployeeID  *string   `json:"employeeId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileResponse is the public view of a user and never carries the email.
type ProfileResponse struct {
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Bio         string    `json:"bio"`
	Designation string    `json:"designation"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RoleResponse struct {
	Role *string `json:"role"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	p.Search = strings.TrimSpace(p.Search)
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Bio:         u.Bio,
		Designation: u.Designation,
		Image:       u.Image,
		EmployeeID:  u.EmployeeID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ToProfileResponse(u *User) ProfileResponse {
	designation := u.Designation
	if designation == "" {
		designation = DefaultDesignation
	}
	return ProfileResponse{
		Name:        u.Name,
		Role:        u.Role,
		Bio:         u.Bio,
		Designation: designation,
		Image:       u.Image,
		CreatedAt:   u.CreatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToUserResponse(&users[i]))
	}
	return out
}
