// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	PasswordHash *string    `db:"password_hash"`
	Role         string     `db:"role"`
	Bio          string     `db:"bio"`
	Designation  string     `db:"designation"`
	Image        string     `db:"image"`
	EmployeeID   *string    `db:"employee_id"`
	GoogleID     *string    `db:"google_id"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword is false for accounts created through Google sign-in.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Designations are the NHPC job titles a profile may carry.
var Designations = []string{
	"Chief Managing Director",
	"Director",
	"Executive Director",
	"Medical Officer",
	"Vigilance Officer",
	"General Manager",
	"Group Senior Manager",
	"Senior Manager",
	"Manager",
	"Deputy General Manager",
	"Deputy Manager",
	"Assistant Manager",
	"Engineer",
	"Trainee",
}

const DefaultDesignation = "Team Member"
