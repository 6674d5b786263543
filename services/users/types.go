package users

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Roles lists the roles offered by the create and update forms
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// User mirrors the user resource returned by the REST API
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	Role      Role      `json:"role"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName falls back to the username when no full name is set
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest carries only the fields being changed
type UpdateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// IsEmpty reports whether the update would change nothing
func (r UpdateUserRequest) IsEmpty() bool {
	return r == UpdateUserRequest{}
}

// envelope is the `{success, data, message, error}` body the API returns
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserForm holds the raw values of the create and update forms
type UserForm struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// FormFromUser pre-fills a form from a cached user. The password is left
// blank so an untouched form never resubmits it.
func FormFromUser(u User) UserForm {
	return UserForm{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
	}
}

func (f UserForm) CreateRequest() CreateUserRequest {
	role := Role(strings.TrimSpace(f.Role))
	if role == "" {
		role = RoleUser
	}
	return CreateUserRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		FullName: strings.TrimSpace(f.FullName),
		Role:     role,
	}
}

// UpdateRequest keeps only the non-empty fields
func (f UserForm) UpdateRequest() UpdateUserRequest {
	req := UpdateUserRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		FullName: strings.TrimSpace(f.FullName),
		Role:     Role(strings.TrimSpace(f.Role)),
	}
	if strings.TrimSpace(f.Password) != "" {
		req.Password = f.Password
	}
	return req
}

// SelectOption is one entry of the update/details user pickers
type SelectOption struct {
	Value int64
	Label string
}

// UserDetails is the display model of the details tab
type UserDetails struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	CreatedAt    string
	UpdatedAt    string
}

const (
	listDateLayout   = "2006-01-02"
	detailDateLayout = "Jan 2, 2006, 3:04 PM"
	notProvided      = "Not provided"
)

func NewUserDetails(u User) UserDetails {
	fullName := u.FullName
	if fullName == "" {
		fullName = notProvided
	}
	return UserDetails{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     fullName,
		Role:         u.Role,
		PasswordHash: MaskSecret(u.Password),
		CreatedAt:    formatTime(u.CreatedAt, detailDateLayout),
		UpdatedAt:    formatTime(u.UpdatedAt, detailDateLayout),
	}
}

// MaskSecret keeps the algorithm prefix of a password hash and hides the rest
func MaskSecret(s string) string {
	const keep = 7
	if s == "" {
		return notProvided
	}
	if len(s) <= keep {
		return "••••••"
	}
	return s[:keep] + "…"
}

// FormatListDate renders the created-at column of the users table
func FormatListDate(t time.Time) string {
	return formatTime(t, listDateLayout)
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(layout)
}
