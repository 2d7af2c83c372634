package models

// User is one managed account record.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}

// UserCreate is the payload for creating a user. Validation tags are checked
// locally before any request is issued.
type UserCreate struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin user moderator"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserUpdate is the payload for updating a user. All fields are optional;
// present fields still have to pass their format checks.
type UserUpdate struct {
	Name   string `json:"name,omitempty" validate:"omitempty"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Role   string `json:"role,omitempty" validate:"omitempty,oneof=admin user moderator"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ListParams are the listing query parameters understood by the backend
// (json-server conventions: _page, _limit, _sort, _order, q).
type ListParams struct {
	Page   int
	Limit  int
	Sort   string
	Order  string // "asc" or "desc"
	Search string
	Role   string
	Status string
}

// UserPage is one page of a user listing.
type UserPage struct {
	Data       []User `json:"data"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}
