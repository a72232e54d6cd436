package model

// Role is the only identity attribute; there is no credential check.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the authenticated principal.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// LoginRequest selects a role. Username is optional.
type LoginRequest struct {
	Role     string `json:"role" binding:"required,oneof=user admin"`
	Username string `json:"username" binding:"omitempty,min=3,max=50,printascii"`
}
