package domain

import "time"

// Role determines what a user may do with expense claims.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// User represents a user of the application. Credential issuance lives in an
// external identity service; this backend only verifies tokens and keeps the
// user rows that claims reference.
type User struct {
	UserID    string    `json:"userID"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
