package models

import "time"

// User is the database representation of a user.
type User struct {
	UserID    string    `db:"user_id"`
	Email     string    `db:"email"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}
