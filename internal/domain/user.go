package domain

import "time"

// User es la cuenta del proveedor de identidad. Su ID es la identidad opaca del encuestado.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
