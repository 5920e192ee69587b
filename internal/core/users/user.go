package users

import (
	"time"
)

// DefaultTemperature is the reputation score every new member starts with.
// External trust signals adjust it later; this package never changes it.
const DefaultTemperature = 36.5

// User represents a marketplace member. The coordinate and search scope
// bound the geospatial discovery query; temperature is the reputation
// score used for the "warmest people" ranking.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Location     string    `json:"location"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Temperature  float64   `json:"temperature"`
	SearchScope  float64   `json:"searchScope"` // meters
	AvatarURL    *string   `json:"imgUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"modifiedAt"`
}

// SignupRequest represents the input for creating a new account
type SignupRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EditUsernameRequest renames the account; usernames are globally unique
type EditUsernameRequest struct {
	Username string `json:"username"`
}

// EditLocationRequest moves the account to a new neighborhood
type EditLocationRequest struct {
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EditSearchScopeRequest changes the discovery radius, in meters
type EditSearchScopeRequest struct {
	SearchScope float64 `json:"searchScope"`
}

// EditPasswordRequest changes the password after verifying the current one
type EditPasswordRequest struct {
	Password           string `json:"password"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}
