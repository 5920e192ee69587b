package users

import "context"

// UserRepository defines the interface for user data persistence
type UserRepository interface {
	// Create inserts a new user. Duplicate username/email surface as
	// ErrUsernameTaken / ErrEmailTaken.
	Create(ctx context.Context, user *User) (*User, error)

	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	UpdateUsername(ctx context.Context, id int64, username string) (*User, error)
	UpdateLocation(ctx context.Context, id int64, location string, lat, lng float64) (*User, error)
	UpdateSearchScope(ctx context.Context, id int64, scope float64) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Warmest returns up to limit users ordered by temperature descending.
	// Ties break on lowest id first.
	Warmest(ctx context.Context, limit int) ([]*User, error)
}

// UserService defines the interface for user business logic
type UserService interface {
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetProfile(ctx context.Context, id int64) (*User, error)
	EditUsername(ctx context.Context, id int64, req EditUsernameRequest) (*User, error)
	EditLocation(ctx context.Context, id int64, req EditLocationRequest) (*User, error)
	EditSearchScope(ctx context.Context, id int64, req EditSearchScopeRequest) (*User, error)
	EditPassword(ctx context.Context, id int64, req EditPasswordRequest) error

	// WarmestUsers returns the top 3 users by temperature
	WarmestUsers(ctx context.Context) ([]*User, error)
}
