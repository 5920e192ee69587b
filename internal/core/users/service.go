package users

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const warmestLimit = 3

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type userService struct {
	userRepo UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Signup registers a new account with a bcrypt-hashed password
func (s *userService) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := s.validateSignupRequest(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Location:     req.Location,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Temperature:  DefaultTemperature,
	}

	// Repository surfaces duplicate username/email as conflict sentinels
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		"user_id", created.ID,
		"username", created.Username)

	return created, nil
}

// Login verifies the credentials and returns the matching user.
// Both an unknown email and a wrong password surface as ErrInvalidCredentials
// so callers can't probe which emails are registered.
func (s *userService) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetProfile retrieves a user by id
func (s *userService) GetProfile(ctx context.Context, id int64) (*User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// EditUsername renames the account. A duplicate username surfaces as
// ErrUsernameTaken from the repository.
func (s *userService) EditUsername(ctx context.Context, id int64, req EditUsernameRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, NewValidationError("username", "username is required")
	}

	return s.userRepo.UpdateUsername(ctx, id, username)
}

// EditLocation updates the neighborhood label and coordinate
func (s *userService) EditLocation(ctx context.Context, id int64, req EditLocationRequest) (*User, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, NewValidationError("location", "location is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, NewValidationError("coordinate", "coordinate out of range")
	}

	return s.userRepo.UpdateLocation(ctx, id, req.Location, req.Latitude, req.Longitude)
}

// EditSearchScope changes the discovery radius
func (s *userService) EditSearchScope(ctx context.Context, id int64, req EditSearchScopeRequest) (*User, error) {
	if req.SearchScope <= 0 {
		return nil, NewValidationError("searchScope", "search scope must be positive")
	}

	return s.userRepo.UpdateSearchScope(ctx, id, req.SearchScope)
}

// EditPassword changes the password after verifying the current one.
// A wrong current password is an ownership failure, not a validation one.
func (s *userService) EditPassword(ctx context.Context, id int64, req EditPasswordRequest) error {
	if req.NewPassword == "" {
		return NewValidationError("newPassword", "new password is required")
	}
	if req.NewPassword != req.NewPasswordConfirm {
		return NewValidationError("newPasswordConfirm", "passwords do not match")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", id)
	return nil
}

// WarmestUsers returns the top 3 users by temperature, lowest id first on ties
func (s *userService) WarmestUsers(ctx context.Context) ([]*User, error) {
	return s.userRepo.Warmest(ctx, warmestLimit)
}

func (s *userService) validateSignupRequest(req *SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" {
		return NewValidationError("username", "username is required")
	}
	if req.Email == "" {
		return NewValidationError("email", "email is required")
	}
	if !emailRegex.MatchString(req.Email) {
		return NewValidationError("email", "invalid email format")
	}
	if len(req.Password) < 4 {
		return NewValidationError("password", "password must be at least 4 characters")
	}
	if strings.TrimSpace(req.Location) == "" {
		return NewValidationError("location", "location is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return NewValidationError("coordinate", "coordinate out of range")
	}

	return nil
}
