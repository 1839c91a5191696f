package service

import (
	"context"

	"course-client/src/models"
	"course-client/src/schemas"
)

// UserAPI is the slice of the repository the user service depends on.
type UserAPI interface {
	Get(ctx context.Context, userID int) (*models.User, error)
	Update(ctx context.Context, userID int, payload schemas.UpdateUserRequest) (*models.User, error)
}

// UserService handles the profile flows for the logged-in user.
type UserService struct {
	api     UserAPI
	session SessionInfo
}

func NewUserService(api UserAPI, session SessionInfo) *UserService {
	return &UserService{api: api, session: session}
}

// Profile fetches the current user's profile.
func (s *UserService) Profile(ctx context.Context) (*models.User, error) {
	if !s.session.Authenticated() {
		return nil, models.ErrNotLoggedIn
	}
	return s.api.Get(ctx, s.session.UserID())
}

// UpdateProfile updates the current user's name and email.
func (s *UserService) UpdateProfile(ctx context.Context, name, email string) (*models.User, error) {
	if !s.session.Authenticated() {
		return nil, models.ErrNotLoggedIn
	}
	if name == "" || email == "" {
		return nil, schemas.NewValidationError("name and email are required")
	}
	return s.api.Update(ctx, s.session.UserID(), schemas.UpdateUserRequest{Name: name, Email: email})
}
