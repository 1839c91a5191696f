package repository

import (
	"context"
	"net/http"

	"course-client/src/schemas"
)

// AuthRepository handles the auth bootstrap endpoints. These calls are the
// only ones the transport leaves without a bearer credential.
type AuthRepository struct {
	client *Client
}

func NewAuthRepository(client *Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login exchanges credentials for a token and identity fields. Bad
// credentials surface as an auth_failed error that never reveals which of
// email or password was wrong.
func (r *AuthRepository) Login(ctx context.Context, email, password string) (*schemas.LoginResponse, error) {
	var resp schemas.LoginResponse
	err := r.client.doJSON(ctx, http.MethodPost, "/auth/login", schemas.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		if apiErr, ok := schemas.AsAPIError(err); ok {
			// Some backend versions answer bad credentials with 400
			if apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized {
				return nil, schemas.NewAuthFailedError()
			}
		}
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns the server confirmation. It never
// returns a token; establishing a session requires an explicit login.
func (r *AuthRepository) Register(ctx context.Context, payload schemas.RegisterRequest) (*schemas.RegisterResponse, error) {
	var resp schemas.RegisterResponse
	if err := r.client.doJSON(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
