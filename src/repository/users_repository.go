package repository

import (
	"context"
	"fmt"
	"net/http"

	"course-client/src/models"
	"course-client/src/schemas"
)

// UsersRepository handles profile reads and updates.
type UsersRepository struct {
	client *Client
}

func NewUsersRepository(client *Client) *UsersRepository {
	return &UsersRepository{client: client}
}

func (r *UsersRepository) Get(ctx context.Context, userID int) (*models.User, error) {
	var user models.User
	if err := r.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UsersRepository) Update(ctx context.Context, userID int, payload schemas.UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := r.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d", userID), payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
