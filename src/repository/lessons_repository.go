package repository

import (
	"context"
	"fmt"
	"net/http"

	"course-client/src/models"
	"course-client/src/schemas"
)

// LessonsRepository handles all HTTP operations for lessons under a course.
type LessonsRepository struct {
	client *Client
}

func NewLessonsRepository(client *Client) *LessonsRepository {
	return &LessonsRepository{client: client}
}

func (r *LessonsRepository) List(ctx context.Context, courseID int) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/lessons", courseID), nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *LessonsRepository) Get(ctx context.Context, courseID, lessonID int) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/lessons/%d", courseID, lessonID), nil, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonsRepository) Create(ctx context.Context, courseID int, payload schemas.LessonRequest) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/lessons", courseID), payload, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonsRepository) Update(ctx context.Context, courseID, lessonID int, payload schemas.LessonRequest) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/courses/%d/lessons/%d", courseID, lessonID), payload, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonsRepository) Delete(ctx context.Context, courseID, lessonID int) error {
	return r.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d/lessons/%d", courseID, lessonID), nil, nil)
}
