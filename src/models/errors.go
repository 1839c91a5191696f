package models

import "errors"

// Domain-level sentinel errors for business logic.
// These errors should not contain HTTP-specific information.

var (
	// ErrNotLoggedIn indicates an operation that requires a session was
	// attempted while logged out
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrOperationInFlight indicates an enroll/unenroll request for the same
	// course is already pending; the new request is ignored, not queued
	ErrOperationInFlight = errors.New("operation already in flight for this course")

	// ErrNoLessons indicates enrollment was rejected locally because the
	// course has no content
	ErrNoLessons = errors.New("course has no lessons")

	// ErrNotCourseOwner indicates a lesson or course mutation by a user who
	// does not own the course
	ErrNotCourseOwner = errors.New("current user does not own this course")

	// ErrClaimsDecode indicates the token payload segment could not be decoded
	ErrClaimsDecode = errors.New("cannot decode token claims")
)
