package service

import (
	"context"
	"net/http"
	"sync"

	"course-client/logger"
	"course-client/src/models"
	"course-client/src/schemas"
)

// EnrollmentAPI is the slice of the repository the reconciler depends on.
type EnrollmentAPI interface {
	Enroll(ctx context.Context, courseID, userID int) error
	Unenroll(ctx context.Context, courseID, userID int) error
	EnrolledCourseIDs(ctx context.Context, userID int) ([]int, error)
}

// LessonLookup answers whether a course has content. The reconciler prefers
// locally-known answers so an enroll click on an already-rendered detail
// view makes no extra network calls.
type LessonLookup interface {
	HasLessons(ctx context.Context, courseID int) (bool, error)
}

// Notices shown for enrollment outcomes. Every terminal outcome maps to
// exactly one of these.
const (
	noticeEnrolled        = "you have been enrolled in the course"
	noticeAlreadyEnrolled = "you are already enrolled in this course"
	noticeNoLessons       = "this course has no lessons yet and cannot be enrolled in"
	noticeUnenrolled      = "you have left the course"
	noticeNotEnrolled     = "you are not enrolled in this course"
	noticeEnrollFailed    = "enrollment failed, please try again later"
	noticeUnenrollFailed  = "leaving the course failed, please try again later"
)

// EnrollmentReconciler performs enroll/unenroll while tolerating divergence
// between the client's local belief and the server's authoritative state.
// At most one mutation per course is in flight at a time; a second request
// while one is pending is ignored, not queued.
type EnrollmentReconciler struct {
	mu       sync.Mutex
	inflight map[int]bool
	enrolled map[int]bool
	kn       bool // enrolled set has been loaded at least once

	api      EnrollmentAPI
	courses  *CourseCache
	lessons  LessonLookup
	session  SessionInfo
	notifier Notifier
}

func NewEnrollmentReconciler(api EnrollmentAPI, courses *CourseCache, lessons LessonLookup, session SessionInfo, notifier Notifier) *EnrollmentReconciler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &EnrollmentReconciler{
		inflight: map[int]bool{},
		enrolled: map[int]bool{},
		api:      api,
		courses:  courses,
		lessons:  lessons,
		session:  session,
		notifier: notifier,
	}
}

// Enroll runs the NotEnrolled -> Enrolling -> {Enrolled | NotEnrolled}
// transition. Local guards fire before any network call: an already-enrolled
// user gets a benign notice, a course without lessons is rejected outright.
func (r *EnrollmentReconciler) Enroll(ctx context.Context, courseID int) error {
	if !r.session.Authenticated() {
		r.notifier.Notify("error", "please log in before enrolling")
		return models.ErrNotLoggedIn
	}

	if !r.acquire(courseID) {
		return models.ErrOperationInFlight
	}
	defer r.release(courseID)

	if r.IsEnrolled(courseID) {
		r.notifier.Notify("notice", noticeAlreadyEnrolled)
		return nil
	}

	hasLessons, err := r.lessons.HasLessons(ctx, courseID)
	if err == nil && !hasLessons {
		r.notifier.Notify("notice", noticeNoLessons)
		return models.ErrNoLessons
	}
	// A failed lesson lookup does not block enrollment; the server is the
	// authority and will reject if it must.

	if err := r.api.Enroll(ctx, courseID, r.session.UserID()); err != nil {
		if !classifyEnrollFault(err) {
			r.notifier.Notify("error", noticeEnrollFailed)
			return err
		}
		logger.L().WithField("course_id", courseID).WithError(err).
			Warn("enroll fault reclassified as already enrolled")
		r.setEnrolled(courseID, true)
		r.refresh(ctx)
		r.notifier.Notify("notice", noticeAlreadyEnrolled)
		return nil
	}

	r.setEnrolled(courseID, true)
	r.refresh(ctx)
	r.notifier.Notify("success", noticeEnrolled)
	return nil
}

// Unenroll runs the symmetric Enrolled -> Unenrolling -> {NotEnrolled |
// Enrolled} transition.
func (r *EnrollmentReconciler) Unenroll(ctx context.Context, courseID int) error {
	if !r.session.Authenticated() {
		r.notifier.Notify("error", "please log in first")
		return models.ErrNotLoggedIn
	}

	if !r.acquire(courseID) {
		return models.ErrOperationInFlight
	}
	defer r.release(courseID)

	if r.known() && !r.IsEnrolled(courseID) {
		r.notifier.Notify("notice", noticeNotEnrolled)
		return nil
	}

	if err := r.api.Unenroll(ctx, courseID, r.session.UserID()); err != nil {
		if !classifyUnenrollFault(err) {
			r.notifier.Notify("error", noticeUnenrollFailed)
			return err
		}
		logger.L().WithField("course_id", courseID).WithError(err).
			Warn("unenroll fault reclassified as not enrolled")
		r.setEnrolled(courseID, false)
		r.refresh(ctx)
		r.notifier.Notify("notice", noticeNotEnrolled)
		return nil
	}

	r.setEnrolled(courseID, false)
	r.refresh(ctx)
	r.notifier.Notify("success", noticeUnenrolled)
	return nil
}

// EnrolledCourseIDs fetches the authoritative enrolled set and replaces the
// local one.
func (r *EnrollmentReconciler) EnrolledCourseIDs(ctx context.Context) ([]int, error) {
	ids, err := r.api.EnrolledCourseIDs(ctx, r.session.UserID())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.enrolled = make(map[int]bool, len(ids))
	for _, id := range ids {
		r.enrolled[id] = true
	}
	r.kn = true
	r.mu.Unlock()
	return ids, nil
}

// IsEnrolled is a synchronous read of the local derived state.
func (r *EnrollmentReconciler) IsEnrolled(courseID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enrolled[courseID]
}

// classifyEnrollFault decides whether an enroll failure is the known
// duplicate-enrollment ambiguity. The server enforces uniqueness on
// (course, student) but reports the violation as a generic fault, so a 500
// or a duplicate marker is read as "already enrolled". Deliberate policy;
// revisit here if the backend ever grows an idempotent enroll endpoint.
func classifyEnrollFault(err error) bool {
	apiErr, ok := schemas.AsAPIError(err)
	if !ok {
		return false
	}
	if apiErr.Kind == schemas.KindConflict {
		return true
	}
	return apiErr.Status == http.StatusInternalServerError || schemas.HasDuplicateMarker(apiErr.Detail)
}

// classifyUnenrollFault is the symmetric policy: a missing enrollment row
// surfaces as 404 or a generic fault, both read as "already not enrolled".
func classifyUnenrollFault(err error) bool {
	apiErr, ok := schemas.AsAPIError(err)
	if !ok {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusInternalServerError
}

// refresh converges local state on server truth after any mutation: the
// course cache is invalidated and the enrolled set refetched. Failures here
// are logged, not surfaced; the mutation itself already succeeded.
func (r *EnrollmentReconciler) refresh(ctx context.Context) {
	r.courses.Invalidate()
	if _, err := r.EnrolledCourseIDs(ctx); err != nil {
		logger.L().WithError(err).Warn("could not refresh enrolled course set")
	}
}

func (r *EnrollmentReconciler) setEnrolled(courseID int, enrolled bool) {
	r.mu.Lock()
	r.enrolled[courseID] = enrolled
	r.mu.Unlock()
	r.courses.MarkEnrolled(courseID, enrolled)
}

func (r *EnrollmentReconciler) known() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kn
}

func (r *EnrollmentReconciler) acquire(courseID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[courseID] {
		return false
	}
	r.inflight[courseID] = true
	return true
}

func (r *EnrollmentReconciler) release(courseID int) {
	r.mu.Lock()
	delete(r.inflight, courseID)
	r.mu.Unlock()
}
