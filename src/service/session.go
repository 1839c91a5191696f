package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"course-client/logger"
	"course-client/src/auth"
	"course-client/src/models"
	"course-client/src/schemas"
	"course-client/src/store"
)

// AuthAPI is the slice of the repository the session manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*schemas.LoginResponse, error)
	Register(ctx context.Context, payload schemas.RegisterRequest) (*schemas.RegisterResponse, error)
}

// SessionManager owns the process-wide session singleton. All mutation goes
// through Login/Register/Logout; readers always get an immutable snapshot.
// Every completed mutation republishes the full snapshot to subscribers.
type SessionManager struct {
	mu       sync.RWMutex
	store    store.TokenStore
	api      AuthAPI
	validate *validator.Validate
	current  models.Session
	subs     map[int]chan models.Session
	nextSub  int
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"required,oneof=student teacher"`
}

// NewSessionManager constructs the manager and performs initialization:
// the persisted token, if any, is decoded into an initial snapshot. A token
// whose payload cannot be decoded is retained with a guest role; whatever
// id the store still holds is recovered.
func NewSessionManager(tokens store.TokenStore, api AuthAPI) *SessionManager {
	m := &SessionManager{
		store:    tokens,
		api:      api,
		validate: validator.New(),
		subs:     map[int]chan models.Session{},
	}
	m.current = m.restore()
	return m
}

func (m *SessionManager) restore() models.Session {
	token, ok := m.store.Get(store.KeyToken)
	if !ok || token == "" {
		return models.Guest()
	}

	session := models.Guest()
	session.Token = token
	session.Name, _ = m.store.Get(store.KeyName)
	session.Email, _ = m.store.Get(store.KeyEmail)

	claims, err := auth.DecodeClaims(token)
	if err != nil {
		logger.L().WithError(err).Warn("stored token payload is undecodable, keeping token with guest role")
		if raw, ok := m.store.Get(store.KeyUserID); ok {
			if id, convErr := strconv.Atoi(raw); convErr == nil {
				session.UserID = id
			}
		}
		return session
	}

	session.UserID = claims.UserID
	session.Role = claims.Role
	return session
}

// Login exchanges credentials for a session. On success the full snapshot is
// replaced and persisted; on any failure the session state is untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	input := loginInput{Email: email, Password: password}
	if err := m.validate.Struct(input); err != nil {
		return schemas.NewValidationError("email and password are required")
	}

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	name := resp.UserName
	if name == "" {
		// The backend does not always return the display name
		name = email
	}
	respEmail := resp.Email
	if respEmail == "" {
		respEmail = email
	}

	session := models.Session{
		UserID: resp.UserID,
		Role:   models.ParseRole(resp.Role),
		Name:   name,
		Email:  respEmail,
		Token:  resp.Token,
	}

	values := map[string]string{
		store.KeyToken:  session.Token,
		store.KeyUserID: strconv.Itoa(session.UserID),
		store.KeyRole:   string(session.Role),
	}
	if session.Name != "" {
		values[store.KeyName] = session.Name
	}
	if session.Email != "" {
		values[store.KeyEmail] = session.Email
	}
	if err := m.store.SetAll(values); err != nil {
		return fmt.Errorf("cannot persist session: %w", err)
	}

	m.publish(session)
	logger.L().WithField("user_id", session.UserID).WithField("role", session.Role).Info("logged in")
	return nil
}

// Register creates an account. It deliberately does not establish a session;
// the caller must log in explicitly afterwards. A duplicate email surfaces
// as a conflict error with the server-provided marker message.
func (m *SessionManager) Register(ctx context.Context, name, email, password string, role models.Role) (string, error) {
	input := registerInput{Name: name, Email: email, Password: password, Role: string(role)}
	if err := m.validate.Struct(input); err != nil {
		return "", schemas.NewValidationError("name, a valid email, a password of at least 6 characters and a role are required")
	}

	resp, err := m.api.Register(ctx, schemas.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(role),
	})
	if err != nil {
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "registration successful, please log in"
	}
	return message, nil
}

// Logout clears every persisted field atomically and republishes the guest
// snapshot. A partial clear (token gone, role stale) is not possible: the
// store swap happens before the snapshot is replaced.
func (m *SessionManager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.publish(models.Guest())
	logger.L().Info("logged out")
	return nil
}

// CurrentUser returns the current snapshot. Never triggers network I/O.
func (m *SessionManager) CurrentUser() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the current credential, empty when logged out.
func (m *SessionManager) Token() string {
	return m.CurrentUser().Token
}

// UserID returns the current user id, zero when logged out.
func (m *SessionManager) UserID() int {
	return m.CurrentUser().UserID
}

// Role returns the current role, RoleGuest when logged out.
func (m *SessionManager) Role() models.Role {
	return m.CurrentUser().Role
}

// Authenticated reports whether a credential is held.
func (m *SessionManager) Authenticated() bool {
	return m.CurrentUser().Authenticated()
}

// Subscribe registers an observer of session snapshots. The channel
// immediately receives the current value and then every subsequent mutation.
// The returned func detaches the observer; views must call it on teardown.
func (m *SessionManager) Subscribe() (<-chan models.Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan models.Session, 1)
	ch <- m.current
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish replaces the snapshot and notifies subscribers. Slow subscribers
// keep only the latest value; publication never blocks a mutation.
func (m *SessionManager) publish(session models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = session
	for _, ch := range m.subs {
		select {
		case ch <- session:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- session
		}
	}
}
