package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

// fakeRepository mimics the Postgres repository's lookup contract: expired
// sessions are invisible, not returned.
type fakeRepository struct {
	sessions map[string]auth.Session
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{sessions: make(map[string]auth.Session)}
}

func (f *fakeRepository) Create(_ context.Context, session auth.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeRepository) GetByToken(_ context.Context, token string) (*auth.Session, error) {
	session, ok := f.sessions[token]
	if !ok || !session.ExpiresAt.After(time.Now()) {
		return nil, auth.ErrSessionNotFound
	}
	return &session, nil
}

func (f *fakeRepository) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeRepository) DeleteExpired(_ context.Context) error {
	for token, session := range f.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(f.sessions, token)
		}
	}
	return nil
}

type fakeUserService struct {
	users map[uuid.UUID]*user.User
}

func (f *fakeUserService) Register(context.Context, *user.User, string) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) Authenticate(context.Context, string, string) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserService) UpdateProfile(context.Context, *user.User, string) error {
	panic("not used")
}

func TestService_CreateSession(t *testing.T) {
	repo := newFakeRepository()
	svc := auth.NewService(repo, 72*time.Hour)
	userID := uuid.Must(uuid.NewV4())

	session, err := svc.CreateSession(context.Background(), userID)
	require.NoError(t, err)

	assert.Len(t, session.Token, 64, "token is 32 random bytes hex-encoded")
	assert.Equal(t, userID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), session.ExpiresAt, time.Minute)

	second, err := svc.CreateSession(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, second.Token)
}

func TestService_GetSession_ExpiredInvisible(t *testing.T) {
	repo := newFakeRepository()
	svc := auth.NewService(repo, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	repo.sessions["stale"] = auth.Session{
		Token:     "stale",
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := svc.GetSession(context.Background(), "stale")
	assert.True(t, errors.Is(err, auth.ErrSessionNotFound))
}

func TestService_DeleteSession(t *testing.T) {
	repo := newFakeRepository()
	svc := auth.NewService(repo, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	session, err := svc.CreateSession(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(context.Background(), session.Token))

	_, err = svc.GetSession(context.Background(), session.Token)
	assert.True(t, errors.Is(err, auth.ErrSessionNotFound))
}

func TestMiddleware_Authenticate(t *testing.T) {
	repo := newFakeRepository()
	sessions := auth.NewService(repo, time.Hour)

	customer := &user.User{ID: uuid.Must(uuid.NewV4()), Email: "kupac@example.rs", Role: user.RoleCustomer}
	users := &fakeUserService{users: map[uuid.UUID]*user.User{customer.ID: customer}}

	mw := auth.NewMiddleware(sessions, users)

	var seen *user.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid_cookie", func(t *testing.T) {
		session, err := sessions.CreateSession(context.Background(), customer.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: session.Token})
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, customer.ID, seen.ID)
	})

	t.Run("missing_cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired_session", func(t *testing.T) {
		repo.sessions["expired"] = auth.Session{
			Token:     "expired",
			UserID:    customer.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "expired"})
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	mw := auth.NewMiddleware(nil, nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin_allowed", func(t *testing.T) {
		admin := &user.User{ID: uuid.Must(uuid.NewV4()), Role: user.RoleAdmin}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.ContextWithUser(req.Context(), admin))
		rec := httptest.NewRecorder()

		mw.RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("customer_forbidden", func(t *testing.T) {
		customer := &user.User{ID: uuid.Must(uuid.NewV4()), Role: user.RoleCustomer}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.ContextWithUser(req.Context(), customer))
		rec := httptest.NewRecorder()

		mw.RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
