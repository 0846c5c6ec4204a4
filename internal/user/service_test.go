package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

type fakeRepository struct {
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (f *fakeRepository) Create(_ context.Context, u *user.User) (uuid.UUID, error) {
	if _, exists := f.byEmail[strings.ToLower(u.Email)]; exists {
		return uuid.Nil, user.ErrEmailExists
	}
	id := uuid.Must(uuid.NewV4())
	stored := *u
	stored.ID = id
	f.byID[id] = &stored
	f.byEmail[strings.ToLower(u.Email)] = &stored
	return id, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	stored, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRepository) Update(_ context.Context, u *user.User) error {
	stored, ok := f.byID[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	*stored = *u
	return nil
}

func newCustomer() *user.User {
	return &user.User{
		Email:         gofakeit.Email(),
		FirstName:     gofakeit.FirstName(),
		LastName:      gofakeit.LastName(),
		Phone:         "+381641234567",
		TermsAccepted: true,
	}
}

func TestService_Register(t *testing.T) {
	repo := newFakeRepository()
	svc := user.NewService(repo)

	input := newCustomer()
	password := gofakeit.Password(true, true, true, false, false, 12)

	created, err := svc.Register(context.Background(), input, password)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, user.RoleCustomer, created.Role, "registration never grants admin")
	assert.NotEqual(t, password, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(password)))
}

func TestService_Register_TermsRequired(t *testing.T) {
	svc := user.NewService(newFakeRepository())

	input := newCustomer()
	input.TermsAccepted = false

	_, err := svc.Register(context.Background(), input, "lozinka123")
	assert.True(t, errors.Is(err, user.ErrTermsNotAccepted))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := user.NewService(repo)

	first := newCustomer()
	_, err := svc.Register(context.Background(), first, "lozinka123")
	require.NoError(t, err)

	second := newCustomer()
	second.Email = first.Email
	_, err = svc.Register(context.Background(), second, "lozinka456")
	assert.True(t, errors.Is(err, user.ErrEmailExists))
}

func TestService_Authenticate(t *testing.T) {
	repo := newFakeRepository()
	svc := user.NewService(repo)

	input := newCustomer()
	password := gofakeit.Password(true, true, true, false, false, 12)
	registered, err := svc.Register(context.Background(), input, password)
	require.NoError(t, err)

	t.Run("valid_credentials", func(t *testing.T) {
		authenticated, err := svc.Authenticate(context.Background(), registered.Email, password)
		require.NoError(t, err)

		diff := cmp.Diff(registered, authenticated, cmpopts.IgnoreFields(user.User{}, "CreatedAt", "UpdatedAt"))
		assert.Empty(t, diff)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), registered.Email, "pogresna")
		assert.True(t, errors.Is(err, user.ErrInvalidCredentials))
	})

	t.Run("unknown_email", func(t *testing.T) {
		// Indistinguishable from a wrong password on purpose.
		_, err := svc.Authenticate(context.Background(), "niko@example.rs", password)
		assert.True(t, errors.Is(err, user.ErrInvalidCredentials))
	})
}

func TestService_UpdateProfile(t *testing.T) {
	repo := newFakeRepository()
	svc := user.NewService(repo)

	registered, err := svc.Register(context.Background(), newCustomer(), "stara-lozinka")
	require.NoError(t, err)

	registered.FirstName = "Jovana"
	require.NoError(t, svc.UpdateProfile(context.Background(), registered, ""))

	reloaded, err := svc.GetByID(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jovana", reloaded.FirstName)

	// Omitting the password keeps the old hash working.
	_, err = svc.Authenticate(context.Background(), registered.Email, "stara-lozinka")
	assert.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(context.Background(), registered, "nova-lozinka"))

	_, err = svc.Authenticate(context.Background(), registered.Email, "nova-lozinka")
	assert.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), registered.Email, "stara-lozinka")
	assert.True(t, errors.Is(err, user.ErrInvalidCredentials))
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc := user.NewService(newFakeRepository())

	_, err := svc.GetByID(context.Background(), uuid.Must(uuid.NewV4()))
	assert.True(t, errors.Is(err, user.ErrNotFound))
}
