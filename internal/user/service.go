package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTermsNotAccepted   = errors.New("terms of service must be accepted")
)

type Service interface {
	Register(ctx context.Context, u *User, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, u *User, newPassword string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, u *User, password string) (*User, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	if !u.TermsAccepted {
		return nil, ErrTermsNotAccepted
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if u.Role == "" {
		u.Role = RoleCustomer
	}

	createdID, err := s.repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	u.ID = createdID

	log.Info().Stringer("user_id", u.ID).Msg("service: user registered")
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Same error for unknown email and bad password.
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to get user by email")
		return nil, fmt.Errorf("service: failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("service: failed to get user by id: %w", err)
	}

	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, u *User, newPassword string) error {
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("service: failed to hash new password")
			return fmt.Errorf("service: failed to hash new password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	err := s.repo.Update(ctx, u)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("service: failed to update user")
		return fmt.Errorf("service: failed to update user: %w", err)
	}

	return nil
}
