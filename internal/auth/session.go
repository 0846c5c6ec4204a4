package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is a server-side login session carried by an HttpOnly cookie.
type Session struct {
	Token     string    `json:"-" db:"token"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, session Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, session Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert session: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = $1 AND expires_at > now()
	`

	var session Session
	err := r.db.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("repository: failed to select session: %w", err)
	}

	return &session, nil
}

func (r *postgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("repository: failed to delete session: %w", err)
	}

	return nil
}

func (r *postgresRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return fmt.Errorf("repository: failed to delete expired sessions: %w", err)
	}

	return nil
}

type Service interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (Session, error)
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type service struct {
	repo Repository
	ttl  time.Duration
}

func NewService(repo Repository, ttl time.Duration) Service {
	return &service{repo: repo, ttl: ttl}
}

func (s *service) CreateSession(ctx context.Context, userID uuid.UUID) (Session, error) {
	token, err := generateToken()
	if err != nil {
		return Session{}, fmt.Errorf("service: failed to generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create session")
		return Session{}, fmt.Errorf("service: failed to create session: %w", err)
	}

	return session, nil
}

func (s *service) GetSession(ctx context.Context, token string) (*Session, error) {
	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Error().Err(err).Msg("service: failed to get session")
		return nil, fmt.Errorf("service: failed to get session: %w", err)
	}

	return session, nil
}

func (s *service) DeleteSession(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token); err != nil {
		log.Error().Err(err).Msg("service: failed to delete session")
		return fmt.Errorf("service: failed to delete session: %w", err)
	}

	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
