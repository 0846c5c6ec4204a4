package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

type RegisterRequest struct {
	FirstName     string  `json:"firstName" validate:"required,min=2"`
	LastName      string  `json:"lastName" validate:"required,min=2"`
	Email         string  `json:"email" validate:"required,strict_email"`
	Phone         string  `json:"phone" validate:"required,rs_phone"`
	Password      string  `json:"password" validate:"required,min=8"`
	Gender        string  `json:"gender" validate:"omitempty,oneof=male female other"`
	TermsAccepted bool    `json:"termsAccepted" validate:"required"`
	BirthDate     *string `json:"birthDate"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName string  `json:"firstName" validate:"required,min=2"`
	LastName  string  `json:"lastName" validate:"required,min=2"`
	Phone     string  `json:"phone" validate:"required,rs_phone"`
	Gender    string  `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate *string `json:"birthDate"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type UserResponse struct {
	User *user.User `json:"user"`
}

type AuthHandler struct {
	users    user.Service
	sessions auth.Service
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, sessions auth.Service) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, validate: newValidator()}
}

// RegisterRoutes wires the auth endpoints; authed is the subrouter already
// carrying the session middleware.
func (h *AuthHandler) RegisterRoutes(public chi.Router, authed chi.Router) {
	public.Post("/register", h.handleRegister)
	public.Post("/login", h.handleLogin)

	authed.Post("/logout", h.handleLogout)
	authed.Get("/check-auth", h.handleCheckAuth)
	authed.Get("/profile", h.handleProfile)
	authed.Put("/update-profile", h.handleUpdateProfile)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, firstValidationError(err))
		return
	}

	birthDate, err := parseBirthDate(requestPayload.BirthDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "field 'birthDate' must be formatted as YYYY-MM-DD")
		return
	}

	domainUser := user.User{
		Email:         requestPayload.Email,
		FirstName:     requestPayload.FirstName,
		LastName:      requestPayload.LastName,
		Phone:         requestPayload.Phone,
		Gender:        requestPayload.Gender,
		TermsAccepted: requestPayload.TermsAccepted,
		BirthDate:     birthDate,
		Role:          user.RoleCustomer,
	}

	createdUser, err := h.users.Register(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to register user"))
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), createdUser.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", createdUser.ID).Msg("Failed to create session after register")
		respondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setSessionCookie(w, session)
	respondWithJSON(w, http.StatusCreated, UserResponse{User: createdUser})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, firstValidationError(err))
		return
	}

	authedUser, err := h.users.Authenticate(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to log in"))
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), authedUser.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", authedUser.ID).Msg("Failed to create session after login")
		respondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setSessionCookie(w, session)
	respondWithJSON(w, http.StatusOK, UserResponse{User: authedUser})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.CookieName)
	if err == nil {
		if err := h.sessions.DeleteSession(r.Context(), cookie.Value); err != nil {
			log.Error().Err(err).Msg("Failed to delete session on logout")
		}
	}

	clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": u})
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondWithJSON(w, http.StatusOK, UserResponse{User: u})
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var requestPayload UpdateProfileRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, firstValidationError(err))
		return
	}

	birthDate, err := parseBirthDate(requestPayload.BirthDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "field 'birthDate' must be formatted as YYYY-MM-DD")
		return
	}

	// Email and role cannot be changed through the profile endpoint.
	updated := *u
	updated.FirstName = requestPayload.FirstName
	updated.LastName = requestPayload.LastName
	updated.Phone = requestPayload.Phone
	updated.Gender = requestPayload.Gender
	if birthDate != nil {
		updated.BirthDate = birthDate
	}

	newPassword := ""
	if requestPayload.Password != nil {
		newPassword = *requestPayload.Password
	}

	if err := h.users.UpdateProfile(r.Context(), &updated, newPassword); err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to update profile via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update profile"))
		return
	}

	respondWithJSON(w, http.StatusOK, UserResponse{User: &updated})
}

func setSessionCookie(w http.ResponseWriter, session auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
