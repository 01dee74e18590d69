package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/eventreg-be/internal/auth"
	"github.com/isdelr/eventreg-be/internal/models"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles account creation, login, logout and profile requests.
type UserHandler struct {
	service      services.UserServiceProvider
	tokens       *auth.TokenManager
	secureCookie bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenManager, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, secureCookie: secureCookie}
}

var accountFormFields = []string{"username", "email", "first_name", "last_name", "password", "confirm_password"}

// RegisterForm describes the account creation form.
func (h *UserHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": accountFormFields})
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := services.AccountForm{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	user, err := h.service.CreateAccount(r.Context(), form)
	if err != nil {
		writeServiceError(w, r, err, "Failed to register user")
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	writeFlash(w, http.StatusCreated, Flash{
		Level:    LevelSuccess,
		Message:  "Registration successful! Please login.",
		Redirect: "/login",
	})
}

// LoginForm describes the login form, or sends a signed-in user home.
func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if principal(r) != nil {
		writeRedirect(w, r, "/home")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": []string{"username", "password"}})
}

// Login handles standard user authentication.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if principal(r) != nil {
		writeRedirect(w, r, "/home")
		return
	}
	user, err := h.authenticate(r)
	if err != nil {
		h.writeLoginError(w, r, err, "Invalid username or password.")
		return
	}
	h.startSession(w, r, user, "/home")
}

// AdminLoginForm describes the admin login form, or sends a signed-in admin to the dashboard.
func (h *UserHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	if principal(r).IsAdmin() {
		writeRedirect(w, r, "/admin_dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": []string{"username", "password"}})
}

// AdminLogin authenticates like Login but only admits administrators.
func (h *UserHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if principal(r).IsAdmin() {
		writeRedirect(w, r, "/admin_dashboard")
		return
	}
	user, err := h.authenticate(r)
	if err == nil && !user.IsAdmin {
		log.Warn().Str("user_id", user.ID).Msg("Non-administrator attempted admin login")
		err = services.ErrInvalidCredentials
	}
	if err != nil {
		h.writeLoginError(w, r, err, "Invalid admin credentials.")
		return
	}
	h.startSession(w, r, user, "/admin_dashboard")
}

// authenticate is the credential check shared by both login paths.
func (h *UserHandler) authenticate(r *http.Request) (models.User, error) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		return models.User{}, services.ErrInvalidCredentials
	}

	user, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed authentication attempt")
		return models.User{}, err
	}
	return user, nil
}

func (h *UserHandler) writeLoginError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeFlash(w, http.StatusUnauthorized, Flash{Level: LevelError, Message: msg})
		return
	}
	writeServiceError(w, r, err, "Failed to authenticate user")
}

func (h *UserHandler) startSession(w http.ResponseWriter, r *http.Request, user models.User, redirect string) {
	token, expires, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong. Please try again later."})
		return
	}
	auth.SetSessionCookie(w, token, expires, h.secureCookie)

	writeFlash(w, http.StatusOK, Flash{
		Level:    LevelSuccess,
		Message:  "Welcome back, " + user.Username + ".",
		Redirect: redirect,
		Data:     map[string]any{"token": token, "user": user},
	})
}

// Logout ends the session and sends the user to the landing page.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)
	writeRedirect(w, r, "/")
}

// Profile returns the signed-in user's own account.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": principal(r).User})
}
