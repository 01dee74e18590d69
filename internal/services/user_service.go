package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/eventreg-be/internal/database"
	"github.com/isdelr/eventreg-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateAccount(ctx context.Context, form AccountForm) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	EnsureAdmin(ctx context.Context, username, email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db          *sql.DB
	activitySvc ActivityServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, activitySvc ActivityServiceProvider) *UserService {
	return &UserService{db: db, activitySvc: activitySvc}
}

const userColumns = "id, username, email, first_name, last_name, password_hash, is_admin, created_at"

func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	return user, err
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// getUserByUsername retrieves a single user by username, including the password hash.
func (s *UserService) getUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateAccount validates the form and creates a standard user, hashing their password.
func (s *UserService) CreateAccount(ctx context.Context, form AccountForm) (models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)

	if err := ValidateStruct(form); err != nil {
		return models.User{}, err
	}
	if form.Password != form.ConfirmPassword {
		return models.User{}, newValidationError("confirm_password", "Passwords do not match")
	}
	if err := s.checkAvailable(ctx, form.Username, form.Email); err != nil {
		return models.User{}, err
	}

	user, err := s.insertUser(ctx, models.User{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}, form.Password)
	if err != nil {
		return models.User{}, err
	}

	s.activitySvc.Record(ctx, "user.create", "info", fmt.Sprintf("Account '%s' created.", user.Username), &user.ID)
	return user, nil
}

// checkAvailable reports a ValidationError when the username or email is taken.
func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	var usernameTaken, emailTaken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE username = ?),
			EXISTS(SELECT 1 FROM users WHERE email = ?)`, username, email).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return fmt.Errorf("check username availability: %w", err)
	}

	verr := &ValidationError{Fields: map[string]string{}}
	if usernameTaken {
		verr.Fields["username"] = "A user with that username already exists."
	}
	if emailTaken {
		verr.Fields["email"] = "A user with that email already exists."
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

func (s *UserService) insertUser(ctx context.Context, user models.User, password string) (models.User, error) {
	if len(password) > maxPasswordBytes {
		return models.User{}, newValidationError("password",
			fmt.Sprintf("Ensure this value has at most %d bytes.", maxPasswordBytes))
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user.ID = uuid.New().String()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, email, first_name, last_name, password_hash, is_admin) VALUES(?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, string(hashedPassword), user.IsAdmin)
	if err != nil {
		// Lost a race against a concurrent signup with the same username or email.
		if database.IsUniqueViolation(err) {
			return models.User{}, newValidationError("username", "A user with that username or email already exists.")
		}
		return models.User{}, err
	}
	return s.GetUserByID(ctx, user.ID)
}

// Authenticate verifies a user's credentials. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.getUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Equalize timing with the wrong-password path.
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// EnsureAdmin creates the administrator account if it does not exist, or
// promotes an existing account with that username.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (models.User, error) {
	existing, err := s.getUserByUsername(ctx, username)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if _, err := s.db.ExecContext(ctx, "UPDATE users SET is_admin = TRUE WHERE id = ?", existing.ID); err != nil {
				return models.User{}, fmt.Errorf("promote administrator: %w", err)
			}
			s.activitySvc.Record(ctx, "user.promote", "warn", fmt.Sprintf("Account '%s' promoted to administrator.", username), &existing.ID)
		}
		return s.GetUserByID(ctx, existing.ID)
	case !errors.Is(err, ErrNotFound):
		return models.User{}, err
	}

	if password == "" {
		return models.User{}, newValidationError("password", "This field is required.")
	}
	if strings.TrimSpace(email) == "" {
		return models.User{}, newValidationError("email", "This field is required.")
	}
	user, err := s.insertUser(ctx, models.User{
		Username: username,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		IsAdmin:  true,
	}, password)
	if err != nil {
		return models.User{}, err
	}
	s.activitySvc.Record(ctx, "user.create", "warn", fmt.Sprintf("Administrator '%s' created.", username), &user.ID)
	return user, nil
}
