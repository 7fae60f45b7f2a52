package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrAccountExists is returned when a username or email is already registered.
var ErrAccountExists = errors.New("account already exists")

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAdminConflict is returned when the configured admin username belongs
// to an account whose email or password differ from the configured ones.
var ErrAdminConflict = errors.New("admin account conflict")

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	log        *logrus.Logger

	mu       sync.RWMutex
	reserved map[string]bool // lower-cased usernames closed to registration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, logger *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		log:        logger,
		reserved:   make(map[string]bool),
	}
}

// ReserveUsername stops RegisterUser from handing out username.
func (s *AuthService) ReserveUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserved[strings.ToLower(username)] = true
}

func (s *AuthService) isReserved(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserved[strings.ToLower(username)]
}

// RegisterUser registers a new standard user, hashes their password, and
// saves them. Registration never grants admin rights.
func (s *AuthService) RegisterUser(user *models.User) error {
	if s.isReserved(user.Username) {
		return fmt.Errorf("username '%s' is reserved: %w", user.Username, ErrAccountExists)
	}
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("username '%s' already taken: %w", user.Username, ErrAccountExists)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrAccountExists)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.IsAdmin = false

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	s.log.WithField("username", user.Username).Info("User registered")
	return nil
}

// EnsureAdmin makes sure an admin account with the given username exists
// and reserves the username. An existing standard user of that name is only
// promoted when its email and password match the given ones; otherwise
// ErrAdminConflict is returned and nothing changes.
func (s *AuthService) EnsureAdmin(username, email, password string) (*models.User, error) {
	s.ReserveUsername(username)

	existing, err := s.userRepo.GetByUsername(username)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, nil
		}
		if !strings.EqualFold(existing.Email, email) ||
			bcrypt.CompareHashAndPassword([]byte(existing.Password), []byte(password)) != nil {
			s.log.WithField("username", username).Error("Refusing to promote account with different credentials")
			return nil, fmt.Errorf("user %s does not match the configured admin credentials: %w", username, ErrAdminConflict)
		}
		existing.IsAdmin = true
		if err := s.userRepo.Update(existing); err != nil {
			return nil, fmt.Errorf("failed to promote %s: %w", username, err)
		}
		s.log.WithField("username", username).Info("Promoted user to admin")
		return existing, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{Username: username, Email: email, Password: string(hashedPassword), IsAdmin: true}
	if err := s.userRepo.Create(admin); err != nil {
		return nil, fmt.Errorf("failed to create admin %s: %w", username, err)
	}
	s.log.WithField("username", username).Info("Created admin account")
	return admin, nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		s.log.WithError(err).Debug("Token validation failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
