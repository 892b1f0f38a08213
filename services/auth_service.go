package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"champlink-platform/models"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// AuthService handles registration and login.
type AuthService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewAuthService(db *gorm.DB, log *zap.Logger) *AuthService {
	return &AuthService{DB: db, Log: log}
}

type authRequest struct {
	Action      string `json:"action"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Login       string `json:"login"`
}

// Dispatch routes an auth request by its action field.
func (s *AuthService) Dispatch(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	switch req.Action {
	case "login":
		return s.login(c, req)
	case "register", "":
		return s.register(c, req)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid action"})
	}
}

// ValidateUsername checks the registration username rules.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain latin letters, digits and underscores")
	}
	return nil
}

// ValidatePassword checks the registration password rules.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// ValidateEmail checks the email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email address")
	}
	return nil
}

func (s *AuthService) register(c *fiber.Ctx, req authRequest) error {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	if username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}
	if err := ValidateUsername(username); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email is required"})
	}
	if err := ValidateEmail(email); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "password is required"})
	}
	if err := ValidatePassword(req.Password); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var existing models.User
	err := s.DB.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "a user with this username or email already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to hash password"})
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Points:       100,
		Level:        1,
		IsActive:     true,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create user"})
	}

	s.Log.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return c.Status(201).JSON(fiber.Map{
		"message": "registration successful",
		"user":    user,
	})
}

func (s *AuthService) login(c *fiber.Ctx, req authRequest) error {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		login = strings.TrimSpace(req.Username)
	}
	if login == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "login and password are required"})
	}

	var user models.User
	err := s.DB.
		Where("(username = ? OR email = ?) AND is_active = true", login, strings.ToLower(login)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(401).JSON(fiber.Map{"error": "invalid login or password"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid login or password"})
	}

	s.Log.Info("user logged in", zap.Uint("user_id", user.ID))

	return c.JSON(fiber.Map{
		"message": "login successful",
		"user":    user,
	})
}
