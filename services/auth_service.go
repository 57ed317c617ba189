package services

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"quizcraft/engine"
	"quizcraft/models"
)

type AuthService struct {
	db          *gorm.DB
	jwtSecret   []byte
	tokenTTL    time.Duration
	adminEmails map[string]struct{}
	now         func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, adminEmails []string) *AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[normalizeEmail(email)] = struct{}{}
	}
	return &AuthService{
		db:          db,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		adminEmails: admins,
		now:         time.Now,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, persistenceError("count users", err, nil)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	role := models.RoleUser
	if _, ok := s.adminEmails[email]; ok {
		role = models.RoleAdmin
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, persistenceError("create user", err, nil)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return s.issue(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, persistenceError("find user", err, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// ParseToken verifies a bearer token and returns its claims.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Authenticate resolves a token to an Actor, using the stored role so role
// changes apply without re-issuing tokens.
func (s *AuthService) Authenticate(token string) (*Actor, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	role, err := s.RoleOf(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &Actor{UserID: claims.UserID, Role: role}, nil
}

func (s *AuthService) Profile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, persistenceError("find user", err, ErrUserNotFound)
	}
	return &user, nil
}

func (s *AuthService) RoleOf(userID uint) (models.Role, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *AuthService) ListUsers(actor *Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, persistenceError("list users", err, nil)
	}
	return users, nil
}

func (s *AuthService) SetRole(actor *Actor, userID uint, role models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, &engine.ValidationError{Field: "role", Message: "must be admin or user"}
	}

	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, persistenceError("update role", err, nil)
	}
	user.Role = role

	logrus.WithFields(logrus.Fields{"user_id": userID, "role": role, "by": actor.UserID}).Info("user role changed")
	return user, nil
}

func (s *AuthService) issue(user models.User) (*AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
