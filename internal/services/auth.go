package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/config"
	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/internal/utils"
	"github.com/codehive/server/pkg/response"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Register creates a local account. Username and email must both be unused.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("username already taken")
	}

	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("email already registered")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates a user and returns an access/refresh token pair.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid username or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, response.NewUnauthorized("user is disabled")
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid username or password")
	}

	accessHours := s.jwtConfig.ExpireHour
	refreshHours := s.jwtConfig.RefreshExpireHour

	token, err := utils.GenerateToken(user.ID, user.Username, accessHours)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpireAt := time.Now().Add(time.Duration(refreshHours) * time.Hour)
	refreshRecord := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&refreshRecord).Error; err != nil {
		return nil, err
	}

	// Update last login time
	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            &user,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in the same transaction.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, response.NewBadRequest("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	if stored.RevokedAt != nil {
		return nil, response.NewUnauthorized("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, response.NewUnauthorized("refresh token expired")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("user is disabled")
	}

	accessHours := s.jwtConfig.ExpireHour
	refreshHours := s.jwtConfig.RefreshExpireHour

	newAccessToken, err := utils.GenerateToken(user.ID, user.Username, accessHours)
	if err != nil {
		return nil, err
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(time.Duration(refreshHours) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Update("revoked_at", now).Error
	}); err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

// RevokeRefreshToken marks the token revoked. Unknown tokens are a no-op so
// logout never fails.
func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)
	now := time.Now()
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error
}

// PurgeExpiredTokens deletes refresh tokens past their expiry. Run
// periodically by the scheduler.
func (s *AuthService) PurgeExpiredTokens() (int64, error) {
	result := s.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
