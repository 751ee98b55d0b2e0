package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateTokens(db *gorm.DB, userID uuid.UUID) (access, refresh string, expiresIn int64, err error)
	RefreshTokens(db *gorm.DB, refreshToken string) (access, refresh string, expiresIn int64, err error)
	RevokeToken(db *gorm.DB, refreshToken string) error
}

type AuthServiceImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(secret string, accessTTL, refreshTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("lookup user", err)
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AuthServiceImpl) GenerateTokens(db *gorm.DB, userID uuid.UUID) (string, string, int64, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.accessTTL).Unix(),
		"iss":     "taskflow-backend",
		"aud":     "taskflow-users",
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}

	jti, err := uuid.NewV4()
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate jti: %w", err)
	}

	refreshExpiry := now.Add(s.refreshTTL)
	refreshClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    "refresh",
		"jti":     jti.String(),
		"iat":     now.Unix(),
		"exp":     refreshExpiry.Unix(),
		"iss":     "taskflow-backend",
		"aud":     "taskflow-users",
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	record := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		JTI:          jti,
		RefreshToken: refresh,
		ExpiresAt:    refreshExpiry,
	}
	if err := db.Create(&record).Error; err != nil {
		return "", "", 0, storeErr("create token record", err)
	}

	return access, refresh, int64(s.accessTTL.Seconds()), nil
}

// RefreshTokens rotates a refresh token: the presented token must validate,
// carry type "refresh", and match a live token record; the record is deleted
// so the old token cannot be replayed.
func (s *AuthServiceImpl) RefreshTokens(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	claims, err := s.parseClaims(refreshToken)
	if err != nil {
		return "", "", 0, err
	}

	if t, _ := claims["type"].(string); t != "refresh" {
		return "", "", 0, fmt.Errorf("invalid token type")
	}
	jti, userID, err := claimIDs(claims)
	if err != nil {
		return "", "", 0, err
	}

	var record models.Token
	err = db.Where("jti = ? AND user_id = ? AND expires_at > ?", jti, userID, time.Now()).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", 0, fmt.Errorf("refresh token not found or expired")
		}
		return "", "", 0, storeErr("lookup token record", err)
	}

	access, refresh, expiresIn, err := s.GenerateTokens(db, userID)
	if err != nil {
		return "", "", 0, err
	}
	if err := db.Delete(&record).Error; err != nil {
		return "", "", 0, storeErr("delete token record", err)
	}
	return access, refresh, expiresIn, nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	claims, err := s.parseClaims(refreshToken)
	if err != nil {
		return err
	}
	jti, _, err := claimIDs(claims)
	if err != nil {
		return err
	}
	if err := db.Where("jti = ?", jti).Delete(&models.Token{}).Error; err != nil {
		return storeErr("revoke token", err)
	}
	return nil
}

func (s *AuthServiceImpl) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func claimIDs(claims jwt.MapClaims) (jti, userID uuid.UUID, err error) {
	jtiStr, ok := claims["jti"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("missing jti in token")
	}
	jti, err = uuid.FromString(jtiStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid jti format: %w", err)
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("missing user_id in token")
	}
	userID, err = uuid.FromString(userIDStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user_id format: %w", err)
	}
	return jti, userID, nil
}
