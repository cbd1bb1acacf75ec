package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"violence-detection/cmd/config"
	"violence-detection/pkg/database"
	"violence-detection/pkg/models"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// GenerateJWT signs a token for an existing session. The session id travels
// as the standard "jti" claim.
func GenerateJWT(session *models.Session) (string, error) {
	claims := &Claims{
		Username: session.Username,
		Role:     session.Role,
		StandardClaims: jwt.StandardClaims{
			Id:        session.ID,
			ExpiresAt: session.ExpiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.SecretKey))
}

func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// StartSession records a new session row for user and returns its signed token.
func StartSession(user *models.User) (string, *models.Session, error) {
	session := &models.Session{
		ID:        uuid.New().String(),
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(config.SessionTTL).UTC(),
	}
	if err := database.DB.Create(session).Error; err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	token, err := GenerateJWT(session)
	if err != nil {
		database.DB.Delete(session)
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, session, nil
}

// Resolve validates a token and checks that its session is still live.
func Resolve(tokenString string) (*models.Session, error) {
	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := database.DB.Where("id = ?", claims.Id).First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		database.DB.Delete(&session)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// EndSession deletes the session behind tokenString. Unknown or invalid
// tokens are ignored.
func EndSession(tokenString string) error {
	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return nil
	}
	return database.DB.Where("id = ?", claims.Id).Delete(&models.Session{}).Error
}
