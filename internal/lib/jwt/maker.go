package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateAccessToken создает access-токен с данными пользователя.
	GenerateAccessToken(userID int, username string, isAdmin bool) (string, error)
	// GenerateRefreshToken создает refresh-токен с данными пользователя.
	GenerateRefreshToken(userID int, username string, isAdmin bool) (string, error)
	// ParseToken проверяет подпись и срок действия токена и возвращает его claims.
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и раздельных сроков жизни access- и refresh-токенов.
type MakerImpl struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL токенов.
func NewMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateAccessToken создает подписанный access-токен со временем жизни accessTTL.
func (j *MakerImpl) GenerateAccessToken(userID int, username string, isAdmin bool) (string, error) {
	return j.generate(userID, username, isAdmin, TokenTypeAccess, j.accessTTL)
}

// GenerateRefreshToken создает подписанный refresh-токен со временем жизни refreshTTL.
// Каждому refresh-токену присваивается уникальный идентификатор (jti).
func (j *MakerImpl) GenerateRefreshToken(userID int, username string, isAdmin bool) (string, error) {
	return j.generate(userID, username, isAdmin, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(userID int, username string, isAdmin bool, tokenType TokenType, ttl time.Duration) (string, error) {
	const op = "jwt.Generate"
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		IsAdmin:   isAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает Claims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
