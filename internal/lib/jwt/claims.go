// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Сервис выпускает две разновидности токенов: короткоживущий access-токен
// для авторизации запросов и долгоживущий refresh-токен для обновления пары.
// Разновидность закреплена в claims и проверяется при разборе.
package jwt

import "github.com/golang-jwt/jwt/v5"

// TokenType — разновидность выпускаемого токена.
type TokenType string

const (
	// TokenTypeAccess — токен доступа для авторизации запросов.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh — токен обновления пары токенов.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims описывает пользовательские данные, хранящиеся в JWT.
type Claims struct {
	UserID               int       `json:"user_id"`    // Идентификатор пользователя
	Username             string    `json:"username"`   // Имя пользователя
	IsAdmin              bool      `json:"is_admin"`   // Признак администратора
	TokenType            TokenType `json:"token_type"` // Разновидность токена
	jwt.RegisteredClaims           // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}
