// Package models содержит доменные модели сервиса: пользователей,
// тарифные планы и записи истории подписок, а также структуры
// входящих запросов. Типы используются в бизнес‑логике,
// при работе с хранилищем и при сериализации ответов.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int       `json:"id"`         // Уникальный идентификатор пользователя
	Username     string    `json:"username"`   // Имя пользователя (уникальное)
	Email        string    `json:"email"`      // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`          // Хэш пароля пользователя
	IsAdmin      bool      `json:"is_admin"`   // Признак администратора
	CreatedAt    time.Time `json:"created_at"` // Дата создания учётной записи
	UpdatedAt    time.Time `json:"-"`
}

// RegisterRequest — тело запроса на регистрацию пользователя.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest — тело запроса на вход.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest — тело запроса на обновление access-токена.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair — пара токенов, выдаваемая при входе: короткоживущий
// access-токен и долгоживущий refresh-токен.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
