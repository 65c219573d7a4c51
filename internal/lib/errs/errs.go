// Package errs определяет классификацию доменных ошибок сервиса.
//
// Каждая операция бизнес-логики при неуспехе возвращает ошибку ровно одного
// вида: валидация входных данных, конфликт состояния, отсутствие ресурса,
// запрет доступа, ошибка аутентификации или сбой хранилища. HTTP-слой
// сопоставляет вид ошибки коду ответа, не разбирая текст сообщения.
package errs

import (
	"errors"
	"fmt"
)

// Kind — вид доменной ошибки.
type Kind int

const (
	// KindValidation — некорректные или выходящие за допустимые границы входные данные.
	KindValidation Kind = iota + 1
	// KindConflict — запрос несовместим с текущим состоянием данных.
	KindConflict
	// KindNotFound — запрошенный ресурс отсутствует или не принадлежит пользователю.
	KindNotFound
	// KindForbidden — у пользователя нет прав на операцию.
	KindForbidden
	// KindUnauthorized — аутентификация не пройдена.
	KindUnauthorized
	// KindStorage — сбой слоя хранения; транзакция операции откатана.
	KindStorage
)

// Error — доменная ошибка с видом, сообщением и необязательной причиной.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error возвращает текст ошибки. Для ошибок хранилища к сообщению
// добавляется текст исходной причины.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap возвращает исходную причину ошибки.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation создает ошибку валидации входных данных.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Validationf создает ошибку валидации с форматированием сообщения.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict создает ошибку конфликта состояния.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Conflictf создает ошибку конфликта с форматированием сообщения.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NotFound создает ошибку отсутствия ресурса.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// NotFoundf создает ошибку отсутствия ресурса с форматированием сообщения.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden создает ошибку запрета доступа.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// Unauthorized создает ошибку аутентификации.
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Storage оборачивает ошибку слоя хранения, сохраняя имя операции.
func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Msg: op, Err: err}
}

// KindOf возвращает вид ошибки. Неклассифицированные ошибки
// считаются сбоем хранилища.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// IsKind сообщает, относится ли ошибка к заданному виду.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
