// Package money реализует разбор и нормализацию денежных сумм.
//
// Цены передаются по сети строками и хранятся с фиксированной точностью
// в два знака после запятой. Отрицательные и нечисловые значения отклоняются.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice разбирает строку с ценой и нормализует её до двух знаков
// после запятой. Возвращает ошибку для нечисловых и отрицательных значений.
func ParsePrice(raw string) (decimal.Decimal, error) {
	const op = "money.ParsePrice"

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", op, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s: negative amount", op)
	}
	return d.Round(2), nil
}

// Format возвращает каноническое строковое представление суммы
// с двумя знаками после запятой.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
