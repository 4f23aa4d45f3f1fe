package billing

import (
	"errors"

	"github.com/Dosada05/club-billing/models"
)

var (
	ErrQuantityNotPositive = errors.New("quantity must be a positive integer")
	ErrNegativeUnitPrice   = errors.New("unit price cannot be negative")
)

// LineItemTotal считает сумму позиции: quantity × unitPrice.
// Чистая функция, без побочных эффектов.
func LineItemTotal(quantity int, unitPrice int64) (int64, error) {
	if quantity <= 0 {
		return 0, ErrQuantityNotPositive
	}
	if unitPrice < 0 {
		return 0, ErrNegativeUnitPrice
	}
	return int64(quantity) * unitPrice, nil
}

// SessionRunningTotal суммирует сохранённые итоги позиций. Именно
// сохранённые: цена зафиксирована при добавлении и из каталога
// не перечитывается. Пустой набор даёт 0.
func SessionRunningTotal(items []models.SessionLineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Total
	}
	return total
}
