package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Dosada05/club-billing/repositories"
)

// mapStoreError переводит транспортные сбои хранилища в сервисную
// ErrStoreUnavailable, остальное оборачивает с контекстом.
func mapStoreError(err error, msg string) error {
	if errors.Is(err, repositories.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Телефон: опциональный "+", затем 8-15 цифр, пробелы и дефисы
// допускаются и отбрасываются при нормализации.
var phoneRegexp = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// normalizePhone валидирует и нормализует номер. Пустой указатель —
// валидное "телефон не указан".
func normalizePhone(phone *string) (*string, error) {
	if phone == nil {
		return nil, nil
	}
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(*phone))
	if cleaned == "" {
		return nil, nil
	}
	if !phoneRegexp.MatchString(cleaned) {
		return nil, ErrInvalidPhoneFormat
	}
	return &cleaned, nil
}
