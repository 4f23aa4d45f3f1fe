package models

import "time"

// Club представляет клуб (арендатора). Запись минимальна: владельцем
// справочника клубов является внешняя админ-панель, ядру нужен только id.
type Club struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
