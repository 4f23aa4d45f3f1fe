package models

import (
	"fmt"
	"time"
)

// SessionStatus представляет статусы сессии, соответствующие ENUM в БД.
type SessionStatus string

const (
	SessionStatusPlaying  SessionStatus = "playing"
	SessionStatusFinished SessionStatus = "finished"
)

func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case SessionStatusPlaying, SessionStatusFinished:
		return SessionStatus(s), nil
	}
	return "", fmt.Errorf("unknown session status: %q", s)
}

// Session представляет один визит игрока от check-in до check-out.
// Поле Total авторитетно только после чек-аута; пока сессия playing,
// текущую сумму считают по позициям (RunningTotal — read-time проекция).
type Session struct {
	ID           int           `json:"id" db:"id"`
	ClubID       int           `json:"club_id" db:"club_id"`
	PlayerID     int           `json:"player_id" db:"player_id"`
	CheckInTime  time.Time     `json:"check_in_time" db:"check_in_time"`
	CheckOutTime *time.Time    `json:"check_out_time,omitempty" db:"check_out_time"`
	Status       SessionStatus `json:"status" db:"status"`
	Total        int64         `json:"total" db:"total"`

	// Связанные сущности (не мапятся напрямую).
	Player    *Player           `json:"player,omitempty" db:"-"`
	LineItems []SessionLineItem `json:"line_items,omitempty" db:"-"`

	// Сумма незакрытых позиций на момент чтения.
	RunningTotal int64 `json:"running_total" db:"-"`
}

// SessionLineItem представляет одну позицию счёта: количество услуги по
// цене, зафиксированной в момент добавления. Последующие изменения цены
// в каталоге историю не трогают.
type SessionLineItem struct {
	ID        int   `json:"id" db:"id"`
	ClubID    int   `json:"club_id" db:"club_id"`
	SessionID int   `json:"session_id" db:"session_id"`
	ServiceID int   `json:"service_id" db:"service_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
	UnitPrice int64 `json:"unit_price" db:"unit_price"`
	Total     int64 `json:"total" db:"total"`

	// Снимок имени услуги на момент продажи, для отчётов и истории.
	ServiceName string `json:"service_name" db:"service_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
