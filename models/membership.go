package models

import "time"

// MembershipPayment представляет оплату членства. Создание платежа всегда
// продлевает кэш Player.MembershipEndDate до CoverageEnd (last-writer-wins),
// но сама история платежей сохраняется полностью.
type MembershipPayment struct {
	ID            int       `json:"id" db:"id"`
	ClubID        int       `json:"club_id" db:"club_id"`
	PlayerID      int       `json:"player_id" db:"player_id"`
	Amount        int64     `json:"amount" db:"amount"`
	PaymentDate   time.Time `json:"payment_date" db:"payment_date"`
	CoverageStart time.Time `json:"coverage_start" db:"coverage_start"`
	CoverageEnd   time.Time `json:"coverage_end" db:"coverage_end"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
