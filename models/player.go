package models

import (
	"fmt"
	"time"
)

// SkillTier представляет уровень игрока, соответствующий ENUM в БД.
type SkillTier string

const (
	TierBeginner     SkillTier = "beginner"
	TierIntermediate SkillTier = "intermediate"
	TierAdvanced     SkillTier = "advanced"
	TierPro          SkillTier = "pro"
)

// ParseSkillTier валидирует строку из внешнего источника. Нестрогое
// сопоставление по подстрокам здесь намеренно запрещено.
func ParseSkillTier(s string) (SkillTier, error) {
	switch SkillTier(s) {
	case TierBeginner, TierIntermediate, TierAdvanced, TierPro:
		return SkillTier(s), nil
	}
	return "", fmt.Errorf("unknown skill tier: %q", s)
}

// Player представляет игрока клуба. Игроки никогда не удаляются:
// история сессий и платежей должна переживать профиль.
type Player struct {
	ID       int       `json:"id" db:"id"`
	ClubID   int       `json:"club_id" db:"club_id"`
	FullName string    `json:"full_name" db:"full_name"`
	Phone    *string   `json:"phone,omitempty" db:"phone"`
	Tier     SkillTier `json:"tier" db:"tier"`

	// Кэш по последнему MembershipPayment; источник истины — история платежей.
	MembershipEndDate *time.Time `json:"membership_end_date,omitempty" db:"membership_end_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}

// HasActiveMembership проверяет, покрывает ли членство момент at.
func (p *Player) HasActiveMembership(at time.Time) bool {
	return p.MembershipEndDate != nil && !p.MembershipEndDate.Before(at)
}
