package models

import "fmt"

// ServiceStatus представляет статус услуги в каталоге, соответствующий ENUM в БД.
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusInactive ServiceStatus = "inactive"
)

func ParseServiceStatus(s string) (ServiceStatus, error) {
	switch ServiceStatus(s) {
	case ServiceStatusActive, ServiceStatusInactive:
		return ServiceStatus(s), nil
	}
	return "", fmt.Errorf("unknown service status: %q", s)
}

// Service представляет позицию каталога платных услуг (корт, напитки,
// аренда инвентаря). Неактивные услуги остаются видимыми в исторических
// позициях счёта, но не могут добавляться к новым сессиям без оверрайда.
type Service struct {
	ID        int           `json:"id" db:"id"`
	ClubID    int           `json:"club_id" db:"club_id"`
	Name      string        `json:"name" db:"name"`
	UnitPrice int64         `json:"unit_price" db:"unit_price"`
	UnitLabel string        `json:"unit_label" db:"unit_label"`
	Status    ServiceStatus `json:"status" db:"status"`

	// TimeBased помечает почасовые/кортовые услуги: для игроков с активным
	// членством их добавление требует явного подтверждения оператора.
	TimeBased bool `json:"time_based" db:"time_based"`
}
