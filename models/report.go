package models

import "time"

// RevenueBucket — одно временное окно отчёта (день/неделя/месяц).
// Revenue = SessionRevenue + MembershipRevenue, Profit = Revenue - Expense.
type RevenueBucket struct {
	Label             string    `json:"label"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	SessionRevenue    int64     `json:"session_revenue"`
	MembershipRevenue int64     `json:"membership_revenue"`
	Revenue           int64     `json:"revenue"`
	Expense           int64     `json:"expense"`
	Profit            int64     `json:"profit"`
	SessionCount      int       `json:"session_count"`
}

// ServiceRevenueSlice — доля услуги в выручке за период.
type ServiceRevenueSlice struct {
	ServiceName string  `json:"service_name"`
	Amount      int64   `json:"amount"`
	Percent     float64 `json:"percent"`

	// Доли меньше порога отображения рисуются без подписи,
	// сами суммы при этом не меняются.
	LabelSuppressed bool `json:"label_suppressed"`
}

type DashboardStats struct {
	PlayersTotal      int   `json:"players_total"`
	OpenSessions      int   `json:"open_sessions"`
	FinishedToday     int   `json:"finished_today"`
	RevenueToday      int64 `json:"revenue_today"`
	ActiveMemberships int   `json:"active_memberships"`
}
