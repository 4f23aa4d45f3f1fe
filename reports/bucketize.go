package reports

import (
	"fmt"
	"time"

	"github.com/Dosada05/club-billing/models"
)

// Granularity задаёт ширину окна агрегации.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("unknown granularity: %q", s)
}

// DefaultWindowSize возвращает референсные размеры окон: 7 дней,
// 4 недели, 6 месяцев.
func DefaultWindowSize(g Granularity) int {
	switch g {
	case GranularityWeek:
		return 4
	case GranularityMonth:
		return 6
	default:
		return 7
	}
}

// Snapshot — срез данных клуба, по которому строится отчёт.
// Агрегация чистая: никуда не ходит, ничего не мутирует.
type Snapshot struct {
	Sessions           []models.Session
	MembershipPayments []models.MembershipPayment
	Expenses           []models.Expense
}

// Bucketize строит windowSize упорядоченных окон, заканчивающихся на now
// (последнее окно содержит now). Границы окна: включительное начало,
// исключительный конец. День — локальные календарные сутки, неделя —
// 7 дней с выравниванием на воскресенье, месяц — календарный месяц.
// Пустой снимок — не ошибка: все агрегаты нулевые.
func Bucketize(snap Snapshot, g Granularity, windowSize int, now time.Time, loc *time.Location) []models.RevenueBucket {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize(g)
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	buckets := make([]models.RevenueBucket, windowSize)
	for i := 0; i < windowSize; i++ {
		// i = 0 — самое старое окно, последнее содержит now.
		offset := windowSize - 1 - i
		start, end, label := bucketRange(g, now, offset, loc)
		buckets[i] = models.RevenueBucket{Label: label, Start: start, End: end}
	}

	for _, s := range snap.Sessions {
		if idx := bucketIndex(buckets, s.CheckInTime.In(loc)); idx >= 0 {
			buckets[idx].SessionCount++
		}
		if s.Status != models.SessionStatusFinished || s.CheckOutTime == nil {
			continue
		}
		if idx := bucketIndex(buckets, s.CheckOutTime.In(loc)); idx >= 0 {
			buckets[idx].SessionRevenue += s.Total
		}
	}
	for _, p := range snap.MembershipPayments {
		if idx := bucketIndex(buckets, p.PaymentDate.In(loc)); idx >= 0 {
			buckets[idx].MembershipRevenue += p.Amount
		}
	}
	for _, e := range snap.Expenses {
		if idx := bucketIndex(buckets, e.Date.In(loc)); idx >= 0 {
			buckets[idx].Expense += e.Amount
		}
	}

	for i := range buckets {
		buckets[i].Revenue = buckets[i].SessionRevenue + buckets[i].MembershipRevenue
		buckets[i].Profit = buckets[i].Revenue - buckets[i].Expense
	}
	return buckets
}

func bucketIndex(buckets []models.RevenueBucket, t time.Time) int {
	for i := range buckets {
		if !t.Before(buckets[i].Start) && t.Before(buckets[i].End) {
			return i
		}
	}
	return -1
}

// bucketRange возвращает границы окна, отстоящего от текущего на offset
// шагов назад.
func bucketRange(g Granularity, now time.Time, offset int, loc *time.Location) (start, end time.Time, label string) {
	switch g {
	case GranularityWeek:
		// Начало текущей недели: ближайшее прошедшее воскресенье.
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		weekStart := day.AddDate(0, 0, -int(day.Weekday()))
		start = weekStart.AddDate(0, 0, -7*offset)
		end = start.AddDate(0, 0, 7)
		label = fmt.Sprintf("%02d/%02d", start.Day(), int(start.Month()))
	case GranularityMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		start = monthStart.AddDate(0, -offset, 0)
		end = start.AddDate(0, 1, 0)
		label = start.Format("01/2006")
	default: // день
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		start = dayStart.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 1)
		label = start.Format("02/01")
	}
	return start, end, label
}
