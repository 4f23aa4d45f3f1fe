package reports

import (
	"sort"

	"github.com/Dosada05/club-billing/models"
)

// Доли меньше этого порога рисуются без встроенной подписи.
const labelSuppressThreshold = 5.0

// MembershipSliceName — имя синтетической доли для членских взносов.
const MembershipSliceName = "Membership fee"

// ServiceRevenueDistribution группирует итоги позиций по имени услуги.
// Учитываются только позиции завершённых сессий; членские взносы попадают
// в отдельную синтетическую долю. Нулевые доли отбрасываются.
func ServiceRevenueDistribution(snap Snapshot) []models.ServiceRevenueSlice {
	finished := make(map[int]bool, len(snap.Sessions))
	byName := make(map[string]int64)

	for _, s := range snap.Sessions {
		if s.Status == models.SessionStatusFinished {
			finished[s.ID] = true
		}
	}
	for _, s := range snap.Sessions {
		if !finished[s.ID] {
			continue
		}
		for _, item := range s.LineItems {
			byName[item.ServiceName] += item.Total
		}
	}

	var membershipTotal int64
	for _, p := range snap.MembershipPayments {
		membershipTotal += p.Amount
	}
	if membershipTotal > 0 {
		byName[MembershipSliceName] += membershipTotal
	}

	var grand int64
	for _, amount := range byName {
		grand += amount
	}

	slices := make([]models.ServiceRevenueSlice, 0, len(byName))
	for name, amount := range byName {
		if amount == 0 {
			continue
		}
		slice := models.ServiceRevenueSlice{ServiceName: name, Amount: amount}
		if grand > 0 {
			slice.Percent = float64(amount) / float64(grand) * 100
		}
		slice.LabelSuppressed = slice.Percent < labelSuppressThreshold
		slices = append(slices, slice)
	}

	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Amount != slices[j].Amount {
			return slices[i].Amount > slices[j].Amount
		}
		return slices[i].ServiceName < slices[j].ServiceName
	})
	return slices
}
