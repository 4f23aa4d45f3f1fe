package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/club-billing/models"
)

func TestServiceRevenueDistributionGroupsByName(t *testing.T) {
	snap := Snapshot{
		Sessions: []models.Session{
			{
				ID:     1,
				Status: models.SessionStatusFinished,
				LineItems: []models.SessionLineItem{
					{ServiceName: "Court time", Total: 6000},
					{ServiceName: "Water", Total: 300},
				},
			},
			{
				ID:     2,
				Status: models.SessionStatusFinished,
				LineItems: []models.SessionLineItem{
					{ServiceName: "Court time", Total: 3000},
				},
			},
		},
	}

	slices := ServiceRevenueDistribution(snap)
	require.Len(t, slices, 2)

	// Сортировка по убыванию суммы.
	assert.Equal(t, "Court time", slices[0].ServiceName)
	assert.Equal(t, int64(9000), slices[0].Amount)
	assert.Equal(t, "Water", slices[1].ServiceName)
	assert.Equal(t, int64(300), slices[1].Amount)

	assert.InDelta(t, 96.77, slices[0].Percent, 0.01)
	assert.InDelta(t, 3.23, slices[1].Percent, 0.01)
}

func TestServiceRevenueDistributionSkipsOpenSessions(t *testing.T) {
	snap := Snapshot{
		Sessions: []models.Session{
			{
				ID:     1,
				Status: models.SessionStatusPlaying,
				LineItems: []models.SessionLineItem{
					{ServiceName: "Court time", Total: 6000},
				},
			},
		},
	}
	assert.Empty(t, ServiceRevenueDistribution(snap))
}

func TestServiceRevenueDistributionMembershipSlice(t *testing.T) {
	snap := Snapshot{
		Sessions: []models.Session{
			{
				ID:     1,
				Status: models.SessionStatusFinished,
				LineItems: []models.SessionLineItem{
					{ServiceName: "Court time", Total: 5000},
				},
			},
		},
		MembershipPayments: []models.MembershipPayment{
			{Amount: 10000, PaymentDate: time.Now()},
			{Amount: 5000, PaymentDate: time.Now()},
		},
	}

	slices := ServiceRevenueDistribution(snap)
	require.Len(t, slices, 2)
	assert.Equal(t, MembershipSliceName, slices[0].ServiceName)
	assert.Equal(t, int64(15000), slices[0].Amount)
}

func TestServiceRevenueDistributionLabelSuppression(t *testing.T) {
	snap := Snapshot{
		Sessions: []models.Session{
			{
				ID:     1,
				Status: models.SessionStatusFinished,
				LineItems: []models.SessionLineItem{
					{ServiceName: "Court time", Total: 9700},
					{ServiceName: "Sticker", Total: 300},
				},
			},
		},
	}

	slices := ServiceRevenueDistribution(snap)
	require.Len(t, slices, 2)
	assert.False(t, slices[0].LabelSuppressed)
	// 3% < порога, подпись подавлена, сумма не изменилась.
	assert.True(t, slices[1].LabelSuppressed)
	assert.Equal(t, int64(300), slices[1].Amount)
}

func TestServiceRevenueDistributionEmpty(t *testing.T) {
	assert.Empty(t, ServiceRevenueDistribution(Snapshot{}))
}
