package loyaltyRepo

import (
	"testing"
	"time"

	"slotify/models"

	"github.com/stretchr/testify/assert"
)

// tail builds the slice the driver hands back for a $slice projection: the
// given points values in chronological order.
func tail(points ...int64) []models.LoyaltyTransaction {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.LoyaltyTransaction, len(points))
	for i, p := range points {
		out[i] = models.LoyaltyTransaction{
			Type:      models.LoyaltyEarned,
			Points:    p,
			CreatedAt: base.Add(time.Duration(p) * time.Hour),
		}
	}
	return out
}

func pointsOf(history []models.LoyaltyTransaction) []int64 {
	out := make([]int64, len(history))
	for i, txn := range history {
		out[i] = txn.Points
	}
	return out
}

func TestPageWindowMiddlePage(t *testing.T) {
	// Five entries total, limit 2, page 2: the projection returns the two
	// middle entries in chronological order.
	got := pageWindow(tail(2, 3), 5, 2)
	assert.Equal(t, []int64{3, 2}, pointsOf(got))
}

func TestPageWindowPartialLastPage(t *testing.T) {
	// Five entries, limit 2, page 3: only one entry remains, but the clamped
	// slice start makes the projection return the two oldest entries.
	got := pageWindow(tail(1, 2), 5, 4)
	assert.Equal(t, []int64{1}, pointsOf(got))
}

func TestPageWindowPastEnd(t *testing.T) {
	// Five entries, limit 2, page 4: nothing remains even though the clamped
	// projection still returns the oldest entries.
	got := pageWindow(tail(1, 2), 5, 6)
	assert.Empty(t, got)
}

func TestPageWindowEmptyHistory(t *testing.T) {
	got := pageWindow(nil, 0, 0)
	assert.Empty(t, got)
}
