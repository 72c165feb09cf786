package models

import "time"

// LoyaltyTier is a rank derived from lifetime points earned. It is never set
// directly; TierFor recomputes it after every balance mutation.
type LoyaltyTier string

const (
	TierBronze LoyaltyTier = "bronze"
	TierSilver LoyaltyTier = "silver"
	TierGold   LoyaltyTier = "gold"
)

// Tier thresholds on totalEarned.
const (
	SilverThreshold = 500
	GoldThreshold   = 1000
)

// TierFor derives the tier from lifetime earned points. Monotonic
// non-decreasing as long as totalEarned only grows, which it does.
func TierFor(totalEarned int64) LoyaltyTier {
	switch {
	case totalEarned >= GoldThreshold:
		return TierGold
	case totalEarned >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// LoyaltyEntryType classifies a ledger entry.
type LoyaltyEntryType string

const (
	LoyaltyEarned   LoyaltyEntryType = "earned"
	LoyaltyRedeemed LoyaltyEntryType = "redeemed"
	LoyaltyBonus    LoyaltyEntryType = "bonus"
	LoyaltyReferral LoyaltyEntryType = "referral"
)

// LoyaltyTransaction is one append-only history entry. Points is signed:
// negative for redemptions.
type LoyaltyTransaction struct {
	Type        LoyaltyEntryType `bson:"type" json:"type"`
	Points      int64            `bson:"points" json:"points"`
	Description string           `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
}

// LoyaltyAccount is a per-customer points ledger. Invariant:
// points = totalEarned - totalRedeemed at all times.
type LoyaltyAccount struct {
	CustomerID    string               `bson:"customerId" json:"customerId"`
	Points        int64                `bson:"points" json:"points"`
	TotalEarned   int64                `bson:"totalEarned" json:"totalEarned"`
	TotalRedeemed int64                `bson:"totalRedeemed" json:"totalRedeemed"`
	Tier          LoyaltyTier          `bson:"tier" json:"tier"`
	History       []LoyaltyTransaction `bson:"history" json:"history,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// RedeemRate: every 100 points redeem for $5.00.
const (
	RedeemBlock      = 100
	RedeemBlockValue = 5.0
)

// RedeemValue converts a points amount into its dollar value.
func RedeemValue(points int64) float64 {
	return float64(points) / RedeemBlock * RedeemBlockValue
}
