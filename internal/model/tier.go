package model

// Tier names one of the three independent file partitions. TierAll is a
// selector meaning "cascade across every tier", never a storage location.
type Tier string

const (
	TierPrimary Tier = "primary"
	TierCloud   Tier = "cloud"
	TierArchive Tier = "archive"
	TierAll     Tier = "all"
)

// Tiers lists the storage tiers in cascade priority order.
func Tiers() []Tier {
	return []Tier{TierPrimary, TierCloud, TierArchive}
}

// ParseTier maps a raw string to a known tier selector. Unknown values fall
// back to primary, matching the lenient behavior expected from chat input.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPrimary, TierCloud, TierArchive, TierAll:
		return Tier(s)
	default:
		return TierPrimary
	}
}

// IsStorage reports whether the tier names a concrete partition.
func (t Tier) IsStorage() bool {
	return t == TierPrimary || t == TierCloud || t == TierArchive
}

// TableName returns the backing table for a storage tier.
func (t Tier) TableName() string {
	return "files_" + string(t)
}
