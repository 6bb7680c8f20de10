package enums

import "fmt"

// BannerPlacement selects the storefront slot a banner renders in.
type BannerPlacement string

const (
	BannerPlacementHero    BannerPlacement = "hero"
	BannerPlacementPromo   BannerPlacement = "promo"
	BannerPlacementLanding BannerPlacement = "landing"
)

var validBannerPlacements = []BannerPlacement{
	BannerPlacementHero,
	BannerPlacementPromo,
	BannerPlacementLanding,
}

// String implements fmt.Stringer.
func (p BannerPlacement) String() string {
	return string(p)
}

// IsValid reports whether the value is a known BannerPlacement.
func (p BannerPlacement) IsValid() bool {
	for _, candidate := range validBannerPlacements {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseBannerPlacement converts raw input into a BannerPlacement.
func ParseBannerPlacement(value string) (BannerPlacement, error) {
	for _, candidate := range validBannerPlacements {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid banner placement %q", value)
}
