package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TravelMode selects how the travel fee is derived from the event location.
type TravelMode string

const (
	// TravelNone charges no travel fee and emits no travel line item.
	TravelNone TravelMode = "none"
	// TravelFlat charges a fixed fee for every quote.
	TravelFlat TravelMode = "flat"
	// TravelTiered charges a local or extended fee based on a locality
	// prefix allow-list matched against the event location.
	TravelTiered TravelMode = "tiered"
)

// TravelPolicy is the tagged travel-fee variant. Only the fields relevant
// to Mode are read.
type TravelPolicy struct {
	Mode          TravelMode
	FlatFee       decimal.Decimal
	LocalFee      decimal.Decimal
	FarFee        decimal.Decimal
	LocalPrefixes []string
}

// CatalogItem is one priceable flat-fee service.
type CatalogItem struct {
	Key   string
	Label string
	Price decimal.Decimal
}

// Options contains everything needed to build a PriceTable. Values come
// from configuration at process start.
type Options struct {
	HourlyRate     decimal.Decimal
	MinimumHours   int
	Addons         []CatalogItem
	PostProduction []CatalogItem
	Travel         TravelPolicy
}

// DefaultOptions returns the standard Cinematic Videographers price card.
func DefaultOptions() Options {
	return Options{
		HourlyRate:   decimal.NewFromInt(400),
		MinimumHours: 4,
		Addons: []CatalogItem{
			{Key: "drone", Label: "Drone", Price: decimal.NewFromInt(700)},
			{Key: "livestream", Label: "Livestream", Price: decimal.NewFromInt(700)},
		},
		PostProduction: []CatalogItem{
			{Key: "rush48", Label: "Rush 48 hr delivery", Price: decimal.NewFromInt(200)},
			{Key: "rush24", Label: "Rush 24 hr delivery", Price: decimal.NewFromInt(400)},
			{Key: "usb", Label: "Raw footage USB drive", Price: decimal.NewFromInt(100)},
		},
		Travel: TravelPolicy{Mode: TravelNone},
	}
}

// PriceTable is the single source of truth for monetary constants. It is
// built once at startup and never mutated, so it is safe to share across
// requests. The hourly rate is deliberately unexported: nothing outside
// this package can read it, which is how the rate stays out of labels,
// prompts, and responses.
type PriceTable struct {
	hourlyRate     decimal.Decimal
	minimumHours   int
	addons         []CatalogItem
	postProduction []CatalogItem
	travel         TravelPolicy
}

// NewTable validates opts and builds an immutable PriceTable.
func NewTable(opts Options) (*PriceTable, error) {
	if opts.HourlyRate.Sign() <= 0 {
		return nil, fmt.Errorf("pricing: hourly rate must be positive")
	}
	if opts.MinimumHours < 1 {
		return nil, fmt.Errorf("pricing: minimum hours must be at least 1")
	}
	if err := validateCatalog("addon", opts.Addons); err != nil {
		return nil, err
	}
	if err := validateCatalog("post-production", opts.PostProduction); err != nil {
		return nil, err
	}

	switch opts.Travel.Mode {
	case TravelNone, TravelFlat, TravelTiered:
	case "":
		opts.Travel.Mode = TravelNone
	default:
		return nil, fmt.Errorf("pricing: unknown travel mode %q", opts.Travel.Mode)
	}
	if opts.Travel.FlatFee.Sign() < 0 || opts.Travel.LocalFee.Sign() < 0 || opts.Travel.FarFee.Sign() < 0 {
		return nil, fmt.Errorf("pricing: travel fees must be non-negative")
	}

	return &PriceTable{
		hourlyRate:     opts.HourlyRate,
		minimumHours:   opts.MinimumHours,
		addons:         append([]CatalogItem(nil), opts.Addons...),
		postProduction: append([]CatalogItem(nil), opts.PostProduction...),
		travel:         opts.Travel,
	}, nil
}

func validateCatalog(kind string, items []CatalogItem) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Key))
		if key == "" {
			return fmt.Errorf("pricing: %s catalog entry with empty key", kind)
		}
		if key != it.Key {
			return fmt.Errorf("pricing: %s key %q must be lower-cased and trimmed", kind, it.Key)
		}
		if seen[key] {
			return fmt.Errorf("pricing: duplicate %s key %q", kind, key)
		}
		if it.Price.Sign() < 0 {
			return fmt.Errorf("pricing: %s %q has negative price", kind, key)
		}
		seen[key] = true
	}
	return nil
}

// MinimumHours returns the billing floor for coverage.
func (t *PriceTable) MinimumHours() int {
	return t.minimumHours
}

// RateForAddon returns the flat fee for an add-on key. The second return
// is false when the key is not in the catalog.
func (t *PriceTable) RateForAddon(key string) (decimal.Decimal, bool) {
	return catalogRate(t.addons, key)
}

// RateForPostProduction returns the flat fee for a post-production key.
func (t *PriceTable) RateForPostProduction(key string) (decimal.Decimal, bool) {
	return catalogRate(t.postProduction, key)
}

func catalogRate(items []CatalogItem, key string) (decimal.Decimal, bool) {
	for _, it := range items {
		if it.Key == key {
			return it.Price, true
		}
	}
	return decimal.Decimal{}, false
}

// TravelFee resolves the travel fee for a location. The second return is
// false when the policy emits no travel line at all.
func (t *PriceTable) TravelFee(location string) (decimal.Decimal, bool) {
	switch t.travel.Mode {
	case TravelFlat:
		return t.travel.FlatFee, true
	case TravelTiered:
		if t.isLocal(location) {
			return t.travel.LocalFee, true
		}
		return t.travel.FarFee, true
	default:
		return decimal.Decimal{}, false
	}
}

// isLocal classifies a location against the prefix allow-list. An empty
// location means the client gave no venue yet and is treated as local.
func (t *PriceTable) isLocal(location string) bool {
	location = strings.TrimSpace(location)
	if location == "" {
		return true
	}
	for _, prefix := range t.travel.LocalPrefixes {
		if prefix != "" && strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// PolicyInfo is the client-visible slice of the price table: everything a
// quote already exposes, and nothing else. The hourly rate has no field
// here, so consumers (such as the advisory prompt) cannot leak it.
type PolicyInfo struct {
	MinimumHours   int
	Addons         []CatalogItem
	PostProduction []CatalogItem
}

// PublicPolicy returns the disclosable pricing policy.
func (t *PriceTable) PublicPolicy() PolicyInfo {
	return PolicyInfo{
		MinimumHours:   t.minimumHours,
		Addons:         append([]CatalogItem(nil), t.addons...),
		PostProduction: append([]CatalogItem(nil), t.postProduction...),
	}
}
