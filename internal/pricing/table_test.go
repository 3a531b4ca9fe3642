package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewTable_ValidatesInputs(t *testing.T) {
	base := DefaultOptions()

	bad := base
	bad.HourlyRate = decimal.Zero
	if _, err := NewTable(bad); err == nil {
		t.Fatalf("expected error for zero hourly rate")
	}

	bad = base
	bad.MinimumHours = 0
	if _, err := NewTable(bad); err == nil {
		t.Fatalf("expected error for zero minimum hours")
	}

	bad = base
	bad.Addons = []CatalogItem{{Key: "Drone", Label: "Drone", Price: decimal.NewFromInt(700)}}
	if _, err := NewTable(bad); err == nil {
		t.Fatalf("expected error for non-canonical catalog key")
	}

	bad = base
	bad.Addons = []CatalogItem{
		{Key: "drone", Label: "Drone", Price: decimal.NewFromInt(700)},
		{Key: "drone", Label: "Drone again", Price: decimal.NewFromInt(900)},
	}
	if _, err := NewTable(bad); err == nil {
		t.Fatalf("expected error for duplicate catalog key")
	}

	bad = base
	bad.Travel = TravelPolicy{Mode: "teleport"}
	if _, err := NewTable(bad); err == nil {
		t.Fatalf("expected error for unknown travel mode")
	}
}

func TestNewTable_ZeroPriceIsAnExplicitEntryNotAFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.Addons = append(opts.Addons, CatalogItem{Key: "consult", Label: "Planning consult", Price: decimal.Zero})

	table, err := NewTable(opts)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	price, ok := table.RateForAddon("consult")
	if !ok || !price.IsZero() {
		t.Fatalf("explicit zero-price entry should resolve: %v %v", price, ok)
	}

	// Absent keys are NotFound, never free.
	if _, ok := table.RateForAddon("fogmachine"); ok {
		t.Fatalf("absent key must not resolve to a price")
	}
}

func TestRateLookups(t *testing.T) {
	table, err := NewTable(DefaultOptions())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	drone, ok := table.RateForAddon("drone")
	if !ok || !drone.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("drone rate = %v %v", drone, ok)
	}

	rush, ok := table.RateForPostProduction("rush24")
	if !ok || !rush.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("rush24 rate = %v %v", rush, ok)
	}

	if _, ok := table.RateForAddon("rush24"); ok {
		t.Fatalf("post-production key must not resolve in the addon namespace")
	}
}

func TestTravelFeeVariants(t *testing.T) {
	none, err := NewTable(DefaultOptions())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if _, ok := none.TravelFee("30301"); ok {
		t.Fatalf("travel mode none must emit no fee")
	}

	flatOpts := DefaultOptions()
	flatOpts.Travel = TravelPolicy{Mode: TravelFlat, FlatFee: decimal.NewFromInt(250)}
	flat, err := NewTable(flatOpts)
	if err != nil {
		t.Fatalf("NewTable flat: %v", err)
	}
	fee, ok := flat.TravelFee("")
	if !ok || !fee.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("flat fee = %v %v", fee, ok)
	}

	tieredOpts := DefaultOptions()
	tieredOpts.Travel = TravelPolicy{
		Mode:          TravelTiered,
		LocalFee:      decimal.Zero,
		FarFee:        decimal.NewFromInt(400),
		LocalPrefixes: []string{"100", "101"},
	}
	tiered, err := NewTable(tieredOpts)
	if err != nil {
		t.Fatalf("NewTable tiered: %v", err)
	}

	local, _ := tiered.TravelFee("10115")
	if !local.IsZero() {
		t.Fatalf("10115 should be local, fee = %v", local)
	}
	far, _ := tiered.TravelFee("30301")
	if !far.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("30301 should be far, fee = %v", far)
	}
	empty, _ := tiered.TravelFee("   ")
	if !empty.IsZero() {
		t.Fatalf("blank location should be local, fee = %v", empty)
	}
}

func TestPublicPolicyOmitsTheHourlyRate(t *testing.T) {
	table, err := NewTable(DefaultOptions())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	policy := table.PublicPolicy()
	if policy.MinimumHours != 4 {
		t.Fatalf("minimum hours = %d", policy.MinimumHours)
	}
	if len(policy.Addons) != 2 || len(policy.PostProduction) != 3 {
		t.Fatalf("unexpected catalogs: %+v", policy)
	}
	// PolicyInfo has no rate field; this test documents that the only way
	// to price coverage is through Calculate.
}
