package pricing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// QuoteRequest is the engine's fully validated input. Build it through
// NormalizeRequest; the engine assumes every selection key exists in the
// table and fails fatally otherwise.
type QuoteRequest struct {
	Hours          float64
	Addons         map[string]bool
	PostProduction map[string]bool
	Location       string
	EventDate      string // informational only, never priced
}

// LineItem is one priced row of a quote.
type LineItem struct {
	Label  string
	Amount decimal.Decimal
	Note   string
}

// Quote is an itemized price breakdown. Total is always the sum of the
// line-item amounts; there is no other path into it.
type Quote struct {
	LineItems   []LineItem
	Total       decimal.Decimal
	BilledHours float64
}

// Calculate maps a validated request and a price table to an itemized
// quote. It is pure: no clock, no randomness, no shared state, so the same
// inputs always produce the same quote.
func Calculate(req QuoteRequest, table *PriceTable) (Quote, error) {
	if req.Hours <= 0 {
		return Quote{}, fmt.Errorf("pricing: hours %v reached the engine unvalidated", req.Hours)
	}

	// The minimum is a floor, not a rounding rule: fractional hours above
	// it are preserved exactly.
	billed := req.Hours
	if billed < float64(table.minimumHours) {
		billed = float64(table.minimumHours)
	}

	items := []LineItem{{
		Label:  coverageLabel(billed),
		Amount: table.hourlyRate.Mul(decimal.NewFromFloat(billed)),
	}}

	addonItems, err := selectionItems("addon", table.addons, req.Addons)
	if err != nil {
		return Quote{}, err
	}
	items = append(items, addonItems...)

	postItems, err := selectionItems("post-production", table.postProduction, req.PostProduction)
	if err != nil {
		return Quote{}, err
	}
	items = append(items, postItems...)

	if fee, ok := table.TravelFee(req.Location); ok {
		items = append(items, LineItem{Label: "Travel", Amount: fee, Note: travelNote(table, req.Location)})
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}

	return Quote{LineItems: items, Total: total, BilledHours: billed}, nil
}

// selectionItems emits one line item per selected key, in the catalog's
// declared order regardless of request order.
func selectionItems(kind string, catalog []CatalogItem, selected map[string]bool) ([]LineItem, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	items := make([]LineItem, 0, len(selected))
	matched := 0
	for _, it := range catalog {
		if selected[it.Key] {
			items = append(items, LineItem{Label: it.Label, Amount: it.Price})
			matched++
		}
	}

	if matched != len(selected) {
		missing := make([]string, 0, len(selected)-matched)
		for key := range selected {
			if _, ok := catalogRate(catalog, key); !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s keys %v", ErrTableMismatch, kind, missing)
	}

	return items, nil
}

// coverageLabel names the coverage line from billed hours alone. The
// hourly rate must never appear here.
func coverageLabel(billedHours float64) string {
	return "Coverage (" + strconv.FormatFloat(billedHours, 'f', -1, 64) + " hrs)"
}

func travelNote(table *PriceTable, location string) string {
	if table.travel.Mode != TravelTiered {
		return ""
	}
	if table.isLocal(location) {
		return "local"
	}
	return "extended"
}
