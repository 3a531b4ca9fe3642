package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// WireRequest is the loosely typed shape clients send. Hours may be a JSON
// number or a string; selections may be an array of keys or a map of
// key→bool. This is the only place that ambiguity is resolved; the engine
// never sees raw input.
type WireRequest struct {
	Hours          json.RawMessage `json:"hours"`
	Addons         json.RawMessage `json:"addons"`
	PostProduction json.RawMessage `json:"postProduction"`
	Location       string          `json:"location"`
	EventDate      string          `json:"eventDate"`
}

// NormalizeRequest validates and coerces a wire request into the engine's
// input shape. Unknown selection keys are rejected here rather than
// silently dropped, so a typo can never erase a priced service.
func NormalizeRequest(wire WireRequest, table *PriceTable) (QuoteRequest, error) {
	hours, err := parseHours(wire.Hours)
	if err != nil {
		return QuoteRequest{}, err
	}

	addons, err := parseSelection(wire.Addons, "addons", "unknown_addon:", table.RateForAddon)
	if err != nil {
		return QuoteRequest{}, err
	}

	post, err := parseSelection(wire.PostProduction, "post_production", "unknown_post_production:", table.RateForPostProduction)
	if err != nil {
		return QuoteRequest{}, err
	}

	return QuoteRequest{
		Hours:          hours,
		Addons:         addons,
		PostProduction: post,
		Location:       strings.TrimSpace(wire.Location),
		EventDate:      strings.TrimSpace(wire.EventDate),
	}, nil
}

func parseHours(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, invalidInput("hours")
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, invalidInput("hours")
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, invalidInput("hours")
		}
		num = parsed
	}

	if math.IsNaN(num) || math.IsInf(num, 0) || num <= 0 {
		return 0, invalidInput("hours")
	}
	return num, nil
}

// parseSelection accepts either encoding of a selection set, lower-cases
// and trims keys, collapses duplicates, and validates every key against
// the table through lookup.
func parseSelection(raw json.RawMessage, field, unknownPrefix string, lookup func(string) (decimal.Decimal, bool)) (map[string]bool, error) {
	keys, err := selectionKeys(raw, field)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if _, ok := lookup(key); !ok {
			return nil, invalidInput(unknownPrefix + key)
		}
		set[key] = true
	}
	return set, nil
}

func selectionKeys(raw json.RawMessage, field string) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil, invalidInput(field)
	}
	keys := make([]string, 0, len(flags))
	for key, on := range flags {
		if on {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
