package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cinematicvideographers/nora/internal/pricing"
)

const (
	defaultDBPath      = "./nora.db"
	defaultPort        = "8080"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port         string
	DBPath       string
	LogLevel     string
	LogFormat    string
	OpenAIAPIKey string
	OpenAIModel  string
	Pricing      pricing.Options
}

// Load reads environment variables and returns a populated Config. Pricing
// values fall back to the standard price card when unset.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		Port:         envOr("PORT", defaultPort),
		DBPath:       envOr("DB_PATH", defaultDBPath),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		LogFormat:    envOr("LOG_FORMAT", "console"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envOr("OPENAI_MODEL", defaultOpenAIModel),
	}

	pricingOpts, err := loadPricing()
	if err != nil {
		return Config{}, err
	}
	cfg.Pricing = pricingOpts

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadPricing starts from the default price card and applies env overrides.
func loadPricing() (pricing.Options, error) {
	opts := pricing.DefaultOptions()

	if raw := os.Getenv("HOURLY_RATE"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return pricing.Options{}, fmt.Errorf("parse HOURLY_RATE: %w", err)
		}
		opts.HourlyRate = rate
	}

	if raw := os.Getenv("MINIMUM_HOURS"); raw != "" {
		minHours, err := strconv.Atoi(raw)
		if err != nil {
			return pricing.Options{}, fmt.Errorf("parse MINIMUM_HOURS: %w", err)
		}
		opts.MinimumHours = minHours
	}

	var err error
	if opts.Addons, err = applyPriceList(opts.Addons, os.Getenv("ADDON_PRICES"), "ADDON_PRICES"); err != nil {
		return pricing.Options{}, err
	}
	if opts.PostProduction, err = applyPriceList(opts.PostProduction, os.Getenv("POST_PRODUCTION_PRICES"), "POST_PRODUCTION_PRICES"); err != nil {
		return pricing.Options{}, err
	}

	if opts.Travel, err = loadTravelPolicy(opts.Travel); err != nil {
		return pricing.Options{}, err
	}

	return opts, nil
}

// applyPriceList merges a "key=amount,key=amount" env list into a catalog.
// Known keys keep their label and get the new price; new keys are appended
// with a label derived from the key.
func applyPriceList(catalog []pricing.CatalogItem, list, envName string) ([]pricing.CatalogItem, error) {
	if list == "" {
		return catalog, nil
	}

	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		key, rawPrice, ok := strings.Cut(entry, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("parse %s: malformed entry %q", envName, entry)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rawPrice))
		if err != nil {
			return nil, fmt.Errorf("parse %s entry %q: %w", envName, entry, err)
		}

		replaced := false
		for i := range catalog {
			if catalog[i].Key == key {
				catalog[i].Price = price
				replaced = true
				break
			}
		}
		if !replaced {
			catalog = append(catalog, pricing.CatalogItem{Key: key, Label: labelForKey(key), Price: price})
		}
	}

	return catalog, nil
}

func labelForKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func loadTravelPolicy(fallback pricing.TravelPolicy) (pricing.TravelPolicy, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("TRAVEL_POLICY")))
	if mode == "" {
		return fallback, nil
	}

	policy := pricing.TravelPolicy{Mode: pricing.TravelMode(mode)}
	switch policy.Mode {
	case pricing.TravelNone:
		return policy, nil
	case pricing.TravelFlat:
		fee, err := envDecimal("TRAVEL_FLAT_FEE")
		if err != nil {
			return pricing.TravelPolicy{}, err
		}
		policy.FlatFee = fee
		return policy, nil
	case pricing.TravelTiered:
		var err error
		if policy.LocalFee, err = envDecimal("TRAVEL_LOCAL_FEE"); err != nil {
			return pricing.TravelPolicy{}, err
		}
		if policy.FarFee, err = envDecimal("TRAVEL_FAR_FEE"); err != nil {
			return pricing.TravelPolicy{}, err
		}
		for _, prefix := range strings.Split(os.Getenv("TRAVEL_LOCAL_PREFIXES"), ",") {
			if prefix = strings.TrimSpace(prefix); prefix != "" {
				policy.LocalPrefixes = append(policy.LocalPrefixes, prefix)
			}
		}
		return policy, nil
	default:
		return pricing.TravelPolicy{}, fmt.Errorf("parse TRAVEL_POLICY: unknown mode %q", mode)
	}
}

func envDecimal(key string) (decimal.Decimal, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}
