package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultEnvFile             = ".env"
	defaultInsuranceFee        = "3.50"
	defaultTaxRate             = "0.19"
	defaultDeMinimisEUR        = "150"
	defaultProcessingFeeMAD    = "50"
	defaultFXRateEURToMAD      = "10.85"
	defaultMaxDeliveryAttempts = 3
	defaultDisplayLocale       = "en"
)

// Config captures all runtime configuration organised by concern. The
// monetary tunables exist so the pure calculators can be exercised under
// controlled parameters instead of reading package-level constants.
type Config struct {
	Pricing  PricingConfig
	Customs  CustomsConfig
	Delivery DeliveryConfig
	Display  DisplayConfig
}

// PricingConfig holds the injected parameters of the pricing engine.
type PricingConfig struct {
	// InsuranceFee is the flat fee included in every charge, in the trip currency.
	InsuranceFee decimal.Decimal
	// TaxRate is the fraction applied to the subtotal.
	TaxRate decimal.Decimal
}

// CustomsConfig holds the injected parameters of the duty calculator.
type CustomsConfig struct {
	// DeMinimisEUR is the declared value at or below which no duty is charged.
	DeMinimisEUR decimal.Decimal
	// ProcessingFeeMAD is the flat clearance fee added to dutiable assessments.
	ProcessingFeeMAD decimal.Decimal
	// FXRateEURToMAD is the fixed rate used to convert the dutiable portion.
	FXRateEURToMAD decimal.Decimal
	// TableVersion, when set, pins the duty table version this deployment
	// expects; construction fails on mismatch so client and backend cannot
	// silently disagree.
	TableVersion string
}

// DeliveryConfig bounds the delivery retry loop.
type DeliveryConfig struct {
	// MaxAttempts is the number of delivery attempts before the parcel is
	// routed to depot pickup.
	MaxAttempts int
}

// DisplayConfig controls presentational formatting only.
type DisplayConfig struct {
	// Locale is the BCP 47 tag used by the currency formatter.
	Locale string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides, and
// environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	var invalid []string

	cfg := Config{
		Pricing: PricingConfig{
			InsuranceFee: decimalWithDefault(lookup, "CORE_PRICING_INSURANCE_FEE", defaultInsuranceFee, &invalid),
			TaxRate:      decimalWithDefault(lookup, "CORE_PRICING_TAX_RATE", defaultTaxRate, &invalid),
		},
		Customs: CustomsConfig{
			DeMinimisEUR:     decimalWithDefault(lookup, "CORE_CUSTOMS_DE_MINIMIS_EUR", defaultDeMinimisEUR, &invalid),
			ProcessingFeeMAD: decimalWithDefault(lookup, "CORE_CUSTOMS_PROCESSING_FEE_MAD", defaultProcessingFeeMAD, &invalid),
			FXRateEURToMAD:   decimalWithDefault(lookup, "CORE_CUSTOMS_FX_RATE_EUR_MAD", defaultFXRateEURToMAD, &invalid),
			TableVersion:     stringWithDefault(lookup, "CORE_CUSTOMS_TABLE_VERSION", ""),
		},
		Delivery: DeliveryConfig{
			MaxAttempts: intWithDefault(lookup, "CORE_DELIVERY_MAX_ATTEMPTS", defaultMaxDeliveryAttempts),
		},
		Display: DisplayConfig{
			Locale: stringWithDefault(lookup, "CORE_DISPLAY_LOCALE", defaultDisplayLocale),
		},
	}

	if cfg.Pricing.InsuranceFee.IsNegative() {
		invalid = append(invalid, "Pricing.InsuranceFee")
	}
	if cfg.Pricing.TaxRate.IsNegative() || cfg.Pricing.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		invalid = append(invalid, "Pricing.TaxRate")
	}
	if cfg.Customs.DeMinimisEUR.IsNegative() {
		invalid = append(invalid, "Customs.DeMinimisEUR")
	}
	if cfg.Customs.ProcessingFeeMAD.IsNegative() {
		invalid = append(invalid, "Customs.ProcessingFeeMAD")
	}
	if !cfg.Customs.FXRateEURToMAD.IsPositive() {
		invalid = append(invalid, "Customs.FXRateEURToMAD")
	}
	if cfg.Delivery.MaxAttempts < 1 {
		invalid = append(invalid, "Delivery.MaxAttempts")
	}

	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}

	return cfg, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func decimalWithDefault(lookup func(string) (string, bool), key, fallback string, invalid *[]string) decimal.Decimal {
	raw := fallback
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		raw = strings.TrimSpace(value)
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		*invalid = append(*invalid, key)
		return decimal.Zero
	}
	return parsed
}
