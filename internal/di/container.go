package di

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/atlas-parcel/core/internal/domain"
	"github.com/atlas-parcel/core/internal/platform/config"
	"github.com/atlas-parcel/core/internal/platform/currency"
	"github.com/atlas-parcel/core/internal/services"
)

// Providers bundles the external collaborators the host application supplies.
// The booking API owns trips, the tracking backend owns parcels; this core
// only consumes their snapshots.
type Providers struct {
	Trips   services.TripProvider
	Parcels services.TrackingFeed
}

// Services bundles the assembled service layer.
type Services struct {
	Pricing  *services.PricingEngine
	Duty     *services.DutyCalculator
	Advisor  *services.PackagingAdvisor
	Quotes   *services.QuoteService
	Tracking *services.TrackingService
}

// Container wires calculators and services for runtime use. Hosts embed it
// and expose whichever surface they need; tests can build one from an
// in-memory config and stub providers.
type Container struct {
	Config    config.Config
	Formatter currency.Formatter
	Services  Services
}

// NewContainer constructs the runtime dependencies from validated config and
// the host's providers.
func NewContainer(cfg config.Config, providers Providers) (*Container, error) {
	if providers.Trips == nil {
		return nil, errors.New("di: trip provider is required")
	}
	if providers.Parcels == nil {
		return nil, errors.New("di: tracking feed is required")
	}

	pricing, err := services.NewPricingEngine(services.PricingEngineConfig{
		InsuranceFee: cfg.Pricing.InsuranceFee,
		TaxRate:      cfg.Pricing.TaxRate,
	})
	if err != nil {
		return nil, fmt.Errorf("build pricing engine: %w", err)
	}

	duty, err := services.NewDutyCalculator(services.DutyCalculatorConfig{
		DeMinimisEUR:     cfg.Customs.DeMinimisEUR,
		ProcessingFeeMAD: cfg.Customs.ProcessingFeeMAD,
		FXRateEURToMAD:   cfg.Customs.FXRateEURToMAD,
		TableVersion:     cfg.Customs.TableVersion,
	}, domain.DefaultDutyTable())
	if err != nil {
		return nil, fmt.Errorf("build duty calculator: %w", err)
	}

	advisor, err := services.NewPackagingAdvisor(domain.DefaultPackagingTiers())
	if err != nil {
		return nil, fmt.Errorf("build packaging advisor: %w", err)
	}

	quotes, err := services.NewQuoteService(services.QuoteServiceDeps{
		Trips:   providers.Trips,
		Pricing: pricing,
		Advisor: advisor,
	})
	if err != nil {
		return nil, fmt.Errorf("build quote service: %w", err)
	}

	tracking, err := services.NewTrackingService(services.TrackingServiceDeps{
		Feed:                providers.Parcels,
		Duty:                duty,
		MaxDeliveryAttempts: cfg.Delivery.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("build tracking service: %w", err)
	}

	tag, err := language.Parse(cfg.Display.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse display locale %q: %w", cfg.Display.Locale, err)
	}

	return &Container{
		Config:    cfg,
		Formatter: currency.NewFormatter(tag),
		Services: Services{
			Pricing:  pricing,
			Duty:     duty,
			Advisor:  advisor,
			Quotes:   quotes,
			Tracking: tracking,
		},
	}, nil
}
