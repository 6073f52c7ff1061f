package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/atlas-parcel/core/internal/domain"
)

var (
	// ErrTripUnavailable signals that the booking collaborator could not supply
	// the trip aggregate.
	ErrTripUnavailable = errors.New("booking: trip unavailable")
	// ErrOverCapacity signals that the parcel exceeds the trip's remaining
	// capacity. This blocks booking regardless of packaging fit.
	ErrOverCapacity = errors.New("booking: parcel exceeds remaining trip capacity")
	// ErrTierMismatch signals that the customer's chosen packaging tier does
	// not fit the parcel weight.
	ErrTierMismatch = errors.New("booking: selected packaging tier does not fit weight")
)

// TripProvider supplies trip aggregates from the external booking API. The
// collaborator owns fetching and freshness; quoting assumes the snapshot is
// current when handed over.
type TripProvider interface {
	GetTrip(ctx context.Context, tripID string) (domain.Trip, error)
}

// QuoteService assembles booking quotes while the customer edits weight and
// packaging. It orchestrates the packaging advisor and the pricing engine
// against a trip snapshot; it performs no persistence — the booking API owns
// the eventual record.
type QuoteService struct {
	trips   TripProvider
	pricing *PricingEngine
	advisor *PackagingAdvisor
	now     func() time.Time
}

// QuoteServiceDeps lists the collaborators required by NewQuoteService.
type QuoteServiceDeps struct {
	Trips   TripProvider
	Pricing *PricingEngine
	Advisor *PackagingAdvisor
	Now     func() time.Time
}

// NewQuoteService validates dependencies and builds the service.
func NewQuoteService(deps QuoteServiceDeps) (*QuoteService, error) {
	if deps.Trips == nil {
		return nil, errors.New("quote service: trip provider is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("quote service: pricing engine is required")
	}
	if deps.Advisor == nil {
		return nil, errors.New("quote service: packaging advisor is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &QuoteService{
		trips:   deps.Trips,
		pricing: deps.Pricing,
		advisor: deps.Advisor,
		now:     func() time.Time { return now().UTC() },
	}, nil
}

// QuoteCommand carries the customer's current booking inputs.
type QuoteCommand struct {
	TripID   string
	WeightKg float64
	// PreferredTier, when set, is validated against the weight instead of
	// silently replacing it with the recommendation.
	PreferredTier *domain.TierID
}

// BookingQuote is the assembled result shown while editing a booking. It is
// recomputed on every change and never stored by this core.
type BookingQuote struct {
	ID          string
	Trip        domain.Trip
	WeightKg    decimal.Decimal
	Tier        domain.PackagingTier
	Capacity    CapacityStatus
	Breakdown   domain.ParcelChargeBreakdown
	GeneratedAt time.Time
}

// QuoteBooking evaluates the command against the trip. Capacity is checked
// before packaging fit: an over-capacity parcel must block booking even when
// a tier would accept it.
func (s *QuoteService) QuoteBooking(ctx context.Context, cmd QuoteCommand) (BookingQuote, error) {
	tripID := strings.TrimSpace(cmd.TripID)
	if tripID == "" {
		return BookingQuote{}, fmt.Errorf("%w: trip id is required", ErrTripUnavailable)
	}

	weight, err := WeightFromFloat(cmd.WeightKg)
	if err != nil {
		return BookingQuote{}, err
	}

	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return BookingQuote{}, fmt.Errorf("%w: %s", ErrTripUnavailable, err)
	}

	capacity, err := s.advisor.CapacityStatus(weight, trip.RemainingCapacityKg)
	if err != nil {
		return BookingQuote{}, err
	}
	if capacity.OverCapacity {
		return BookingQuote{}, fmt.Errorf("%w: %s kg against %s kg remaining", ErrOverCapacity, weight, trip.RemainingCapacityKg)
	}

	tier, err := s.advisor.Recommend(weight)
	if err != nil {
		return BookingQuote{}, err
	}
	if cmd.PreferredTier != nil {
		if !s.advisor.Fits(*cmd.PreferredTier, weight) {
			return BookingQuote{}, fmt.Errorf("%w: %s does not hold %s kg", ErrTierMismatch, *cmd.PreferredTier, weight)
		}
		tier = tierByID(s.advisor.Tiers(), *cmd.PreferredTier)
	}

	breakdown, err := s.pricing.ComputeCharge(weight, trip.Price)
	if err != nil {
		return BookingQuote{}, err
	}

	return BookingQuote{
		ID:          ulid.Make().String(),
		Trip:        trip,
		WeightKg:    weight,
		Tier:        tier,
		Capacity:    capacity,
		Breakdown:   breakdown,
		GeneratedAt: s.now(),
	}, nil
}

func tierByID(tiers []domain.PackagingTier, id domain.TierID) domain.PackagingTier {
	for _, tier := range tiers {
		if tier.ID == id {
			return tier
		}
	}
	return domain.PackagingTier{}
}
