package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-parcel/core/internal/domain"
	"github.com/atlas-parcel/core/internal/platform/currency"
)

type stubTripProvider struct {
	trip domain.Trip
	err  error

	lastTripID string
}

func (s *stubTripProvider) GetTrip(_ context.Context, tripID string) (domain.Trip, error) {
	s.lastTripID = tripID
	if s.err != nil {
		return domain.Trip{}, s.err
	}
	return s.trip, nil
}

func testTrip() domain.Trip {
	return domain.Trip{
		ID: "trip_ams_tng_0905",
		Price: domain.TripPriceParameters{
			BasePrice:    decimal.RequireFromString("10"),
			PricePerKg:   decimal.RequireFromString("2.5"),
			MinimumPrice: decimal.RequireFromString("15"),
			Currency:     currency.EUR,
		},
		RemainingCapacityKg: decimal.RequireFromString("40"),
		TotalCapacityKg:     decimal.RequireFromString("120"),
		DepartureAt:         time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC),
	}
}

func newTestQuoteService(t *testing.T, trips TripProvider) *QuoteService {
	t.Helper()
	pricing, err := NewPricingEngine(PricingEngineConfig{
		InsuranceFee: decimal.RequireFromString("3.50"),
		TaxRate:      decimal.RequireFromString("0.19"),
	})
	if err != nil {
		t.Fatalf("NewPricingEngine: %v", err)
	}
	advisor, err := NewPackagingAdvisor(domain.DefaultPackagingTiers())
	if err != nil {
		t.Fatalf("NewPackagingAdvisor: %v", err)
	}
	svc, err := NewQuoteService(QuoteServiceDeps{
		Trips:   trips,
		Pricing: pricing,
		Advisor: advisor,
		Now:     func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewQuoteService: %v", err)
	}
	return svc
}

func TestQuoteBookingAssemblesQuote(t *testing.T) {
	trips := &stubTripProvider{trip: testTrip()}
	svc := newTestQuoteService(t, trips)

	quote, err := svc.QuoteBooking(context.Background(), QuoteCommand{
		TripID:   "trip_ams_tng_0905",
		WeightKg: 10,
	})
	if err != nil {
		t.Fatalf("QuoteBooking: %v", err)
	}
	if trips.lastTripID != "trip_ams_tng_0905" {
		t.Fatalf("fetched trip %q", trips.lastTripID)
	}
	if quote.ID == "" {
		t.Fatal("expected generated quote id")
	}
	if quote.Trip.ID != "trip_ams_tng_0905" {
		t.Fatalf("quote trip = %q", quote.Trip.ID)
	}
	if quote.Tier.ID != domain.TierMedium {
		t.Fatalf("tier = %s, want %s", quote.Tier.ID, domain.TierMedium)
	}
	if quote.Capacity.OverCapacity {
		t.Fatal("unexpected over-capacity flag")
	}
	if quote.Capacity.Percentage != 25 {
		t.Fatalf("capacity percentage = %d, want 25", quote.Capacity.Percentage)
	}
	if got := quote.Breakdown.Total; !got.Equal(decimal.RequireFromString("51.765")) {
		t.Fatalf("total = %s, want 51.765", got)
	}
	if !quote.GeneratedAt.Equal(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("generated at = %s", quote.GeneratedAt)
	}
}

func TestQuoteBookingHonorsPreferredTier(t *testing.T) {
	svc := newTestQuoteService(t, &stubTripProvider{trip: testTrip()})

	large := domain.TierLarge
	quote, err := svc.QuoteBooking(context.Background(), QuoteCommand{
		TripID:        "trip_ams_tng_0905",
		WeightKg:      12,
		PreferredTier: &large,
	})
	if err != nil {
		t.Fatalf("QuoteBooking: %v", err)
	}
	if quote.Tier.ID != domain.TierLarge {
		t.Fatalf("tier = %s, want %s", quote.Tier.ID, domain.TierLarge)
	}
}

func TestQuoteBookingRejectsTierMismatch(t *testing.T) {
	svc := newTestQuoteService(t, &stubTripProvider{trip: testTrip()})

	small := domain.TierSmall
	_, err := svc.QuoteBooking(context.Background(), QuoteCommand{
		TripID:        "trip_ams_tng_0905",
		WeightKg:      12,
		PreferredTier: &small,
	})
	if !errors.Is(err, ErrTierMismatch) {
		t.Fatalf("err = %v, want ErrTierMismatch", err)
	}
}

func TestQuoteBookingBlocksOverCapacityBeforeTierFit(t *testing.T) {
	trip := testTrip()
	trip.RemainingCapacityKg = decimal.RequireFromString("4")
	svc := newTestQuoteService(t, &stubTripProvider{trip: trip})

	// 6 kg fits the medium tier but exceeds the 4 kg remaining capacity;
	// capacity must win.
	_, err := svc.QuoteBooking(context.Background(), QuoteCommand{
		TripID:   "trip_ams_tng_0905",
		WeightKg: 6,
	})
	if !errors.Is(err, ErrOverCapacity) {
		t.Fatalf("err = %v, want ErrOverCapacity", err)
	}
}

func TestQuoteBookingRejectsWeightBeyondTiers(t *testing.T) {
	svc := newTestQuoteService(t, &stubTripProvider{trip: testTrip()})

	_, err := svc.QuoteBooking(context.Background(), QuoteCommand{
		TripID:   "trip_ams_tng_0905",
		WeightKg: 35,
	})
	if !errors.Is(err, ErrWeightExceedsTiers) {
		t.Fatalf("err = %v, want ErrWeightExceedsTiers", err)
	}
}

func TestQuoteBookingInvalidWeight(t *testing.T) {
	svc := newTestQuoteService(t, &stubTripProvider{trip: testTrip()})

	for _, weight := range []float64{0, -1} {
		_, err := svc.QuoteBooking(context.Background(), QuoteCommand{
			TripID:   "trip_ams_tng_0905",
			WeightKg: weight,
		})
		if !errors.Is(err, ErrInvalidWeight) {
			t.Fatalf("weight %v: err = %v, want ErrInvalidWeight", weight, err)
		}
	}
}

func TestQuoteBookingTripUnavailable(t *testing.T) {
	svc := newTestQuoteService(t, &stubTripProvider{err: errors.New("upstream timeout")})

	_, err := svc.QuoteBooking(context.Background(), QuoteCommand{
		TripID:   "trip_ams_tng_0905",
		WeightKg: 2,
	})
	if !errors.Is(err, ErrTripUnavailable) {
		t.Fatalf("err = %v, want ErrTripUnavailable", err)
	}
}

func TestQuoteBookingRequiresTripID(t *testing.T) {
	trips := &stubTripProvider{trip: testTrip()}
	svc := newTestQuoteService(t, trips)

	_, err := svc.QuoteBooking(context.Background(), QuoteCommand{WeightKg: 2})
	if !errors.Is(err, ErrTripUnavailable) {
		t.Fatalf("err = %v, want ErrTripUnavailable", err)
	}
	if trips.lastTripID != "" {
		t.Fatal("provider should not be called without a trip id")
	}
}
