package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atlas-parcel/core/internal/domain"
	"github.com/atlas-parcel/core/internal/platform/observability"
)

// ErrParcelUnavailable signals that the tracking feed could not supply the
// parcel snapshot.
var ErrParcelUnavailable = errors.New("tracking: parcel unavailable")

// TrackingFeed supplies parcel snapshots from the tracking backend. The
// backend owns the record and its timeline; this core only interprets them.
type TrackingFeed interface {
	GetParcel(ctx context.Context, parcelID string) (domain.Parcel, error)
}

// TrackingService renders customer-facing tracking views from feed snapshots.
// It folds the status facts table, the delivery-attempt policy and the duty
// estimate into a single read model. Statuses the facts table does not know
// degrade to a generic view instead of failing the call: the feed evolves
// ahead of this core and tracking must keep rendering.
type TrackingService struct {
	feed        TrackingFeed
	duty        *DutyCalculator
	maxAttempts int
	now         func() time.Time
}

// TrackingServiceDeps lists the collaborators required by NewTrackingService.
type TrackingServiceDeps struct {
	Feed TrackingFeed
	Duty *DutyCalculator
	// MaxDeliveryAttempts is the number of failed attempts after which the
	// parcel is routed to depot pickup and the customer is told to contact
	// support.
	MaxDeliveryAttempts int
	Now                 func() time.Time
}

// NewTrackingService validates dependencies and builds the service.
func NewTrackingService(deps TrackingServiceDeps) (*TrackingService, error) {
	if deps.Feed == nil {
		return nil, errors.New("tracking service: feed is required")
	}
	if deps.Duty == nil {
		return nil, errors.New("tracking service: duty calculator is required")
	}
	if deps.MaxDeliveryAttempts < 1 {
		return nil, errors.New("tracking service: max delivery attempts must be at least 1")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TrackingService{
		feed:        deps.Feed,
		duty:        deps.Duty,
		maxAttempts: deps.MaxDeliveryAttempts,
		now:         func() time.Time { return now().UTC() },
	}, nil
}

// DutyEstimate is the customs-charges block of the tracking view. Every
// rendered estimate carries the advisory disclaimer; Flagged marks estimates
// computed with the catch-all category after an unknown declared category.
type DutyEstimate struct {
	Assessment domain.DutyAssessment
	Flagged    bool
	Disclaimer string
}

// CustomsPanel is the customs section of the tracking view, present only
// while the parcel sits inside a customs stage.
type CustomsPanel struct {
	Stage                  domain.CustomsStage
	Status                 domain.ParcelStatus
	SubmittedAt            time.Time
	EstimatedClearanceTime *time.Time
	Documents              []domain.CustomsDocument
	DelayReason            *string
	PaymentStatus          domain.DutyPaymentStatus
	Duty                   *DutyEstimate
}

// TrackingView is the assembled customer-facing read model for one parcel.
type TrackingView struct {
	ParcelID    string
	Status      domain.ParcelStatus
	StatusLabel string
	// Progress is the percentage shown on the tracking bar. Terminal failures
	// and unrecognized statuses freeze it at the furthest point the timeline
	// reached.
	Progress          int
	Delayed           bool
	ContactAllowed    bool
	RequiredAction    RequiredAction
	AttemptsExhausted bool
	// Degraded marks a view rendered from an unrecognized status via the
	// generic fallback facts.
	Degraded    bool
	Timeline    []domain.TimelineEntry
	Customs     *CustomsPanel
	GeneratedAt time.Time
}

// BuildView fetches the parcel and renders its tracking view. The call fails
// only when the feed cannot supply the parcel; every snapshot the feed does
// return renders, possibly degraded.
func (s *TrackingService) BuildView(ctx context.Context, parcelID string) (TrackingView, error) {
	id := strings.TrimSpace(parcelID)
	if id == "" {
		return TrackingView{}, fmt.Errorf("%w: parcel id is required", ErrParcelUnavailable)
	}

	parcel, err := s.feed.GetParcel(ctx, id)
	if err != nil {
		return TrackingView{}, fmt.Errorf("%w: %s", ErrParcelUnavailable, err)
	}

	now := s.now()
	facts, factsErr := FactsFor(parcel.Status)
	degraded := factsErr != nil
	if degraded {
		observability.FromContext(ctx).Warn("parcel_status_unrecognized",
			zap.String("parcelId", parcel.ID),
			zap.String("status", string(parcel.Status)),
		)
		observability.StatusDriftCounter().Add(ctx, 1)
	}

	progress := facts.Progress
	if facts.StageIndex < 0 {
		progress = furthestTimelineProgress(parcel.Timeline)
	}

	delayed := !facts.Terminal &&
		parcel.EstimatedDelivery != nil &&
		now.After(*parcel.EstimatedDelivery)

	attemptsExhausted := !facts.Terminal && parcel.DeliveryAttempts >= s.maxAttempts
	terminalFailure := facts.Terminal && facts.StageIndex < 0 && !degraded

	action := facts.Action
	if attemptsExhausted || terminalFailure {
		// Depot pickup after exhausted attempts; claims after a failure branch.
		// Both go through support.
		action = ActionContactSupport
	}

	contact := ContactAllowed(parcel.Status, delayed) || attemptsExhausted || terminalFailure

	view := TrackingView{
		ParcelID:          parcel.ID,
		Status:            parcel.Status,
		StatusLabel:       facts.Label,
		Progress:          progress,
		Delayed:           delayed,
		ContactAllowed:    contact,
		RequiredAction:    action,
		AttemptsExhausted: attemptsExhausted,
		Degraded:          degraded,
		Timeline:          append([]domain.TimelineEntry(nil), parcel.Timeline...),
		Customs:           s.customsPanel(ctx, parcel),
		GeneratedAt:       now,
	}
	return view, nil
}

// customsPanel builds the customs section, attaching a fresh duty estimate
// while the parcel waits on duty payment.
func (s *TrackingService) customsPanel(ctx context.Context, parcel domain.Parcel) *CustomsPanel {
	info := parcel.Customs
	if info == nil {
		return nil
	}

	panel := &CustomsPanel{
		Stage:                  info.Stage,
		Status:                 info.Status,
		SubmittedAt:            info.SubmittedAt,
		EstimatedClearanceTime: info.EstimatedClearanceTime,
		Documents:              append([]domain.CustomsDocument(nil), info.Documents...),
		DelayReason:            info.DelayReason,
		PaymentStatus:          domain.DutyPaymentUnpaid,
	}
	if info.Duty != nil {
		panel.PaymentStatus = info.Duty.PaymentStatus
	}

	if parcel.Status != domain.StatusDutyPaymentPending {
		return panel
	}

	assessment, err := s.duty.AssessDuty(ctx, parcel.DeclaredValueEUR, parcel.DeclaredCategory)
	switch {
	case err == nil:
		panel.Duty = &DutyEstimate{
			Assessment: assessment,
			Disclaimer: domain.AssessmentDisclaimer,
		}
	case errors.Is(err, ErrDutyCategoryNotFound):
		// Catch-all estimate is still shown, visibly flagged.
		panel.Duty = &DutyEstimate{
			Assessment: assessment,
			Flagged:    true,
			Disclaimer: domain.AssessmentDisclaimer,
		}
	default:
		// A snapshot with an unusable declared value renders without an
		// estimate rather than failing the whole view.
		observability.FromContext(ctx).Warn("duty_estimate_unavailable",
			zap.String("parcelId", parcel.ID),
			zap.String("declaredValue", parcel.DeclaredValueEUR.String()),
			zap.Error(err),
		)
	}
	return panel
}

// furthestTimelineProgress returns the highest progress any recognized
// timeline status reached, so failed and unknown parcels keep showing how far
// they actually got.
func furthestTimelineProgress(timeline []domain.TimelineEntry) int {
	furthest := 0
	for _, entry := range timeline {
		facts, err := FactsFor(entry.Status)
		if err != nil || facts.StageIndex < 0 {
			continue
		}
		if facts.Progress > furthest {
			furthest = facts.Progress
		}
	}
	return furthest
}
