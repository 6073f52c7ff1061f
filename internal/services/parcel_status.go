package services

import (
	"errors"
	"fmt"
	"slices"

	"github.com/atlas-parcel/core/internal/domain"
)

// ErrUnrecognizedStatus signals a status value outside the known lifecycle
// enumeration, usually the backend schema moving ahead of this client.
// Derivations still return usable fallback facts; the error exists so the
// occurrence can be reported, never swallowed.
var ErrUnrecognizedStatus = errors.New("tracking: unrecognized parcel status")

// RequiredAction enumerates the user-facing actions a status can demand.
type RequiredAction string

const (
	// ActionNone means nothing is required from the customer.
	ActionNone RequiredAction = ""
	// ActionAwaitingDocuments means customs is holding the parcel for documents.
	ActionAwaitingDocuments RequiredAction = "awaiting_documents"
	// ActionAwaitingDutyPayment means import duty must be paid before release.
	ActionAwaitingDutyPayment RequiredAction = "awaiting_duty_payment"
	// ActionContactSupport means the delivery retry budget is exhausted and the
	// parcel awaits depot pickup.
	ActionContactSupport RequiredAction = "contact_support"
)

// StatusFacts are the derived display and business facts for one status.
// Adding a status is an edit to the table below, not a new conditional.
type StatusFacts struct {
	// StageIndex orders statuses along the delivery route. Hold sub-states
	// share their parent stage's index. -1 for failure branches.
	StageIndex int
	// Progress is the completion percentage shown to the customer. Monotonic
	// in StageIndex; holds report their parent stage's value so entering a
	// hold never regresses progress.
	Progress int
	// IsHold marks customs hold sub-states that pause progress without
	// reverting stage.
	IsHold bool
	// Terminal marks statuses with no forward transition.
	Terminal bool
	// DirectContact permits contacting the driver, only once the parcel is on
	// a local delivery run.
	DirectContact bool
	// Action is what, if anything, the customer must do in this status.
	Action RequiredAction
	// Label is the display name for the status.
	Label string
}

var statusFacts = map[domain.ParcelStatus]StatusFacts{
	domain.StatusCreated:             {StageIndex: 0, Progress: 0, Label: "Booking created"},
	domain.StatusConfirmed:           {StageIndex: 1, Progress: 8, Label: "Booking confirmed"},
	domain.StatusPickedUp:            {StageIndex: 2, Progress: 17, Label: "Picked up"},
	domain.StatusInTransitBus:        {StageIndex: 3, Progress: 25, Label: "In transit"},
	domain.StatusCustomsSubmittedEU:  {StageIndex: 4, Progress: 33, Label: "EU customs: submitted"},
	domain.StatusCustomsInspectionEU: {StageIndex: 5, Progress: 42, Label: "EU customs: inspection"},
	domain.StatusCustomsHeldEU:       {StageIndex: 5, Progress: 42, IsHold: true, Action: ActionAwaitingDocuments, Label: "EU customs: held"},
	domain.StatusCustomsClearedEU:    {StageIndex: 6, Progress: 50, Label: "EU customs: cleared"},
	domain.StatusCustomsSubmittedMA:  {StageIndex: 7, Progress: 58, Label: "Moroccan customs: submitted"},
	domain.StatusCustomsInspectionMA: {StageIndex: 8, Progress: 67, Label: "Moroccan customs: inspection"},
	domain.StatusCustomsHeldMA:       {StageIndex: 8, Progress: 67, IsHold: true, Action: ActionAwaitingDocuments, Label: "Moroccan customs: held"},
	domain.StatusDutyPaymentPending:  {StageIndex: 8, Progress: 67, IsHold: true, Action: ActionAwaitingDutyPayment, Label: "Duty payment pending"},
	domain.StatusCustomsClearedMA:    {StageIndex: 9, Progress: 75, Label: "Moroccan customs: cleared"},
	domain.StatusOutForDelivery:      {StageIndex: 10, Progress: 85, DirectContact: true, Label: "Out for delivery"},
	domain.StatusDeliveryAttempted:   {StageIndex: 10, Progress: 85, DirectContact: true, Label: "Delivery attempted"},
	domain.StatusDelivered:           {StageIndex: 11, Progress: 100, Terminal: true, Label: "Delivered"},
	domain.StatusCancelled:           {StageIndex: -1, Progress: 0, Terminal: true, Label: "Cancelled"},
	domain.StatusLost:                {StageIndex: -1, Progress: 0, Terminal: true, Label: "Lost"},
	domain.StatusDamaged:             {StageIndex: -1, Progress: 0, Terminal: true, Label: "Damaged"},
}

// fallbackFacts is the generic processing view used for statuses this release
// does not recognise: no progress claim, no contact, no required action.
var fallbackFacts = StatusFacts{StageIndex: -1, Progress: 0, Label: "Processing"}

// statusTransitions is the forward lifecycle graph. Failure branches
// (CANCELLED, LOST, DAMAGED) are reachable from every non-terminal status and
// are handled in CanTransition rather than repeated per row.
var statusTransitions = map[domain.ParcelStatus][]domain.ParcelStatus{
	domain.StatusCreated:             {domain.StatusConfirmed},
	domain.StatusConfirmed:           {domain.StatusPickedUp},
	domain.StatusPickedUp:            {domain.StatusInTransitBus},
	domain.StatusInTransitBus:        {domain.StatusCustomsSubmittedEU},
	domain.StatusCustomsSubmittedEU:  {domain.StatusCustomsInspectionEU, domain.StatusCustomsHeldEU, domain.StatusCustomsClearedEU},
	domain.StatusCustomsInspectionEU: {domain.StatusCustomsHeldEU, domain.StatusCustomsClearedEU},
	domain.StatusCustomsHeldEU:       {domain.StatusCustomsInspectionEU, domain.StatusCustomsClearedEU},
	domain.StatusCustomsClearedEU:    {domain.StatusCustomsSubmittedMA},
	domain.StatusCustomsSubmittedMA:  {domain.StatusCustomsInspectionMA, domain.StatusCustomsHeldMA, domain.StatusDutyPaymentPending, domain.StatusCustomsClearedMA},
	domain.StatusCustomsInspectionMA: {domain.StatusCustomsHeldMA, domain.StatusDutyPaymentPending, domain.StatusCustomsClearedMA},
	domain.StatusCustomsHeldMA:       {domain.StatusCustomsInspectionMA, domain.StatusDutyPaymentPending, domain.StatusCustomsClearedMA},
	domain.StatusDutyPaymentPending:  {domain.StatusCustomsClearedMA},
	domain.StatusCustomsClearedMA:    {domain.StatusOutForDelivery},
	domain.StatusOutForDelivery:      {domain.StatusDeliveryAttempted, domain.StatusDelivered},
	// A failed attempt always returns to OUT_FOR_DELIVERY on retry.
	domain.StatusDeliveryAttempted: {domain.StatusOutForDelivery},
	domain.StatusDelivered:         {},
	domain.StatusCancelled:         {},
	domain.StatusLost:              {},
	domain.StatusDamaged:           {},
}

var failureBranches = []domain.ParcelStatus{domain.StatusCancelled, domain.StatusLost, domain.StatusDamaged}

// KnownStatuses returns every status in the lifecycle enumeration.
func KnownStatuses() []domain.ParcelStatus {
	out := make([]domain.ParcelStatus, 0, len(statusFacts))
	for status := range statusFacts {
		out = append(out, status)
	}
	slices.Sort(out)
	return out
}

// FactsFor returns the derived facts for a status. Unknown statuses yield the
// generic processing fallback together with ErrUnrecognizedStatus so callers
// degrade gracefully while the drift is reported upstream.
func FactsFor(status domain.ParcelStatus) (StatusFacts, error) {
	if facts, ok := statusFacts[status]; ok {
		return facts, nil
	}
	return fallbackFacts, fmt.Errorf("%w: %q", ErrUnrecognizedStatus, status)
}

// Progress returns the completion percentage for a status.
func Progress(status domain.ParcelStatus) (int, error) {
	facts, err := FactsFor(status)
	return facts.Progress, err
}

// IsTerminal reports whether the status admits no forward transition.
func IsTerminal(status domain.ParcelStatus) bool {
	facts, ok := statusFacts[status]
	return ok && facts.Terminal
}

// ContactAllowed reports whether direct driver contact is permitted: only on
// a local delivery run, or when the parcel is flagged delayed against its
// estimated delivery window.
func ContactAllowed(status domain.ParcelStatus, delayed bool) bool {
	facts, err := FactsFor(status)
	if err != nil {
		return false
	}
	if facts.Terminal {
		return false
	}
	return facts.DirectContact || delayed
}

// ActionFor returns the customer action a status requires.
func ActionFor(status domain.ParcelStatus) (RequiredAction, error) {
	facts, err := FactsFor(status)
	return facts.Action, err
}

// CanTransition reports whether moving from one status to another is legal.
// Unknown statuses admit no transitions.
func CanTransition(from, to domain.ParcelStatus) bool {
	next, ok := statusTransitions[from]
	if !ok {
		return false
	}
	if slices.Contains(next, to) {
		return true
	}
	facts := statusFacts[from]
	return !facts.Terminal && slices.Contains(failureBranches, to)
}

// NextStatuses returns every status legally reachable from the given one,
// failure branches included.
func NextStatuses(from domain.ParcelStatus) []domain.ParcelStatus {
	next, ok := statusTransitions[from]
	if !ok {
		return nil
	}
	out := make([]domain.ParcelStatus, 0, len(next)+len(failureBranches))
	out = append(out, next...)
	if !statusFacts[from].Terminal {
		out = append(out, failureBranches...)
	}
	return out
}
