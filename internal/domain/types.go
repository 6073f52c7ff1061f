package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParcelStatus enumerates valid lifecycle states for parcels.
type ParcelStatus string

const (
	// StatusCreated indicates the booking exists but has not been confirmed by the organisation.
	StatusCreated ParcelStatus = "CREATED"
	// StatusConfirmed indicates the organisation accepted the booking onto a trip.
	StatusConfirmed ParcelStatus = "CONFIRMED"
	// StatusPickedUp indicates the driver collected the parcel from the sender.
	StatusPickedUp ParcelStatus = "PICKED_UP"
	// StatusInTransitBus indicates the parcel is travelling on the trip vehicle.
	StatusInTransitBus ParcelStatus = "IN_TRANSIT_BUS"
	// StatusCustomsSubmittedEU indicates the parcel entered the EU-exit customs stage.
	StatusCustomsSubmittedEU ParcelStatus = "CUSTOMS_SUBMITTED_EU"
	// StatusCustomsInspectionEU indicates EU customs selected the parcel for inspection.
	StatusCustomsInspectionEU ParcelStatus = "CUSTOMS_INSPECTION_EU"
	// StatusCustomsHeldEU indicates EU customs is holding the parcel pending documents.
	StatusCustomsHeldEU ParcelStatus = "CUSTOMS_HELD_EU"
	// StatusCustomsClearedEU indicates the parcel cleared EU-exit customs.
	StatusCustomsClearedEU ParcelStatus = "CUSTOMS_CLEARED_EU"
	// StatusCustomsSubmittedMA indicates the parcel entered the Morocco-entry customs stage.
	StatusCustomsSubmittedMA ParcelStatus = "CUSTOMS_SUBMITTED_MA"
	// StatusCustomsInspectionMA indicates Moroccan customs selected the parcel for inspection.
	StatusCustomsInspectionMA ParcelStatus = "CUSTOMS_INSPECTION_MA"
	// StatusCustomsHeldMA indicates Moroccan customs is holding the parcel pending documents.
	StatusCustomsHeldMA ParcelStatus = "CUSTOMS_HELD_MA"
	// StatusDutyPaymentPending indicates import duty must be paid before release.
	StatusDutyPaymentPending ParcelStatus = "DUTY_PAYMENT_PENDING"
	// StatusCustomsClearedMA indicates the parcel cleared Morocco-entry customs.
	StatusCustomsClearedMA ParcelStatus = "CUSTOMS_CLEARED_MA"
	// StatusOutForDelivery indicates the parcel is on a local delivery run.
	StatusOutForDelivery ParcelStatus = "OUT_FOR_DELIVERY"
	// StatusDeliveryAttempted indicates a delivery attempt failed; the parcel returns to OUT_FOR_DELIVERY on retry.
	StatusDeliveryAttempted ParcelStatus = "DELIVERY_ATTEMPTED"
	// StatusDelivered indicates the parcel reached the recipient. Terminal.
	StatusDelivered ParcelStatus = "DELIVERED"
	// StatusCancelled indicates the booking was cancelled. Terminal.
	StatusCancelled ParcelStatus = "CANCELLED"
	// StatusLost indicates the parcel was declared lost. Terminal.
	StatusLost ParcelStatus = "LOST"
	// StatusDamaged indicates the parcel was declared damaged beyond delivery. Terminal.
	StatusDamaged ParcelStatus = "DAMAGED"
)

// TimelineEntry records one lifecycle event as written by the tracking backend.
// The timeline is insertion-ordered and append-only; this core only interprets it.
type TimelineEntry struct {
	Status    ParcelStatus
	Location  string
	Timestamp time.Time
	Completed bool
	Active    bool
}

// CustomsStage identifies which border stage a customs record belongs to.
type CustomsStage string

const (
	// CustomsStageEUExit is the customs stage on leaving the EU.
	CustomsStageEUExit CustomsStage = "EU_EXIT"
	// CustomsStageMAEntry is the customs stage on entering Morocco.
	CustomsStageMAEntry CustomsStage = "MA_ENTRY"
)

// DutyPaymentStatus reflects the payment state reported by the customs collaborator.
type DutyPaymentStatus string

const (
	// DutyPaymentUnpaid indicates the assessed duty has not been paid.
	DutyPaymentUnpaid DutyPaymentStatus = "unpaid"
	// DutyPaymentPending indicates a payment is in flight with the authority.
	DutyPaymentPending DutyPaymentStatus = "pending"
	// DutyPaymentPaid indicates the authority confirmed payment.
	DutyPaymentPaid DutyPaymentStatus = "paid"
)

// CustomsDocument tracks a single document required by a customs stage.
type CustomsDocument struct {
	Name   string
	Status string
}

// DutyInfo pairs a duty assessment with the payment state reported by the authority.
type DutyInfo struct {
	Assessment    DutyAssessment
	PaymentStatus DutyPaymentStatus
}

// CustomsInfo is attached to a parcel only while it sits inside a customs stage.
// It is created when the parcel first reaches a CUSTOMS_SUBMITTED_* status and is
// logically superseded once the parcel clears to the next non-customs status.
type CustomsInfo struct {
	Stage                  CustomsStage
	Status                 ParcelStatus
	SubmittedAt            time.Time
	EstimatedClearanceTime *time.Time
	Duty                   *DutyInfo
	Documents              []CustomsDocument
	DelayReason            *string
}

// Parcel is the tracking-feed snapshot this core interprets. The backend owns
// the record; nothing here mutates it.
type Parcel struct {
	ID                string
	Status            ParcelStatus
	Timeline          []TimelineEntry
	Customs           *CustomsInfo
	EstimatedDelivery *time.Time
	DeliveryAttempts  int
	DeclaredValueEUR  decimal.Decimal
	DeclaredCategory  CategoryKey
	WeightKg          decimal.Decimal
}

// Trip is the booking-aggregate view supplied by the external booking API.
type Trip struct {
	ID                  string
	Price               TripPriceParameters
	RemainingCapacityKg decimal.Decimal
	TotalCapacityKg     decimal.Decimal
	DepartureAt         time.Time
}
