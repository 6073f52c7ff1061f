package services

import (
	"errors"
	"testing"

	"github.com/atlas-parcel/core/internal/domain"
)

func TestStatusGraphClosure(t *testing.T) {
	for _, status := range KnownStatuses() {
		facts, err := FactsFor(status)
		if err != nil {
			t.Fatalf("FactsFor(%s): %v", status, err)
		}
		forward := statusTransitions[status]
		if facts.Terminal && len(forward) != 0 {
			t.Errorf("terminal status %s has forward transitions %v", status, forward)
		}
		if !facts.Terminal && len(forward) == 0 {
			t.Errorf("non-terminal status %s has no forward transition", status)
		}
	}
}

func TestFailureBranchesReachableFromNonTerminals(t *testing.T) {
	for _, status := range KnownStatuses() {
		if IsTerminal(status) {
			continue
		}
		for _, branch := range []domain.ParcelStatus{domain.StatusCancelled, domain.StatusLost, domain.StatusDamaged} {
			if !CanTransition(status, branch) {
				t.Errorf("expected %s -> %s to be legal", status, branch)
			}
		}
	}
	if CanTransition(domain.StatusDelivered, domain.StatusCancelled) {
		t.Error("terminal status must not reach a failure branch")
	}
}

func TestProgressMonotonicInStageIndex(t *testing.T) {
	byStage := map[int]int{}
	for _, status := range KnownStatuses() {
		facts, _ := FactsFor(status)
		if facts.StageIndex < 0 {
			continue
		}
		if prev, ok := byStage[facts.StageIndex]; ok && prev != facts.Progress {
			t.Errorf("statuses sharing stage %d disagree on progress: %d vs %d", facts.StageIndex, prev, facts.Progress)
		}
		byStage[facts.StageIndex] = facts.Progress
	}
	prevStage, prevProgress := -1, -1
	for stage := 0; stage <= 11; stage++ {
		progress, ok := byStage[stage]
		if !ok {
			t.Fatalf("no status carries stage index %d", stage)
		}
		if progress < prevProgress {
			t.Errorf("progress regressed from stage %d (%d%%) to stage %d (%d%%)", prevStage, prevProgress, stage, progress)
		}
		prevStage, prevProgress = stage, progress
	}
	if byStage[11] != 100 {
		t.Errorf("delivered stage should report 100%%, got %d", byStage[11])
	}
}

func TestHoldsNeverRegressProgress(t *testing.T) {
	holds := map[domain.ParcelStatus][]domain.ParcelStatus{
		domain.StatusCustomsHeldEU:      {domain.StatusCustomsSubmittedEU, domain.StatusCustomsInspectionEU},
		domain.StatusCustomsHeldMA:      {domain.StatusCustomsSubmittedMA, domain.StatusCustomsInspectionMA},
		domain.StatusDutyPaymentPending: {domain.StatusCustomsSubmittedMA, domain.StatusCustomsInspectionMA, domain.StatusCustomsHeldMA},
	}
	for hold, sources := range holds {
		holdFacts, err := FactsFor(hold)
		if err != nil {
			t.Fatalf("FactsFor(%s): %v", hold, err)
		}
		if !holdFacts.IsHold {
			t.Errorf("%s should be marked as a hold", hold)
		}
		for _, source := range sources {
			if !CanTransition(source, hold) {
				t.Errorf("expected %s -> %s to be legal", source, hold)
				continue
			}
			sourceProgress, _ := Progress(source)
			if holdFacts.Progress < sourceProgress {
				t.Errorf("entering hold %s from %s regresses progress: %d%% -> %d%%", hold, source, sourceProgress, holdFacts.Progress)
			}
		}
	}
}

func TestDeliveryAttemptReentry(t *testing.T) {
	if !CanTransition(domain.StatusOutForDelivery, domain.StatusDeliveryAttempted) {
		t.Error("OUT_FOR_DELIVERY should reach DELIVERY_ATTEMPTED")
	}
	if !CanTransition(domain.StatusDeliveryAttempted, domain.StatusOutForDelivery) {
		t.Error("DELIVERY_ATTEMPTED should return to OUT_FOR_DELIVERY")
	}
	out, _ := Progress(domain.StatusOutForDelivery)
	attempted, _ := Progress(domain.StatusDeliveryAttempted)
	if attempted != out {
		t.Errorf("attempt should keep delivery-run progress: %d vs %d", attempted, out)
	}
}

func TestContactAllowed(t *testing.T) {
	if !ContactAllowed(domain.StatusOutForDelivery, false) {
		t.Error("contact should be allowed out for delivery")
	}
	if !ContactAllowed(domain.StatusDeliveryAttempted, false) {
		t.Error("contact should be allowed after a delivery attempt")
	}
	if ContactAllowed(domain.StatusInTransitBus, false) {
		t.Error("contact should be blocked before local dispatch")
	}
	// A delayed parcel opens the contact channel early.
	if !ContactAllowed(domain.StatusCustomsHeldMA, true) {
		t.Error("contact should be allowed when flagged delayed")
	}
	if ContactAllowed(domain.StatusDelivered, true) {
		t.Error("contact should be blocked on terminal statuses")
	}
	if ContactAllowed(domain.ParcelStatus("WARP_DRIVE"), true) {
		t.Error("contact should be blocked for unrecognized statuses")
	}
}

func TestRequiredActions(t *testing.T) {
	cases := []struct {
		status domain.ParcelStatus
		want   RequiredAction
	}{
		{domain.StatusCustomsHeldEU, ActionAwaitingDocuments},
		{domain.StatusCustomsHeldMA, ActionAwaitingDocuments},
		{domain.StatusDutyPaymentPending, ActionAwaitingDutyPayment},
		{domain.StatusInTransitBus, ActionNone},
		{domain.StatusDelivered, ActionNone},
	}
	for _, tc := range cases {
		got, err := ActionFor(tc.status)
		if err != nil {
			t.Fatalf("ActionFor(%s): %v", tc.status, err)
		}
		if got != tc.want {
			t.Errorf("ActionFor(%s) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestUnrecognizedStatusFallsBack(t *testing.T) {
	facts, err := FactsFor(domain.ParcelStatus("TELEPORTED"))
	if !errors.Is(err, ErrUnrecognizedStatus) {
		t.Fatalf("expected ErrUnrecognizedStatus, got %v", err)
	}
	if facts.Label != "Processing" {
		t.Errorf("fallback label = %q, want Processing", facts.Label)
	}
	if facts.Progress != 0 || facts.DirectContact || facts.Action != ActionNone {
		t.Errorf("fallback facts should be inert, got %+v", facts)
	}
	if CanTransition(domain.ParcelStatus("TELEPORTED"), domain.StatusDelivered) {
		t.Error("unknown statuses admit no transitions")
	}
}
