package models

import (
	"testing"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		current VisitStatus
		event   VisitEvent
		want    VisitStatus
		wantOK  bool
	}{
		{
			name:    "assign a pending visit",
			current: VisitPending,
			event:   EventAssign,
			want:    VisitAssigned,
			wantOK:  true,
		},
		{
			name:    "submit work on an assigned visit",
			current: VisitAssigned,
			event:   EventSubmitWork,
			want:    VisitCompletedByWorker,
			wantOK:  true,
		},
		{
			name:    "confirm a completed visit",
			current: VisitCompletedByWorker,
			event:   EventConfirm,
			want:    VisitConfirmed,
			wantOK:  true,
		},
		{
			name:    "report an issue on a completed visit",
			current: VisitCompletedByWorker,
			event:   EventReportIssue,
			want:    VisitRequiresRevisit,
			wantOK:  true,
		},
		{
			name:    "reassign after a revisit request",
			current: VisitRequiresRevisit,
			event:   EventReassign,
			want:    VisitAssigned,
			wantOK:  true,
		},
		{
			name:    "assign an already assigned visit",
			current: VisitAssigned,
			event:   EventAssign,
			wantOK:  false,
		},
		{
			name:    "submit work on a pending visit",
			current: VisitPending,
			event:   EventSubmitWork,
			wantOK:  false,
		},
		{
			name:    "confirm a pending visit",
			current: VisitPending,
			event:   EventConfirm,
			wantOK:  false,
		},
		{
			name:    "confirm twice",
			current: VisitConfirmed,
			event:   EventConfirm,
			wantOK:  false,
		},
		{
			name:    "report an issue after confirmation",
			current: VisitConfirmed,
			event:   EventReportIssue,
			wantOK:  false,
		},
		{
			name:    "reassign a visit that needs no revisit",
			current: VisitAssigned,
			event:   EventReassign,
			wantOK:  false,
		},
		{
			name:    "unknown event",
			current: VisitPending,
			event:   VisitEvent("teleport"),
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Transition(tt.current, tt.event)

			if ok != tt.wantOK {
				t.Fatalf("Transition(%s, %s) ok = %v, want %v", tt.current, tt.event, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Transition(%s, %s) = %s, want %s", tt.current, tt.event, got, tt.want)
			}
			if !ok && got != tt.current {
				t.Errorf("illegal transition changed state: got %s, had %s", got, tt.current)
			}
		})
	}
}

func TestRequiredState(t *testing.T) {
	tests := []struct {
		event  VisitEvent
		want   VisitStatus
		wantOK bool
	}{
		{event: EventAssign, want: VisitPending, wantOK: true},
		{event: EventSubmitWork, want: VisitAssigned, wantOK: true},
		{event: EventConfirm, want: VisitCompletedByWorker, wantOK: true},
		{event: EventReportIssue, want: VisitCompletedByWorker, wantOK: true},
		{event: EventReassign, want: VisitRequiresRevisit, wantOK: true},
		{event: VisitEvent("teleport"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			got, ok := RequiredState(tt.event)

			if ok != tt.wantOK {
				t.Fatalf("RequiredState(%s) ok = %v, want %v", tt.event, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("RequiredState(%s) = %s, want %s", tt.event, got, tt.want)
			}
		})
	}
}

func TestVisitStatus_Valid(t *testing.T) {
	for _, s := range []VisitStatus{
		VisitPending, VisitAssigned, VisitCompletedByWorker, VisitConfirmed, VisitRequiresRevisit,
	} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if VisitStatus("DONE").Valid() {
		t.Error("DONE should not be valid")
	}
}
