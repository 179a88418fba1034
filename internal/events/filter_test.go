package events

import (
	"reflect"
	"testing"
)

func dayPtr(s string) *Day {
	d := Day(s)
	return &d
}

func filterFixture() []Event {
	return []Event{
		ev(KindProcessed, "M1", "2024-01-01", "A", "a@x.com"),
		ev(KindDelivered, "M1", "2024-01-01", "A", "a@x.com"),
		ev(KindProcessed, "M2", "2024-01-02", "B", "b@x.com"),
		ev(KindProcessed, "M3", "2024-01-03", "A", "c@x.com"),
		ev(KindBounced, "M3", "2024-01-03", "A", "c@x.com"),
	}
}

func TestApplyZeroFilter(t *testing.T) {
	evts := filterFixture()
	out := Apply(evts, Filter{})
	if !reflect.DeepEqual(out, evts) {
		t.Errorf("zero filter changed the event set")
	}
}

func TestApplyDateRange(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"inclusive both ends", Filter{Start: dayPtr("2024-01-01"), End: dayPtr("2024-01-03")}, 5},
		{"start only", Filter{Start: dayPtr("2024-01-02")}, 3},
		{"end only", Filter{End: dayPtr("2024-01-01")}, 2},
		{"single day", Filter{Start: dayPtr("2024-01-02"), End: dayPtr("2024-01-02")}, 1},
		{"outside range", Filter{Start: dayPtr("2024-02-01")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Apply(filterFixture(), tt.filter)
			if len(out) != tt.want {
				t.Errorf("got %d events, want %d", len(out), tt.want)
			}
		})
	}
}

func TestApplySubjects(t *testing.T) {
	out := Apply(filterFixture(), Filter{Subjects: []string{"A"}})
	if len(out) != 4 {
		t.Fatalf("got %d events, want 4", len(out))
	}
	for _, e := range out {
		if e.Subject != "A" {
			t.Errorf("subject %q leaked through", e.Subject)
		}
	}

	// Empty subject list means all subjects, not none
	out = Apply(filterFixture(), Filter{Subjects: nil, Start: dayPtr("2024-01-01")})
	if len(out) != 5 {
		t.Errorf("empty subject list filtered events: got %d, want 5", len(out))
	}
}

func TestApplyExcludeRecipients(t *testing.T) {
	out := Apply(filterFixture(), Filter{ExcludeRecipients: []string{"c@x.com"}})
	if len(out) != 3 {
		t.Fatalf("got %d events, want 3", len(out))
	}
	for _, e := range out {
		if e.Recipient == "c@x.com" {
			t.Errorf("excluded recipient survived")
		}
	}
}

func TestApplyConjunction(t *testing.T) {
	full := Filter{
		Start:             dayPtr("2024-01-01"),
		End:               dayPtr("2024-01-03"),
		Subjects:          []string{"A"},
		ExcludeRecipients: []string{"c@x.com"},
	}

	evts := filterFixture()
	combined := Apply(evts, full)

	// Applying the predicates one at a time in any order yields the same set
	sequential := Apply(evts, Filter{ExcludeRecipients: full.ExcludeRecipients})
	sequential = Apply(sequential, Filter{Subjects: full.Subjects})
	sequential = Apply(sequential, Filter{Start: full.Start, End: full.End})

	if !reflect.DeepEqual(combined, sequential) {
		t.Errorf("conjunction differs from sequential application:\ncombined:   %+v\nsequential: %+v", combined, sequential)
	}

	if len(combined) != 2 {
		t.Errorf("got %d events, want 2 (M1 processed+delivered)", len(combined))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	evts := filterFixture()
	snapshot := make([]Event, len(evts))
	copy(snapshot, evts)

	Apply(evts, Filter{Subjects: []string{"B"}})
	if !reflect.DeepEqual(evts, snapshot) {
		t.Errorf("Apply mutated its input")
	}
}
