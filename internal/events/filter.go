package events

// Filter selects a subset of a reconciled event set. All active predicates
// must hold for an event to survive (conjunction); inactive predicates are
// skipped. Date bounds are inclusive and compare against the canonical day.
type Filter struct {
	// Start/End bound the canonical day; nil means unbounded on that side.
	Start *Day
	End   *Day
	// Subjects keeps only events whose canonical subject is listed. An empty
	// or nil slice means "all subjects" — mirroring the convention where the
	// subject picker defaults to everything selected.
	Subjects []string
	// ExcludeRecipients drops events addressed to any listed recipient.
	ExcludeRecipients []string
}

// IsZero reports whether no predicate is active.
func (f Filter) IsZero() bool {
	return f.Start == nil && f.End == nil && len(f.Subjects) == 0 && len(f.ExcludeRecipients) == 0
}

// Apply returns the events satisfying every active predicate, in input
// order. The input slice is never modified.
func Apply(evts []Event, f Filter) []Event {
	if f.IsZero() {
		return evts
	}

	subjects := toSet(f.Subjects)
	excluded := toSet(f.ExcludeRecipients)

	out := make([]Event, 0, len(evts))
	for _, ev := range evts {
		if f.Start != nil && ev.Day < *f.Start {
			continue
		}
		if f.End != nil && ev.Day > *f.End {
			continue
		}
		if len(subjects) > 0 && !subjects[ev.Subject] {
			continue
		}
		if len(excluded) > 0 && excluded[ev.Recipient] {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
