package events

// canonical holds the subject and day a message inherits from its Processed
// event. Every retained event of the message is rewritten with these values
// so downstream grouping by subject or day is consistent regardless of which
// row an event came from.
type canonical struct {
	subject string
	day     Day
}

// Reconcile restricts a normalized event set to causally valid funnel chains:
//
//  1. Messages without a Processed event are dropped entirely.
//  2. Each retained event inherits its message's canonical subject and day
//     from the first Processed event seen for that message.
//  3. Events are deduplicated by (message_id, kind, day). Day is canonical at
//     that point, so the key collapses to (message_id, kind) per message.
//
// Input order decides the first-seen Processed event and which duplicate is
// kept, which makes the result deterministic for a given row order.
// Reconciling already-reconciled output is a no-op.
func Reconcile(evts []Event) []Event {
	if len(evts) == 0 {
		return nil
	}

	eligible := make(map[string]canonical)
	for _, ev := range evts {
		if ev.Kind != KindProcessed {
			continue
		}
		if _, seen := eligible[ev.MessageID]; !seen {
			eligible[ev.MessageID] = canonical{subject: ev.Subject, day: ev.Day}
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	type dedupKey struct {
		messageID string
		kind      Kind
		day       Day
	}

	seen := make(map[dedupKey]bool, len(evts))
	out := make([]Event, 0, len(evts))
	for _, ev := range evts {
		canon, ok := eligible[ev.MessageID]
		if !ok {
			continue
		}
		ev.Subject = canon.subject
		ev.Day = canon.day

		key := dedupKey{messageID: ev.MessageID, kind: ev.Kind, day: ev.Day}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ev)
	}
	return out
}
