// Package metrics computes funnel counts and rates over reconciled event
// sets. Counts come from set intersections of distinct message ids rather
// than raw per-kind row counts, so partial or out-of-order event delivery
// can never inflate a downstream stage above its upstream one.
package metrics

import (
	"sort"

	"github.com/gabzkie30/sendgrid-email-automation/internal/events"
)

// Overall holds funnel totals and rates for one filtered event set.
// Rates are percentages; a rate with a zero denominator is 0.
type Overall struct {
	TotalProcessed int     `json:"total_processed"`
	TotalDelivered int     `json:"total_delivered"`
	TotalOpened    int     `json:"total_opened"`
	TotalBounced   int     `json:"total_bounced"`
	DeliveryRate   float64 `json:"delivery_rate"`
	OpenRate       float64 `json:"open_rate"`
	BounceRate     float64 `json:"bounce_rate"`
}

// HasData reports whether any message survived reconciliation and filtering.
// Callers should render a "no data" state when false instead of showing
// all-zero metrics as if they were real.
func (o Overall) HasData() bool { return o.TotalProcessed > 0 }

// DailyRow holds the funnel counts and rates for one calendar day. Every
// event of a message is bucketed under the day of the message's Processed
// event, so a row reads as send-cohort performance for that day, not
// activity that happened on it.
type DailyRow struct {
	Day          events.Day `json:"processed_date"`
	Processed    int        `json:"processed"`
	Delivered    int        `json:"delivered"`
	Opened       int        `json:"open"`
	Bounced      int        `json:"bounce"`
	DeliveryRate float64    `json:"delivery_rate"`
	OpenRate     float64    `json:"open_rate"`
	BounceRate   float64    `json:"bounce_rate"`
}

// Rate returns numerator/denominator as a percentage, 0 when the
// denominator is 0.
func Rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}

// kindSets collects the distinct message ids observed per funnel kind.
type kindSets struct {
	processed map[string]bool
	delivered map[string]bool
	opened    map[string]bool
	bounced   map[string]bool
}

func collect(evts []events.Event) kindSets {
	s := kindSets{
		processed: make(map[string]bool),
		delivered: make(map[string]bool),
		opened:    make(map[string]bool),
		bounced:   make(map[string]bool),
	}
	for _, ev := range evts {
		switch ev.Kind {
		case events.KindProcessed:
			s.processed[ev.MessageID] = true
		case events.KindDelivered:
			s.delivered[ev.MessageID] = true
		case events.KindOpened:
			s.opened[ev.MessageID] = true
		case events.KindBounced:
			s.bounced[ev.MessageID] = true
		}
	}
	return s
}

func intersectCount(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if b[id] {
			n++
		}
	}
	return n
}

func (s kindSets) overall() Overall {
	o := Overall{
		TotalProcessed: len(s.processed),
		TotalDelivered: intersectCount(s.delivered, s.processed),
		TotalOpened:    intersectCount(s.opened, s.delivered),
		TotalBounced:   intersectCount(s.bounced, s.processed),
	}
	o.DeliveryRate = Rate(o.TotalDelivered, o.TotalProcessed)
	o.OpenRate = Rate(o.TotalOpened, o.TotalDelivered)
	o.BounceRate = Rate(o.TotalBounced, o.TotalProcessed)
	return o
}

// Compute calculates overall funnel metrics for a filtered event set.
// An empty input yields all-zero totals and rates, not an error.
func Compute(evts []events.Event) Overall {
	return collect(evts).overall()
}

// ComputeDaily partitions a filtered event set by canonical day and computes
// the per-day funnel, ascending by day. Only days present in the input
// appear; zero-activity days are not synthesized.
func ComputeDaily(evts []events.Event) []DailyRow {
	if len(evts) == 0 {
		return nil
	}

	byDay := make(map[events.Day][]events.Event)
	for _, ev := range evts {
		byDay[ev.Day] = append(byDay[ev.Day], ev)
	}

	days := make([]events.Day, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	rows := make([]DailyRow, 0, len(days))
	for _, day := range days {
		o := Compute(byDay[day])
		rows = append(rows, DailyRow{
			Day:          day,
			Processed:    o.TotalProcessed,
			Delivered:    o.TotalDelivered,
			Opened:       o.TotalOpened,
			Bounced:      o.TotalBounced,
			DeliveryRate: o.DeliveryRate,
			OpenRate:     o.OpenRate,
			BounceRate:   o.BounceRate,
		})
	}
	return rows
}
