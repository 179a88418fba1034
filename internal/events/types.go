package events

import "time"

// Kind identifies a delivery-pipeline event. Only the four funnel kinds are
// retained; everything else in an uploaded file is dropped at normalization.
type Kind string

const (
	KindProcessed Kind = "processed"
	KindDelivered Kind = "delivered"
	KindOpened    Kind = "open"
	KindBounced   Kind = "bounce"
)

// FunnelKinds lists the retained kinds in funnel order.
var FunnelKinds = []Kind{KindProcessed, KindDelivered, KindOpened, KindBounced}

var validKinds = map[Kind]bool{
	KindProcessed: true,
	KindDelivered: true,
	KindOpened:    true,
	KindBounced:   true,
}

// Valid reports whether k is one of the four retained funnel kinds.
func (k Kind) Valid() bool { return validKinds[k] }

const dayLayout = "2006-01-02"

// Day is a calendar date in YYYY-MM-DD form. The string form keeps map keys
// cheap and makes lexicographic order equal to chronological order.
type Day string

// DayOf truncates a timestamp to its calendar date.
func DayOf(t time.Time) Day { return Day(t.Format(dayLayout)) }

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", err
	}
	return DayOf(t), nil
}

// Event is one normalized delivery-pipeline event. After reconciliation,
// Subject and Day hold the message's canonical values taken from its
// Processed event, regardless of which row this event came from.
type Event struct {
	Kind      Kind
	MessageID string
	Timestamp time.Time
	Day       Day
	Subject   string
	Recipient string
}
