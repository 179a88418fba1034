package metrics

// Status classifies a rate against industry benchmark thresholds.
type Status string

const (
	StatusExcellent  Status = "excellent"
	StatusGood       Status = "good"
	StatusAcceptable Status = "acceptable"
	StatusPoor       Status = "poor"
)

// Benchmark thresholds, percentages. Bounce is inverted: lower is better.
const (
	deliveryExcellent = 95.0
	deliveryGood      = 90.0
	openExcellent     = 25.0
	openGood          = 15.0
	bounceExcellent   = 2.0
	bounceAcceptable  = 5.0
)

// DeliveryStatus classifies a delivery rate.
func DeliveryStatus(rate float64) Status {
	switch {
	case rate >= deliveryExcellent:
		return StatusExcellent
	case rate >= deliveryGood:
		return StatusGood
	default:
		return StatusPoor
	}
}

// OpenStatus classifies an open rate.
func OpenStatus(rate float64) Status {
	switch {
	case rate >= openExcellent:
		return StatusExcellent
	case rate >= openGood:
		return StatusGood
	default:
		return StatusPoor
	}
}

// BounceStatus classifies a bounce rate. Lower is better.
func BounceStatus(rate float64) Status {
	switch {
	case rate <= bounceExcellent:
		return StatusExcellent
	case rate <= bounceAcceptable:
		return StatusAcceptable
	default:
		return StatusPoor
	}
}

// Benchmarks bundles the three classifications for an Overall result.
type Benchmarks struct {
	Delivery Status `json:"delivery"`
	Open     Status `json:"open"`
	Bounce   Status `json:"bounce"`
}

// Classify returns benchmark statuses for the given metrics.
func Classify(o Overall) Benchmarks {
	return Benchmarks{
		Delivery: DeliveryStatus(o.DeliveryRate),
		Open:     OpenStatus(o.OpenRate),
		Bounce:   BounceStatus(o.BounceRate),
	}
}
