// Package export builds the tabular structures handed to spreadsheet
// downloads: the seven-row metrics summary and the per-day pivot.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/gabzkie30/sendgrid-email-automation/internal/metrics"
)

// Table is a schema-plus-rows structure ready for serialization. Cell values
// are strings, ints, or float64s.
type Table struct {
	Columns []string
	Rows    [][]any
}

// SheetName is the worksheet name used for all spreadsheet downloads.
const SheetName = "Email_Analytics"

// round2 rounds to two decimal places for export display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SummaryTable builds the Metric/Value summary: four counts as integers,
// three rates rounded to two decimals.
func SummaryTable(o metrics.Overall) Table {
	return Table{
		Columns: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Total Processed", o.TotalProcessed},
			{"Total Delivered", o.TotalDelivered},
			{"Total Opened", o.TotalOpened},
			{"Total Bounced", o.TotalBounced},
			{"Delivery Rate (%)", round2(o.DeliveryRate)},
			{"Open Rate (%)", round2(o.OpenRate)},
			{"Bounce Rate (%)", round2(o.BounceRate)},
		},
	}
}

// DailyTable builds the per-day pivot, one row per distinct day in the
// order given (callers pass the aggregator's ascending output).
func DailyTable(rows []metrics.DailyRow) Table {
	t := Table{
		Columns: []string{
			"processed_date", "processed", "delivered", "open", "bounce",
			"Delivery Rate", "Open Rate", "Bounce Rate",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			string(r.Day), r.Processed, r.Delivered, r.Opened, r.Bounced,
			round2(r.DeliveryRate), round2(r.OpenRate), round2(r.BounceRate),
		})
	}
	return t
}

// Filename generates a timestamped download name, e.g.
// "email_analytics_summary_20260114_153000.xlsx".
func Filename(kind, ext string) string {
	return fmt.Sprintf("email_analytics_%s_%s.%s", kind, time.Now().Format("20060102_150405"), ext)
}
