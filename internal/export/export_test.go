package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gabzkie30/sendgrid-email-automation/internal/metrics"
)

func sampleOverall() metrics.Overall {
	return metrics.Overall{
		TotalProcessed: 200,
		TotalDelivered: 190,
		TotalOpened:    47,
		TotalBounced:   6,
		DeliveryRate:   95.0,
		OpenRate:       24.736842,
		BounceRate:     3.0,
	}
}

func TestSummaryTable(t *testing.T) {
	table := SummaryTable(sampleOverall())

	require.Equal(t, []string{"Metric", "Value"}, table.Columns)
	require.Len(t, table.Rows, 7)

	assert.Equal(t, []any{"Total Processed", 200}, table.Rows[0])
	assert.Equal(t, []any{"Total Delivered", 190}, table.Rows[1])
	assert.Equal(t, []any{"Total Opened", 47}, table.Rows[2])
	assert.Equal(t, []any{"Total Bounced", 6}, table.Rows[3])
	// Rates rounded to two decimals
	assert.Equal(t, []any{"Delivery Rate (%)", 95.0}, table.Rows[4])
	assert.Equal(t, []any{"Open Rate (%)", 24.74}, table.Rows[5])
	assert.Equal(t, []any{"Bounce Rate (%)", 3.0}, table.Rows[6])
}

func TestDailyTable(t *testing.T) {
	rows := []metrics.DailyRow{
		{Day: "2024-01-01", Processed: 10, Delivered: 9, Opened: 3, Bounced: 1, DeliveryRate: 90, OpenRate: 33.333333, BounceRate: 10},
		{Day: "2024-01-02", Processed: 5, Delivered: 5, DeliveryRate: 100},
	}

	table := DailyTable(rows)
	require.Equal(t, []string{
		"processed_date", "processed", "delivered", "open", "bounce",
		"Delivery Rate", "Open Rate", "Bounce Rate",
	}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"2024-01-01", 10, 9, 3, 1, 90.0, 33.33, 10.0}, table.Rows[0])
	assert.Equal(t, []any{"2024-01-02", 5, 5, 0, 0, 100.0, 0.0, 0.0}, table.Rows[1])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, SummaryTable(sampleOverall()))
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8) // header + 7 metric rows

	assert.Equal(t, []string{"Metric", "Value"}, records[0])
	assert.Equal(t, []string{"Total Processed", "200"}, records[1])
	assert.Equal(t, []string{"Open Rate (%)", "24.74"}, records[6])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, SummaryTable(sampleOverall()))
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), SheetName)

	metric, err := f.GetCellValue(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total Processed", metric)

	value, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "200", value)

	rate, err := f.GetCellValue(SheetName, "B7")
	require.NoError(t, err)
	assert.Equal(t, "24.74", rate)
}

func TestFilename(t *testing.T) {
	name := Filename("summary", "xlsx")
	assert.True(t, strings.HasPrefix(name, "email_analytics_summary_"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
}
