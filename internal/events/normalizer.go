package events

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabzkie30/sendgrid-email-automation/internal/pkg/logger"
)

// Required and optional column names, matched against headers after
// lowercasing and whitespace trimming.
const (
	colEvent     = "event"
	colMessageID = "message_id"
	colTimestamp = "processed"
	colSubject   = "subject"
	colEmail     = "email"
)

var requiredColumns = []string{colEvent, colMessageID, colTimestamp}

// SchemaError reports required columns missing from an uploaded file.
// No per-row processing happens once this is raised.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// columnMapping holds resolved column indices. Optional columns that are
// absent stay at -1.
type columnMapping struct {
	event     int
	messageID int
	timestamp int
	subject   int
	email     int
}

// mapColumns resolves a header row to column indices. Header names are
// matched case/whitespace-insensitively; the first occurrence of a
// duplicated header wins.
func mapColumns(header []string) (*columnMapping, *SchemaError) {
	m := &columnMapping{event: -1, messageID: -1, timestamp: -1, subject: -1, email: -1}

	for i, h := range header {
		normalized := strings.ToLower(strings.TrimSpace(h))
		normalized = strings.Trim(normalized, "\"'")

		switch normalized {
		case colEvent:
			if m.event < 0 {
				m.event = i
			}
		case colMessageID:
			if m.messageID < 0 {
				m.messageID = i
			}
		case colTimestamp:
			if m.timestamp < 0 {
				m.timestamp = i
			}
		case colSubject:
			if m.subject < 0 {
				m.subject = i
			}
		case colEmail:
			if m.email < 0 {
				m.email = i
			}
		}
	}

	var missing []string
	if m.event < 0 {
		missing = append(missing, colEvent)
	}
	if m.messageID < 0 {
		missing = append(missing, colMessageID)
	}
	if m.timestamp < 0 {
		missing = append(missing, colTimestamp)
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return m, nil
}

// timestampLayouts are tried in order. The "processed" column carries the
// event's own timestamp for every row, whatever the row's event kind is.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// parseTimestamp parses a timestamp string permissively against the known
// layouts.
func parseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", ts)
}

// NormalizeResult is the output of NormalizeCSV: the retained events plus a
// count of rows dropped for an unrecognized kind or unparseable timestamp.
type NormalizeResult struct {
	Events  []Event
	Skipped int
}

// NormalizeCSV reads a row-oriented events file and produces normalized
// events. It fails with *SchemaError when a required column is absent from
// the header; individual bad rows are dropped silently and only counted.
func NormalizeCSV(r io.Reader) (*NormalizeResult, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Missing: requiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	mapping, schemaErr := mapColumns(header)
	if schemaErr != nil {
		return nil, schemaErr
	}

	res := &NormalizeResult{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Structurally broken row, same treatment as a bad value
			res.Skipped++
			continue
		}

		ev, ok := normalizeRow(row, mapping)
		if !ok {
			res.Skipped++
			continue
		}
		res.Events = append(res.Events, ev)
	}

	if res.Skipped > 0 {
		logger.Debug("dropped rows during normalization", "skipped", res.Skipped, "kept", len(res.Events))
	}
	return res, nil
}

// normalizeRow converts one CSV row to an Event. Returns false when the row
// must be dropped: unrecognized event kind, missing message id, or a
// timestamp that fails to parse.
func normalizeRow(row []string, m *columnMapping) (Event, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(field(row, m.event))))
	if !kind.Valid() {
		return Event{}, false
	}

	messageID := strings.TrimSpace(field(row, m.messageID))
	if messageID == "" {
		return Event{}, false
	}

	ts, err := parseTimestamp(field(row, m.timestamp))
	if err != nil {
		return Event{}, false
	}

	return Event{
		Kind:      kind,
		MessageID: messageID,
		Timestamp: ts,
		Day:       DayOf(ts),
		Subject:   strings.TrimSpace(field(row, m.subject)),
		Recipient: strings.TrimSpace(field(row, m.email)),
	}, true
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
