package events

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeCSVSchemaError(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{"no event column", "message_id,processed\nM1,2024-01-01 10:00:00\n", []string{"event"}},
		{"no message_id column", "event,processed\nprocessed,2024-01-01 10:00:00\n", []string{"message_id"}},
		{"no timestamp column", "event,message_id\nprocessed,M1\n", []string{"processed"}},
		{"empty file", "", []string{"event", "message_id", "processed"}},
		{"unrelated headers only", "foo,bar\n1,2\n", []string{"event", "message_id", "processed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeCSV(strings.NewReader(tt.input))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("NormalizeCSV() error = %v, want *SchemaError", err)
			}
			if len(schemaErr.Missing) != len(tt.missing) {
				t.Fatalf("Missing = %v, want %v", schemaErr.Missing, tt.missing)
			}
			for i, col := range tt.missing {
				if schemaErr.Missing[i] != col {
					t.Errorf("Missing[%d] = %q, want %q", i, schemaErr.Missing[i], col)
				}
			}
		})
	}
}

func TestNormalizeCSVHeaderInsensitivity(t *testing.T) {
	// Mixed case and padded headers must still resolve
	input := " Event , MESSAGE_ID ,Processed,SUBJECT, Email \n" +
		"processed,M1,2024-03-01 08:00:00,Hello,user@example.com\n"

	res, err := NormalizeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NormalizeCSV() error = %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	ev := res.Events[0]
	if ev.MessageID != "M1" || ev.Subject != "Hello" || ev.Recipient != "user@example.com" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Day != "2024-03-01" {
		t.Errorf("Day = %s, want 2024-03-01", ev.Day)
	}
}

func TestNormalizeCSVRowSkipping(t *testing.T) {
	input := "event,message_id,processed\n" +
		"processed,M1,2024-01-01 10:00:00\n" + // kept
		"click,M1,2024-01-01 10:01:00\n" + // unrecognized kind
		"dropped,M2,2024-01-01 10:02:00\n" + // unrecognized kind
		"delivered,M1,not-a-timestamp\n" + // bad timestamp
		"delivered,,2024-01-01 10:03:00\n" + // missing message id
		"open,M1,2024-01-01 10:04:00\n" // kept

	res, err := NormalizeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NormalizeCSV() error = %v", err)
	}
	if len(res.Events) != 2 {
		t.Errorf("got %d events, want 2", len(res.Events))
	}
	if res.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", res.Skipped)
	}
}

func TestNormalizeCSVKindCase(t *testing.T) {
	input := "event,message_id,processed\n" +
		"Processed,M1,2024-01-01 10:00:00\n" +
		"DELIVERED,M1,2024-01-01 10:05:00\n"

	res, err := NormalizeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NormalizeCSV() error = %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(res.Events))
	}
	if res.Events[0].Kind != KindProcessed || res.Events[1].Kind != KindDelivered {
		t.Errorf("kinds = %s, %s", res.Events[0].Kind, res.Events[1].Kind)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	tests := []struct {
		input   string
		wantDay Day
		wantErr bool
	}{
		{"2024-01-15 10:30:00", "2024-01-15", false},
		{"2024-01-15T10:30:00Z", "2024-01-15", false},
		{"2024-01-15T10:30:00", "2024-01-15", false},
		{"2024-01-15 10:30", "2024-01-15", false},
		{"2024-01-15", "2024-01-15", false},
		{"01/15/2024 10:30:00", "2024-01-15", false},
		{"01/15/2024", "2024-01-15", false},
		{"", "", true},
		{"yesterday", "", true},
		{"2024-13-45", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ts, err := parseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseTimestamp(%q) = %v, want error", tt.input, ts)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimestamp(%q) error = %v", tt.input, err)
			}
			if got := DayOf(ts); got != tt.wantDay {
				t.Errorf("DayOf = %s, want %s", got, tt.wantDay)
			}
		})
	}
}

func TestNormalizeCSVShortRows(t *testing.T) {
	// Rows narrower than the header must not panic; missing cells read as
	// empty and the row is dropped for its unparseable timestamp.
	input := "event,message_id,processed,subject\n" +
		"processed,M1\n" +
		"processed,M2,2024-01-01 10:00:00\n"

	res, err := NormalizeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NormalizeCSV() error = %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].MessageID != "M2" {
		t.Errorf("events = %+v, want single M2", res.Events)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
}
