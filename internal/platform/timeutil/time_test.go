package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestMarshalJSONUsesMillisUTC(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	tm := NewTime(time.Date(2024, 1, 15, 12, 30, 0, 123456789, loc))

	b, err := json.Marshal(tm)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-01-15T10:30:00.123Z"` {
		t.Errorf("unexpected encoding %s", b)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: `"2024-01-15T10:30:00.000Z"`, want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{in: `"2024-01-15T10:30:00Z"`, want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{in: `"2024-01-15T12:30:00+02:00"`, want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{in: `"yesterday"`, wantErr: true},
		{in: `1705314600`, wantErr: true},
	}
	for _, tt := range tests {
		var got Time
		err := json.Unmarshal([]byte(tt.in), &got)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.in, got.Time, tt.want)
		}
	}
}

func TestUnmarshalJSONNullKeepsValue(t *testing.T) {
	orig := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tm := NewTime(orig)
	if err := json.Unmarshal([]byte("null"), &tm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tm.Equal(orig) {
		t.Errorf("expected %v preserved, got %v", orig, tm.Time)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	type doc struct {
		UpdatedAt Time `json:"updatedAt"`
	}
	in := doc{UpdatedAt: NewTime(time.Date(2024, 1, 15, 10, 30, 0, 5_000_000, time.UTC))}

	b, err := cbor.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]string
	if err := cbor.Unmarshal(b, &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if raw["updatedAt"] != "2024-01-15T10:30:00.005Z" {
		t.Errorf("unexpected cbor text %q", raw["updatedAt"])
	}

	var out doc
	if err := cbor.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.UpdatedAt.Equal(in.UpdatedAt.Time) {
		t.Errorf("round trip mismatch: %v != %v", out.UpdatedAt.Time, in.UpdatedAt.Time)
	}
}

func TestSchemaIsDateTime(t *testing.T) {
	s := Time{}.Schema(nil)
	if s.Type != "string" || s.Format != "date-time" {
		t.Errorf("unexpected schema %+v", s)
	}
}
