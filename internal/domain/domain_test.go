package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseConditionType(t *testing.T) {
	cases := []struct {
		in      string
		want    ConditionType
		wantErr bool
	}{
		{"cold", Cold, false},
		{" HEAT ", Heat, false},
		{"Cold", Cold, false},
		{"normal", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseConditionType(c.in)
		if (err != nil) != c.wantErr {
			t.Fatalf("ParseConditionType(%q) err=%v wantErr=%v", c.in, err, c.wantErr)
		}
		if got != c.want {
			t.Fatalf("ParseConditionType(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestHistoryEntry_JSONFieldNames(t *testing.T) {
	e := HistoryEntry{
		ID:            "1747220400000000000",
		Condition:     Heat,
		Temperature:   25.5,
		NotifiedAt:    time.Date(2025, 5, 14, 11, 0, 0, 0, time.UTC),
		FormattedTime: "2025-05-14 11:00:00",
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "type", "temperature", "timestamp", "formattedTime"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}
	if got["type"] != "heat" || got["timestamp"] != "2025-05-14T11:00:00Z" {
		t.Fatalf("unexpected payload: %s", b)
	}
}

func TestOutcome_OmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Outcome{Status: StatusNormal, Temperature: 15, Message: "ok"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	_ = json.Unmarshal(b, &got)
	if _, ok := got["alertType"]; ok {
		t.Fatalf("alertType should be omitted for normal: %s", b)
	}
	if _, ok := got["notifiedAt"]; ok {
		t.Fatalf("notifiedAt should be omitted when zero: %s", b)
	}
}
