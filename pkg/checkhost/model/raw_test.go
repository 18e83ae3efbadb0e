package model

import (
	"encoding/json"
	"testing"
)

func TestRawNodeResult_Reported(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"null is not reported", `null`, false},
		{"empty value is not reported", ``, false},
		{"array is reported", `[[1, 0.1]]`, true},
		{"error sentinel string counts as reported", `"CHECK ERROR"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawNodeResult(tt.raw).Reported(); got != tt.want {
				t.Errorf("Reported() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRawNodeResult_Entries(t *testing.T) {
	t.Run("array yields entries", func(t *testing.T) {
		entries, ok := RawNodeResult(`[[1, 0.1], [0, 0.2]]`).Entries()
		if !ok || len(entries) != 2 {
			t.Fatalf("Entries() = %v, %v; want 2 entries", entries, ok)
		}
	})
	t.Run("null yields no entries", func(t *testing.T) {
		if _, ok := RawNodeResult(`null`).Entries(); ok {
			t.Error("Entries() ok for null value")
		}
	})
	t.Run("scalar yields no entries", func(t *testing.T) {
		if _, ok := RawNodeResult(`"oops"`).Entries(); ok {
			t.Error("Entries() ok for scalar value")
		}
	})
}

func TestRawReport_Complete(t *testing.T) {
	var report RawReport
	payload := `{"a.node": [[1, 0.1]], "b.node": null}`
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.Complete() {
		t.Error("Complete() = true with a null entry")
	}

	payload = `{"a.node": [[1, 0.1]], "b.node": [[0, 0.2]]}`
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !report.Complete() {
		t.Error("Complete() = false with all entries reported")
	}
}

func TestRawNodeResult_MarshalRoundTrip(t *testing.T) {
	var report RawReport
	payload := `{"a.node":null,"b.node":[[1,0.5]]}`
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again RawReport
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if again["a.node"].Reported() || !again["b.node"].Reported() {
		t.Errorf("round trip changed reported state: %s", out)
	}
}
