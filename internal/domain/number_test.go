package domain

import (
	"encoding/json"
	"testing"
)

func TestNumberJSON(t *testing.T) {
	b, err := json.Marshal(Salary{Currency: "USD", MinValue: NumberOf(90000), MaxValue: Number{}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"currency":"USD","min_value":90000,"max_value":null,"unit":""}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var s Salary
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatal(err)
	}
	if !s.MinValue.Valid || s.MinValue.Float64 != 90000 {
		t.Errorf("MinValue = %+v", s.MinValue)
	}
	if s.MaxValue.Valid {
		t.Errorf("MaxValue should be absent, got %+v", s.MaxValue)
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		in   Number
		want any
	}{
		{Number{}, nil},
		{NumberOf(12), int64(12)},
		{NumberOf(-73.9857), -73.9857},
	}
	for _, tt := range tests {
		got, err := tt.in.Value()
		if err != nil {
			t.Fatalf("Value(%+v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Value(%+v) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}
