package quote

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    Item
		wantErr bool
	}{
		{
			name: "bare string",
			raw:  "  the finding holds  ",
			want: Item{Text: "the finding holds"},
		},
		{
			name: "object with text and pages",
			raw:  map[string]any{"text": "the finding holds", "pages": []any{2.0, 5.0}},
			want: Item{Text: "the finding holds", Pages: []int{2, 5}},
		},
		{
			name: "alternate quote key",
			raw:  map[string]any{"quote": "the finding holds"},
			want: Item{Text: "the finding holds"},
		},
		{
			name: "alternate content key with single page",
			raw:  map[string]any{"content": "the finding holds", "page": 3.0},
			want: Item{Text: "the finding holds", Pages: []int{3}},
		},
		{
			name: "non-integer and non-positive pages dropped",
			raw:  map[string]any{"text": "the finding holds", "pages": []any{0.0, -1.0, 2.5, 4.0}},
			want: Item{Text: "the finding holds", Pages: []int{4}},
		},
		{name: "empty string", raw: "   ", wantErr: true},
		{name: "object without text", raw: map[string]any{"pages": []any{1.0}}, wantErr: true},
		{name: "number", raw: 42.0, wantErr: true},
		{name: "nil", raw: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrNoUsableText) {
					t.Fatalf("expected ErrNoUsableText, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Coerce = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetUnmarshalPreservesOrder(t *testing.T) {
	data := []byte(`{
		"limitations": ["only tested on English corpora"],
		"claims": [
			{"text": "the model generalizes", "pages": [3]},
			42,
			"   "
		],
		"contributions": []
	}`)

	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	wantOrder := []string{"limitations", "claims", "contributions"}
	if !reflect.DeepEqual(s.Order, wantOrder) {
		t.Errorf("Order = %v, want %v", s.Order, wantOrder)
	}
	if n := len(s.Items["claims"]); n != 1 {
		t.Errorf("malformed claim entries not dropped: %d items", n)
	}
	if n := len(s.Dropped); n != 2 {
		t.Fatalf("expected 2 dropped entries, got %d: %v", n, s.Dropped)
	}
	if s.Dropped[0].Category != "claims" || s.Dropped[0].Value != "42" {
		t.Errorf("dropped[0] = %+v", s.Dropped[0])
	}
	if got := s.Items["claims"][0]; got.Text != "the model generalizes" || !reflect.DeepEqual(got.Pages, []int{3}) {
		t.Errorf("claims[0] = %+v", got)
	}
	if items, ok := s.Items["contributions"]; !ok || len(items) != 0 {
		t.Errorf("empty category lost: %v, %v", items, ok)
	}
}

func TestSetUnmarshalNonListCategory(t *testing.T) {
	// A category whose value is not a list is recorded and skipped;
	// the rest of the payload still decodes.
	data := []byte(`{
		"claims": "not a list",
		"evidence": ["measured on three benchmarks"]
	}`)

	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(s.Order, []string{"claims", "evidence"}) {
		t.Errorf("Order = %v", s.Order)
	}
	if len(s.Items["claims"]) != 0 {
		t.Errorf("claims items = %v", s.Items["claims"])
	}
	if len(s.Items["evidence"]) != 1 {
		t.Errorf("evidence items = %v", s.Items["evidence"])
	}
	if len(s.Dropped) != 1 || s.Dropped[0].Category != "claims" {
		t.Fatalf("Dropped = %v", s.Dropped)
	}
}

func TestSetMarshalKeepsOrderAndEmptyLists(t *testing.T) {
	var s Set
	s.Add("evidence", Item{Text: "measured on three benchmarks"})
	s.EnsureCategory("claims")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"evidence":[{"text":"measured on three benchmarks"}],"claims":[]}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestSetRoundTrip(t *testing.T) {
	var s Set
	s.Add("b", Item{Text: "second category first", Pages: []int{1}})
	s.Add("a", Item{Text: "first category second"})
	s.EnsureCategory("z")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Set
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Order, s.Order) {
		t.Errorf("order changed across round trip: %v vs %v", back.Order, s.Order)
	}
	if !reflect.DeepEqual(back.Items["b"], s.Items["b"]) {
		t.Errorf("items changed across round trip: %+v vs %+v", back.Items["b"], s.Items["b"])
	}
}
