// Package quote models extracted quotations and their ingestion from
// JSON payloads. Upstream extraction emits loosely-shaped items (bare
// strings, or objects with several alternate key spellings); this
// package resolves them into one canonical Item at the boundary so the
// rest of the pipeline never probes shapes.
package quote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoUsableText marks a payload item with no non-empty quote text.
var ErrNoUsableText = errors.New("quote payload has no usable text")

// Item is one canonical quotation: its raw text and optional 1-based
// page hints. Hints are advisory; validation against the page count
// happens at match time.
type Item struct {
	Text  string `json:"text"`
	Pages []int  `json:"pages,omitempty"`
}

// Coerce resolves a raw decoded JSON value into an Item. Accepted
// shapes: a non-empty string, or an object carrying text under "text",
// "quote" or "content" with optional pages under "pages" (list) or
// "page" (single number). Non-positive or non-integer page entries are
// discarded. Anything else returns ErrNoUsableText.
func Coerce(raw any) (Item, error) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return Item{}, ErrNoUsableText
		}
		return Item{Text: strings.TrimSpace(v)}, nil
	case map[string]any:
		text := firstString(v, "text", "quote", "content")
		if strings.TrimSpace(text) == "" {
			return Item{}, ErrNoUsableText
		}
		item := Item{Text: strings.TrimSpace(text)}
		pagesVal, ok := v["pages"]
		if !ok {
			pagesVal = v["page"]
		}
		item.Pages = coercePages(pagesVal)
		return item, nil
	default:
		return Item{}, ErrNoUsableText
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// coercePages keeps positive whole numbers only. JSON numbers decode
// as float64; values with a fractional part are not page numbers.
func coercePages(raw any) []int {
	var pages []int
	appendPage := func(f float64) {
		if f > 0 && f == float64(int(f)) {
			pages = append(pages, int(f))
		}
	}
	switch v := raw.(type) {
	case float64:
		appendPage(v)
	case []any:
		for _, entry := range v {
			if f, ok := entry.(float64); ok {
				appendPage(f)
			}
		}
	}
	return pages
}

// Set is an ordered mapping from category name to its quote items.
// Category order is preserved through JSON round trips so summaries
// stay stable across re-runs.
type Set struct {
	Order []string
	Items map[string][]Item

	// Dropped records payload entries discarded during decoding, so
	// the caller can warn about them. Never serialized back out.
	Dropped []Dropped
}

// Dropped is one discarded payload entry: the category it appeared
// under and a short rendering of the raw value.
type Dropped struct {
	Category string
	Value    string
}

// Add appends an item to a category, registering the category on first
// use.
func (s *Set) Add(category string, item Item) {
	if s.Items == nil {
		s.Items = make(map[string][]Item)
	}
	if _, ok := s.Items[category]; !ok {
		s.Order = append(s.Order, category)
	}
	s.Items[category] = append(s.Items[category], item)
}

// EnsureCategory registers an empty category if it is not present yet,
// so categories configured with zero extracted quotes still appear in
// the outputs.
func (s *Set) EnsureCategory(category string) {
	if s.Items == nil {
		s.Items = make(map[string][]Item)
	}
	if _, ok := s.Items[category]; !ok {
		s.Order = append(s.Order, category)
		s.Items[category] = nil
	}
}

// MarshalJSON emits categories in order.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range s.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		items := s.Items[category]
		if items == nil {
			items = []Item{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a category object while preserving key order,
// coercing every list entry through Coerce. Malformed entries and
// non-list category values are recorded on Dropped rather than
// failing the payload, so one bad entry never loses a document.
func (s *Set) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("quotes payload is not an object")
	}

	*s = Set{Items: make(map[string][]Item)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
		s.EnsureCategory(category)

		var rawItems []any
		if err := json.Unmarshal(value, &rawItems); err != nil {
			s.drop(category, string(value))
			continue
		}
		for _, raw := range rawItems {
			item, err := Coerce(raw)
			if err != nil {
				s.drop(category, raw)
				continue
			}
			s.Add(category, item)
		}
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// drop records a discarded entry with a bounded preview of its value.
func (s *Set) drop(category string, value any) {
	const previewLen = 60
	rendered := fmt.Sprintf("%v", value)
	if runes := []rune(rendered); len(runes) > previewLen {
		rendered = string(runes[:previewLen])
	}
	s.Dropped = append(s.Dropped, Dropped{Category: category, Value: rendered})
}
