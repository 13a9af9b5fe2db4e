package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"jobpostings-etl/internal/domain"
)

// Doc is a parsed posting with total lookups: a missing key at any depth,
// or a non-object where an object was expected, reads as absent.
type Doc struct {
	root gjson.Result
}

// ParseDoc checks that payload is a JSON object.
func ParseDoc(payload string) (Doc, error) {
	if !gjson.Valid(payload) {
		return Doc{}, ErrInvalidJSON
	}
	root := gjson.Parse(payload)
	if !root.IsObject() {
		return Doc{}, ErrNotObject
	}
	return Doc{root: root}, nil
}

// String returns the text at path, or "" when absent or null. Non-string
// values come back as their JSON text.
func (d Doc) String(path string) string {
	r := d.root.Get(path)
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

// Number returns the numeric value at path. JSON numbers and numeric strings
// are accepted; absent, null and blank strings are absent values. Anything
// else is reported through ok=false with the raw text.
func (d Doc) Number(path string) (n domain.Number, raw string, ok bool) {
	r := d.root.Get(path)
	switch r.Type {
	case gjson.Null:
		return domain.Number{}, "", true
	case gjson.Number:
		return domain.NumberOf(r.Num), r.Raw, true
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return domain.Number{}, r.Raw, true
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Number{}, r.Raw, false
		}
		return domain.NumberOf(v), r.Raw, true
	default:
		return domain.Number{}, r.Raw, false
	}
}
