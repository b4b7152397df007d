package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dimension is a pixel dimension that tracks whether it was supplied at all.
// Callers hand dimensions over as numbers or numeric strings; a string that
// fails to parse coerces to the NaN sentinel rather than being rejected, so
// malformed input flows through to the built URL where the service rejects it.
type Dimension struct {
	value float64
	set   bool
}

// Px returns a Dimension holding the given pixel value.
func Px(v float64) Dimension {
	return Dimension{value: v, set: true}
}

// NaN returns the not-a-number sentinel dimension.
func NaN() Dimension {
	return Dimension{value: math.NaN(), set: true}
}

// ParseDimension parses a base-10 integer dimension string.
// Leading/trailing whitespace is tolerated; anything else is an error.
func ParseDimension(s string) (Dimension, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("invalid dimension %q: %w", s, err)
	}
	return Px(float64(n)), nil
}

// CoerceDimension converts a string to a Dimension, mapping parse failure to
// the NaN sentinel. An empty string means the dimension was not supplied.
func CoerceDimension(s string) Dimension {
	if strings.TrimSpace(s) == "" {
		return Dimension{}
	}
	d, err := ParseDimension(s)
	if err != nil {
		return NaN()
	}
	return d
}

// IsSet reports whether the dimension was supplied, valid or not.
func (d Dimension) IsSet() bool { return d.set }

// Valid reports whether the dimension holds a finite value.
func (d Dimension) Valid() bool {
	return d.set && !math.IsNaN(d.value) && !math.IsInf(d.value, 0)
}

// Value returns the raw value. Zero when unset.
func (d Dimension) Value() float64 { return d.value }

// Int returns the value truncated to an integer. Zero when unset or invalid.
func (d Dimension) Int() int {
	if !d.Valid() {
		return 0
	}
	return int(d.value)
}

// String formats the dimension for URL parameters. NaN formats as "NaN".
func (d Dimension) String() string {
	if !d.set {
		return ""
	}
	if math.IsNaN(d.value) {
		return "NaN"
	}
	if d.value == math.Trunc(d.value) && !math.IsInf(d.value, 0) {
		return strconv.FormatInt(int64(d.value), 10)
	}
	return strconv.FormatFloat(d.value, 'f', -1, 64)
}

// MarshalJSON encodes a valid dimension as a number and the sentinel as "NaN".
func (d Dimension) MarshalJSON() ([]byte, error) {
	if !d.set {
		return []byte("null"), nil
	}
	if !d.Valid() {
		return json.Marshal(d.String())
	}
	return json.Marshal(d.value)
}

// UnmarshalJSON accepts a number, a numeric string, or null.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = Dimension{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = CoerceDimension(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Px(v)
	return nil
}
