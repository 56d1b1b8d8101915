package numeric

import (
	"bytes"
	"encoding/json"
)

// Amount is a float64 that decodes leniently from JSON: numbers, numeric
// strings, null and anything malformed (which becomes 0). Decoding never fails.
type Amount float64

// Float64 returns the finite value of a.
func (a Amount) Float64() float64 { return Finite(float64(a)) }

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(decodeLenient(data))
	return nil
}

// MarshalJSON encodes a non-finite Amount as 0 instead of failing.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Float64())
}

// Count is an integer quantity that decodes leniently from JSON. Fractional
// inputs are truncated, malformed ones become 0.
type Count int

// Int returns c as an int.
func (c Count) Int() int { return int(c) }

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count(Int(decodeLenient(data)))
	return nil
}

func decodeLenient(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		return Float(s)
	}
	return Float(json.Number(data))
}
