package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WireInt decodes an integer that upstream services may serialize as a
// number, a float, or a quoted string. Remote payloads are untyped at
// the wire, so quantities get coerced instead of trusted.
type WireInt int

// UnmarshalJSON implements json.Unmarshaler.
func (w *WireInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*w = 0
		return nil
	}

	raw := string(trimmed)
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("coerce %s to int: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*w = WireInt(n)
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("coerce %s to int: %w", string(data), err)
	}
	*w = WireInt(int(f))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (w WireInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(w))
}

// Int returns the plain integer value.
func (w WireInt) Int() int {
	return int(w)
}
