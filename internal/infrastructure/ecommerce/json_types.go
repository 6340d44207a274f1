package ecommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/orderhub/backend/internal/domain/integration"
)

// Platforms disagree on whether ids, quantities and totals are JSON numbers or strings,
// and some send both depending on plugin version. The Flex types accept either form.

var jsonNull = []byte("null")

// FlexString accepts a JSON string, number or null
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// String returns the trimmed value
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// maxQuantity bounds line and order quantities to the INTEGER quantity column
const maxQuantity = math.MaxInt32

// FlexInt accepts a JSON number, numeric string or null. Fractions are
// truncated; NaN, infinities and values beyond ±maxQuantity are rejected.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (i *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s.String() == "" {
		*i = 0
		return nil
	}
	if n, err := strconv.ParseInt(s.String(), 10, 64); err == nil {
		if n > maxQuantity || n < -maxQuantity {
			return fmt.Errorf("flex int: %q out of range", s.String())
		}
		*i = FlexInt(n)
		return nil
	}
	f, err := strconv.ParseFloat(s.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("flex int: invalid value %q", s.String())
	}
	if f > maxQuantity || f < -maxQuantity {
		return fmt.Errorf("flex int: %q out of range", s.String())
	}
	*i = FlexInt(int(f))
	return nil
}

// Int returns the value as int
func (i FlexInt) Int() int {
	return int(i)
}

// FlexDecimal accepts a JSON number, numeric string, empty string or null
type FlexDecimal struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler
func (d *FlexDecimal) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s.String() == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(s.String())
	if err != nil {
		return fmt.Errorf("flex decimal: invalid value %q", s.String())
	}
	d.Decimal = v
	return nil
}

// Quantity truncates d to a whole quantity, rejecting values beyond ±maxQuantity
func (d FlexDecimal) Quantity() (int, error) {
	if d.Abs().GreaterThan(decimal.NewFromInt(maxQuantity)) {
		return 0, fmt.Errorf("%w: quantity %s out of range", integration.ErrPayloadMalformed, d.String())
	}
	return int(d.IntPart()), nil
}
