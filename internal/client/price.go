package client

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var priceReplacer = strings.NewReplacer("$", "", "USD", "", ",", "", " ", "", "\u00a0", "")

// ParsePrice turns a retailer price string such as "$1,299.99" into an amount rounded
// to cents. Ranges like "$10.00 - $12.00" yield the lower bound.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "-"); i > 0 {
		s = s[:i]
	}
	s = priceReplacer.Replace(s)
	if s == "" {
		return 0, errors.New("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid price: %s", s)
	}
	if d.IsNegative() {
		return 0, errors.Errorf("negative price: %s", s)
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}

// flexNumber decodes the number shapes returned by retailer APIs: a JSON number, a
// string, or an object carrying one of them.
type flexNumber struct {
	Value float64
	Valid bool
}

func (p *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if v, err := ParsePrice(s); err == nil {
			p.Value, p.Valid = v, true
		}
		return nil
	case '{':
		var obj struct {
			Value     *flexNumber `json:"value"`
			Extracted *flexNumber `json:"extracted"`
			Raw       *flexNumber `json:"raw"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		for _, c := range []*flexNumber{obj.Value, obj.Extracted, obj.Raw} {
			if c != nil && c.Valid {
				*p = *c
				return nil
			}
		}
		return nil
	default:
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return errors.Wrapf(err, "invalid price: %s", b)
		}
		if !d.IsNegative() {
			p.Value, _ = d.Round(2).Float64()
			p.Valid = true
		}
		return nil
	}
}

func (p flexNumber) ptr() *float64 {
	if !p.Valid || p.Value <= 0 {
		return nil
	}
	v := p.Value
	return &v
}
