package client

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "$29.99", want: 29.99},
		{in: "$1,299.99", want: 1299.99},
		{in: " 12 ", want: 12},
		{in: "USD 5.005", want: 5.01},
		{in: "$10.00 - $12.00", want: 10},
		{in: "", wantErr: true},
		{in: "$", wantErr: true},
		{in: "free", wantErr: true},
		{in: "-5", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			c := qt.New(t)
			got, err := ParsePrice(test.in)
			if test.wantErr {
				c.Assert(err, qt.IsNotNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, test.want)
		})
	}
}

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  float64
		valid bool
	}{
		{name: "number", in: `12.5`, want: 12.5, valid: true},
		{name: "string", in: `"$1,000"`, want: 1000, valid: true},
		{name: "object value", in: `{"value": "19.99", "currency": "USD"}`, want: 19.99, valid: true},
		{name: "object raw", in: `{"raw": "$7.25"}`, want: 7.25, valid: true},
		{name: "null", in: `null`},
		{name: "unparseable string", in: `"call for price"`},
		{name: "empty object", in: `{}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			var n flexNumber
			err := json.Unmarshal([]byte(test.in), &n)
			c.Assert(err, qt.IsNil)
			c.Assert(n.Valid, qt.Equals, test.valid)
			c.Assert(n.Value, qt.Equals, test.want)
		})
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  Just text &amp; more ", want: "Just text & more"},
		{name: "paragraphs", in: "<p>First   line</p><p>Second <b>bold</b> line</p>", want: "First line\nSecond bold line"},
		{name: "breaks", in: "<div>a<br>b</div>", want: "a\nb"},
		{name: "list", in: "<ul><li>one</li><li>two</li></ul>", want: "one\ntwo"},
		{name: "document", in: "<html><head><title>x</title></head><body><p>body only</p></body></html>", want: "body only"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			got, err := HTMLToText(test.in)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, test.want)
		})
	}
}
