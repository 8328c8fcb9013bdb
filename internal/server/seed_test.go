package server

import (
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	"pricecompare/internal/model"
)

func TestSeed(t *testing.T) {
	c := qt.New(t)
	db := newMemStore()
	s := newTestServer(db, nil)

	summary, err := s.Seed(context.Background(), strings.NewReader(`{
		"products": [
			{
				"name": "Widget",
				"category": "gadgets",
				"tags": ["small", "blue"],
				"prices": [
					{"retailer": "RetailerA", "price": 10, "original_price": 12.5, "url": "https://a.example/w"},
					{"seller": "RetailerB", "value": 9, "in_stock": false},
					{"retailer": "RetailerC", "price": 0}
				]
			},
			{"title": "Gizmo", "image": "https://img.example/g.png", "tags": "x, y ,", "price": 5, "link": "https://g.example"},
			{"description": "nameless"}
		]
	}`))
	c.Assert(err, qt.IsNil)
	c.Assert(summary, qt.Equals, SeedSummary{Products: 2, Observations: 3, Skipped: 2})

	c.Assert(db.products, qt.HasLen, 2)
	c.Assert(db.products[0].Tags, qt.DeepEquals, []string{"small", "blue"})
	gizmo := db.products[1]
	c.Assert(gizmo.Name, qt.Equals, "Gizmo")
	c.Assert(gizmo.Category, qt.Equals, defaultSeedCategory)
	c.Assert(gizmo.ImageURL, qt.Equals, "https://img.example/g.png")
	c.Assert(gizmo.Tags, qt.DeepEquals, []string{"x", "y"})

	byRetailer := map[string]model.PriceObservation{}
	for _, o := range db.observations {
		byRetailer[o.Retailer] = o
	}
	c.Assert(byRetailer["RetailerA"].DiscountPercent, qt.Equals, 20.0)
	c.Assert(byRetailer["RetailerB"].InStock, qt.IsFalse)
	c.Assert(byRetailer["RetailerB"].Price, qt.Equals, 9.0)
	c.Assert(byRetailer[defaultSeedRetailer].URL, qt.Equals, "https://g.example")
	c.Assert(byRetailer[defaultSeedRetailer].ObservedAt.Equal(testNow), qt.IsTrue)
}

func TestSeedList(t *testing.T) {
	c := qt.New(t)
	db := newMemStore()
	s := newTestServer(db, nil)

	summary, err := s.Seed(context.Background(), strings.NewReader(`
		[{"name": "A", "category": "c"}, {"name": "B", "category": "c", "prices": [{"retailer": "R", "price": 1.005}]}]`))
	c.Assert(err, qt.IsNil)
	c.Assert(summary, qt.Equals, SeedSummary{Products: 2, Observations: 1})
}

func TestSeedMalformed(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(newMemStore(), nil)

	for _, in := range []string{`{"products": 3}`, `[1, 2]`, `nope`} {
		_, err := s.Seed(context.Background(), strings.NewReader(in))
		c.Assert(errors.Is(err, model.ErrValidation), qt.IsTrue, qt.Commentf("input: %s", in))
	}
}
