package pricing_test

import (
	"math/rand"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pricecompare/internal/model"
	"pricecompare/internal/pricing"
)

func TestCompareWidget(t *testing.T) {
	c := qt.New(t)

	quotes := pricing.Compare(widget())

	c.Assert(quotes, qt.HasLen, 2)
	c.Assert(quotes[0].Retailer, qt.Equals, "RetailerA")
	c.Assert(quotes[0].Price, qt.Equals, 8.0)
	c.Assert(quotes[0].Best, qt.IsTrue)
	c.Assert(quotes[1].Retailer, qt.Equals, "RetailerB")
	c.Assert(quotes[1].Price, qt.Equals, 9.0)
	c.Assert(quotes[1].Best, qt.IsFalse)
}

func TestCompareEmptyIsNotNil(t *testing.T) {
	c := qt.New(t)
	quotes := pricing.Compare(nil)
	c.Assert(quotes, qt.IsNotNil)
	c.Assert(quotes, qt.HasLen, 0)

	_, ok := pricing.Lowest(quotes)
	c.Assert(ok, qt.IsFalse)
	_, ok = pricing.BestDeal(quotes)
	c.Assert(ok, qt.IsFalse)
}

func TestCompareTiesBrokenByRetailerName(t *testing.T) {
	c := qt.New(t)
	quotes := pricing.Compare([]model.PriceObservation{
		obs("Zeta", 5, t0),
		obs("Alpha", 5, t0),
		obs("Mid", 5, t0),
	})
	c.Assert(quotes, qt.HasLen, 3)
	c.Assert([]string{quotes[0].Retailer, quotes[1].Retailer, quotes[2].Retailer},
		qt.DeepEquals, []string{"Alpha", "Mid", "Zeta"})
	c.Assert(quotes[0].Best, qt.IsTrue)
}

func TestCompareUsesMostRecentNotLowest(t *testing.T) {
	c := qt.New(t)
	quotes := pricing.Compare([]model.PriceObservation{
		obs("eBay", 3, t0),
		obs("eBay", 30, t0.Add(time.Minute)),
	})
	c.Assert(quotes, qt.HasLen, 1)
	c.Assert(quotes[0].Price, qt.Equals, 30.0)
}

func TestCompareSameTimestampLaterInsertWins(t *testing.T) {
	c := qt.New(t)
	first := obs("eBay", 3, t0)
	second := obs("eBay", 4, t0)
	first.ID = primitive.ObjectID{0, 0, 0, 1}
	second.ID = primitive.ObjectID{0, 0, 0, 2}

	quotes := pricing.Compare([]model.PriceObservation{second, first})
	c.Assert(quotes[0].Price, qt.Equals, 4.0)
}

func TestCompareSortedProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	retailers := []string{"A", "B", "C", "D", "E", "F"}
	for run := 0; run < 200; run++ {
		var observations []model.PriceObservation
		n := r.Intn(30)
		for i := 0; i < n; i++ {
			at := t0.Add(time.Duration(r.Intn(1000)) * time.Minute)
			price := float64(r.Intn(5000)) / 100
			observations = append(observations, obs(retailers[r.Intn(len(retailers))], price, at))
		}

		quotes := pricing.Compare(observations)

		c := qt.New(t)
		seen := map[string]bool{}
		for i, q := range quotes {
			c.Assert(seen[q.Retailer], qt.IsFalse, qt.Commentf("retailer %s listed twice", q.Retailer))
			seen[q.Retailer] = true
			c.Assert(q.Best, qt.Equals, i == 0)
			c.Assert(quotes[0].Price <= q.Price, qt.IsTrue)
			if i > 0 {
				c.Assert(quotes[i-1].Price <= q.Price, qt.IsTrue)
			}
		}
		if len(quotes) > 0 {
			lowest, ok := pricing.Lowest(quotes)
			c.Assert(ok, qt.IsTrue)
			c.Assert(lowest.Retailer, qt.Equals, quotes[0].Retailer)
		}
	}
}

func TestBestDeal(t *testing.T) {
	c := qt.New(t)
	a := obs("A", 80, t0)
	a.DiscountPercent = 20
	b := obs("B", 60, t0)
	b.DiscountPercent = 20
	d := obs("D", 50, t0)
	d.DiscountPercent = 5

	best, ok := pricing.BestDeal(pricing.Compare([]model.PriceObservation{a, b, d}))
	c.Assert(ok, qt.IsTrue)
	c.Assert(best.Retailer, qt.Equals, "B")
}

func TestAveragePrice(t *testing.T) {
	c := qt.New(t)
	avg, ok := pricing.AveragePrice(pricing.Compare(widget()))
	c.Assert(ok, qt.IsTrue)
	c.Assert(avg, qt.Equals, 8.5)
}
