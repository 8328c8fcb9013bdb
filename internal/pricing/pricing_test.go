package pricing_test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pricecompare/internal/model"
)

var (
	t0        = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	productID = primitive.NewObjectID()
)

func obs(retailer string, price float64, at time.Time) model.PriceObservation {
	return model.PriceObservation{
		ID:         primitive.NewObjectIDFromTimestamp(at),
		ProductID:  productID,
		Retailer:   retailer,
		Price:      price,
		InStock:    true,
		ObservedAt: at,
	}
}

// widget is the {RetailerA: $10 at t1, RetailerA: $8 at t2, RetailerB: $9 at t3} product.
func widget() []model.PriceObservation {
	return []model.PriceObservation{
		obs("RetailerA", 10, t0),
		obs("RetailerA", 8, t0.Add(time.Hour)),
		obs("RetailerB", 9, t0.Add(2*time.Hour)),
	}
}
