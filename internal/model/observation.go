package model

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"math"
	"strings"
	"time"
)

type PriceObservation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID       primitive.ObjectID `bson:"product_id" json:"product_id"`
	Retailer        string             `bson:"retailer" json:"retailer"`
	Price           float64            `bson:"price" json:"price"`
	OriginalPrice   *float64           `bson:"original_price,omitempty" json:"original_price"`
	DiscountPercent float64            `bson:"discount_percent" json:"discount_percent"`
	URL             string             `bson:"url,omitempty" json:"url"`
	InStock         bool               `bson:"in_stock" json:"in_stock"`
	Rating          *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewCount     *int               `bson:"review_count,omitempty" json:"review_count,omitempty"`
	ObservedAt      time.Time          `bson:"observed_at" json:"timestamp"`
}

// Normalize trims the retailer name and derives the discount, then validates.
func (o *PriceObservation) Normalize() error {
	o.Retailer = strings.TrimSpace(o.Retailer)
	if o.Retailer == "" {
		return errors.Wrap(ErrValidation, "retailer is empty")
	}
	if !validAmount(o.Price) {
		return errors.Wrapf(ErrValidation, "malformed price: %v", o.Price)
	}
	if o.OriginalPrice != nil && !validAmount(*o.OriginalPrice) {
		return errors.Wrapf(ErrValidation, "malformed original price: %v", *o.OriginalPrice)
	}
	o.Price = RoundCents(o.Price)
	o.DiscountPercent = DiscountPercent(o.Price, o.OriginalPrice)
	return nil
}

func validAmount(f float64) bool {
	return f >= 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func RoundCents(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

// DiscountPercent is (original - price) / original * 100 rounded to two decimals,
// zero when there is no usable original price.
func DiscountPercent(price float64, original *float64) float64 {
	if original == nil || *original <= 0 {
		return 0
	}
	o := decimal.NewFromFloat(*original)
	d := o.Sub(decimal.NewFromFloat(price)).Div(o).Mul(decimal.NewFromInt(100)).Round(2)
	v, _ := d.Float64()
	return v
}
