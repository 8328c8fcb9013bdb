package model

import (
	"encoding/json"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"math"
	"strings"
	"time"
)

type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeRetailer ScopeKind = "retailer"
)

// AlertScope is either Global, matching the lowest price across retailers,
// or RetailerScoped, matching a single retailer's current price.
type AlertScope struct {
	Kind     ScopeKind `bson:"kind" json:"kind"`
	Retailer string    `bson:"retailer,omitempty" json:"retailer,omitempty"`
}

func GlobalScope() AlertScope {
	return AlertScope{Kind: ScopeGlobal}
}

func RetailerScope(retailer string) AlertScope {
	return AlertScope{Kind: ScopeRetailer, Retailer: retailer}
}

// ScopeFor maps the optional target_retailer field onto a scope. Absent, empty and
// whitespace-only values are all Global.
func ScopeFor(targetRetailer *string) AlertScope {
	if targetRetailer == nil {
		return GlobalScope()
	}
	r := strings.TrimSpace(*targetRetailer)
	if r == "" {
		return GlobalScope()
	}
	return RetailerScope(r)
}

// TargetRetailer is the inverse of ScopeFor.
func (s AlertScope) TargetRetailer() *string {
	if s.Kind != ScopeRetailer {
		return nil
	}
	r := s.Retailer
	return &r
}

type PriceAlert struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ProductID      primitive.ObjectID `bson:"product_id"`
	PriceThreshold float64            `bson:"price_threshold"`
	Scope          AlertScope         `bson:"scope"`
	IsActive       bool               `bson:"is_active"`
	Triggered      bool               `bson:"triggered"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
	TriggeredAt    *time.Time         `bson:"triggered_at,omitempty"`
}

type priceAlertJSON struct {
	ID             primitive.ObjectID `json:"id"`
	ProductID      primitive.ObjectID `json:"product_id"`
	PriceThreshold float64            `json:"price_threshold"`
	TargetRetailer *string            `json:"target_retailer"`
	Scope          AlertScope         `json:"scope"`
	IsActive       bool               `json:"is_active"`
	Triggered      bool               `json:"triggered"`
	CreatedAt      time.Time          `json:"created_at"`
	TriggeredAt    *time.Time         `json:"triggered_at"`
}

func (a PriceAlert) MarshalJSON() ([]byte, error) {
	return json.Marshal(priceAlertJSON{
		ID:             a.ID,
		ProductID:      a.ProductID,
		PriceThreshold: a.PriceThreshold,
		TargetRetailer: a.Scope.TargetRetailer(),
		Scope:          a.Scope,
		IsActive:       a.IsActive,
		Triggered:      a.Triggered,
		CreatedAt:      a.CreatedAt,
		TriggeredAt:    a.TriggeredAt,
	})
}

func (a *PriceAlert) UnmarshalJSON(b []byte) error {
	var aj priceAlertJSON
	if err := json.Unmarshal(b, &aj); err != nil {
		return err
	}
	*a = PriceAlert{
		ID:             aj.ID,
		ProductID:      aj.ProductID,
		PriceThreshold: aj.PriceThreshold,
		Scope:          aj.Scope,
		IsActive:       aj.IsActive,
		Triggered:      aj.Triggered,
		CreatedAt:      aj.CreatedAt,
		TriggeredAt:    aj.TriggeredAt,
	}
	if a.Scope.Kind == "" {
		a.Scope = ScopeFor(aj.TargetRetailer)
	}
	return nil
}

// ValidateThreshold reports an ErrValidation unless threshold is a finite price above 0.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return errors.Wrapf(ErrValidation, "price threshold must be greater than 0, got: %v", threshold)
	}
	return nil
}

// NewPriceAlert builds an active, untriggered alert after validating the threshold.
func NewPriceAlert(productID primitive.ObjectID, threshold float64, scope AlertScope, now time.Time) (PriceAlert, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return PriceAlert{}, err
	}
	if productID.IsZero() {
		return PriceAlert{}, errors.Wrap(ErrValidation, "product id is empty")
	}
	return PriceAlert{
		ProductID:      productID,
		PriceThreshold: threshold,
		Scope:          scope,
		IsActive:       true,
		Triggered:      false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
