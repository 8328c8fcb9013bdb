package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"pricecompare/internal/model"
)

const (
	defaultSeedCategory = "Uncategorized"
	defaultSeedRetailer = "Unknown"
)

type SeedSummary struct {
	Products     int `json:"products"`
	Observations int `json:"observations"`
	Skipped      int `json:"skipped"`
}

type seedFile struct {
	Products []seedProduct `json:"products"`
}

type seedProduct struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Image       string          `json:"image"`
	ImageURL    string          `json:"image_url"`
	Tags        json.RawMessage `json:"tags"`
	Rating      *float64        `json:"rating"`
	Prices      []seedPrice     `json:"prices"`

	// flat files carry a single price on the product entry itself
	seedPrice
}

type seedPrice struct {
	Retailer      string   `json:"retailer"`
	Seller        string   `json:"seller"`
	Price         *float64 `json:"price"`
	Value         *float64 `json:"value"`
	OriginalPrice *float64 `json:"original_price"`
	URL           string   `json:"url"`
	Link          string   `json:"link"`
	InStock       *bool    `json:"in_stock"`
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (sp seedProduct) product() model.Product {
	p := model.Product{
		Name:        firstNonEmpty(sp.Name, sp.Title),
		Description: sp.Description,
		Category:    firstNonEmpty(sp.Category, defaultSeedCategory),
		Brand:       sp.Brand,
		ImageURL:    firstNonEmpty(sp.ImageURL, sp.Image),
		Rating:      sp.Rating,
	}
	if len(sp.Tags) > 0 {
		var list []string
		var s string
		if err := json.Unmarshal(sp.Tags, &list); err == nil {
			p.Tags = list
		} else if err = json.Unmarshal(sp.Tags, &s); err == nil {
			p.Tags = model.SplitTags(s)
		}
	}
	return p
}

func (sp seedProduct) prices() []seedPrice {
	if len(sp.Prices) > 0 {
		return sp.Prices
	}
	if sp.seedPrice.Price != nil || sp.seedPrice.Value != nil {
		return []seedPrice{sp.seedPrice}
	}
	return nil
}

func (sp seedPrice) amount() float64 {
	switch {
	case sp.Price != nil:
		return *sp.Price
	case sp.Value != nil:
		return *sp.Value
	}
	return 0
}

func decodeSeed(r io.Reader) ([]seedProduct, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading seed data")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var ps []seedProduct
		if err = json.Unmarshal(raw, &ps); err != nil {
			return nil, errors.Wrap(model.ErrValidation, "malformed seed list: "+err.Error())
		}
		return ps, nil
	}
	f := seedFile{}
	if err = json.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(model.ErrValidation, "malformed seed file: "+err.Error())
	}
	return f.Products, nil
}

// Seed loads a product catalog with initial prices. Invalid products and
// non-positive prices are skipped, storage failures abort the load.
func (s Server) Seed(ctx context.Context, r io.Reader) (SeedSummary, error) {
	summary := SeedSummary{}
	entries, err := decodeSeed(r)
	if err != nil {
		return summary, err
	}

	now := s.now()
	for i, e := range entries {
		p, err := s.DB.ProductInsert(ctx, e.product())
		if errors.Is(err, model.ErrValidation) {
			s.Logger.Warnf("Seed: Skipping entry %d, err: %v", i, err)
			summary.Skipped++
			continue
		} else if err != nil {
			return summary, errors.WithMessagef(err, "error seeding entry %d", i)
		}
		summary.Products++

		for _, sp := range e.prices() {
			price := sp.amount()
			if price <= 0 {
				s.Logger.Debugf("Seed: Skipping non-positive price for ProductID: %s", p.ID.Hex())
				summary.Skipped++
				continue
			}
			o := model.PriceObservation{
				ProductID:     p.ID,
				Retailer:      firstNonEmpty(sp.Retailer, sp.Seller, defaultSeedRetailer),
				Price:         price,
				OriginalPrice: sp.OriginalPrice,
				URL:           firstNonEmpty(sp.URL, sp.Link),
				InStock:       sp.InStock == nil || *sp.InStock,
				ObservedAt:    now,
			}
			if _, err = s.DB.ObservationInsert(ctx, o); errors.Is(err, model.ErrValidation) {
				s.Logger.Warnf("Seed: Skipping price for ProductID: %s, err: %v", p.ID.Hex(), err)
				summary.Skipped++
				continue
			} else if err != nil {
				return summary, errors.WithMessagef(err, "error seeding price for ProductID: %s", p.ID.Hex())
			}
			summary.Observations++
		}
	}
	s.Logger.Infof("Seed: Loaded %d product(s), %d observation(s), skipped: %d",
		summary.Products, summary.Observations, summary.Skipped)
	return summary, nil
}
