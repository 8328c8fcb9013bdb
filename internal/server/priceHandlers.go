package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricecompare/internal/model"
	"pricecompare/internal/pricing"
)

// maxClockSkew bounds how far in the future a recorded observation may be stamped.
const maxClockSkew = 5 * time.Minute

func (s Server) quotes(ctx context.Context, productID primitive.ObjectID) ([]pricing.Quote, error) {
	latest, err := s.DB.ObservationsFindLatestPerRetailer(ctx, productID)
	if err != nil {
		return nil, err
	}
	return pricing.Compare(latest), nil
}

// productQuotes resolves the product id from the route and returns its current quotes.
func (s Server) productQuotes(r *http.Request) (model.Product, []pricing.Quote, error) {
	p, err := s.DB.ProductFindOne(r.Context(), mux.Vars(r)["productID"])
	if err != nil {
		return p, nil, err
	}
	quotes, err := s.quotes(r.Context(), p.ID)
	return p, quotes, err
}

func (s Server) priceComparison() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, quotes, err := s.productQuotes(r)
		if err != nil {
			s.writeError(w, r, "priceComparison", err)
			return
		}
		s.writeJsonResponse(w, quotes, http.StatusOK)
	}
}

func (s Server) priceHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		days := pricing.DefaultHistoryDays
		if v := q.Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				s.writeError(w, r, "priceHistory", errors.Wrapf(model.ErrValidation, "days is not a number: %s", v))
				return
			}
			days = n
		}
		if err := pricing.ValidateDays(days); err != nil {
			s.writeError(w, r, "priceHistory", err)
			return
		}
		grouped, _ := strconv.ParseBool(q.Get("grouped"))

		p, err := s.DB.ProductFindOne(r.Context(), mux.Vars(r)["productID"])
		if err != nil {
			s.writeError(w, r, "priceHistory", err)
			return
		}
		now := s.now()
		obs, err := s.DB.ObservationsFindRange(r.Context(), p.ID, pricing.WindowStart(now, days), now)
		if err != nil {
			s.writeError(w, r, "priceHistory", err)
			return
		}
		history := pricing.History(obs, now, days)
		if grouped {
			s.writeJsonResponse(w, pricing.GroupByRetailer(history), http.StatusOK)
			return
		}
		s.writeJsonResponse(w, history, http.StatusOK)
	}
}

func (s Server) priceLowest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, quotes, err := s.productQuotes(r)
		if err != nil {
			s.writeError(w, r, "priceLowest", err)
			return
		}
		lowest, ok := pricing.Lowest(quotes)
		if !ok {
			s.writeError(w, r, "priceLowest", errors.Wrapf(model.ErrNotFound, "no prices for ProductID: %s", p.ID.Hex()))
			return
		}
		s.writeJsonResponse(w, lowest, http.StatusOK)
	}
}

func (s Server) priceBestDeal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, quotes, err := s.productQuotes(r)
		if err != nil {
			s.writeError(w, r, "priceBestDeal", err)
			return
		}
		deal, ok := pricing.BestDeal(quotes)
		if !ok {
			s.writeError(w, r, "priceBestDeal", errors.Wrapf(model.ErrNotFound, "no prices for ProductID: %s", p.ID.Hex()))
			return
		}
		s.writeJsonResponse(w, deal, http.StatusOK)
	}
}

// priceRecord appends an observation to the ledger for an existing product.
func (s Server) priceRecord() http.HandlerFunc {
	type request struct {
		ProductID     string     `json:"product_id"`
		Retailer      string     `json:"retailer"`
		Price         *float64   `json:"price"`
		OriginalPrice *float64   `json:"original_price"`
		URL           string     `json:"url"`
		InStock       *bool      `json:"in_stock"`
		Rating        *float64   `json:"rating"`
		ReviewCount   *int       `json:"review_count"`
		Timestamp     *time.Time `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if !s.decodeJSON(w, r, "priceRecord", &req) {
			return
		}
		if req.Price == nil {
			s.writeError(w, r, "priceRecord", errors.Wrap(model.ErrValidation, "price is required"))
			return
		}
		if req.Timestamp != nil && req.Timestamp.After(s.now().Add(maxClockSkew)) {
			s.writeError(w, r, "priceRecord", errors.Wrapf(model.ErrValidation,
				"timestamp %s is in the future", req.Timestamp.UTC().Format(time.RFC3339)))
			return
		}
		p, err := s.DB.ProductFindOne(r.Context(), req.ProductID)
		if err != nil {
			s.writeError(w, r, "priceRecord", err)
			return
		}
		o := model.PriceObservation{
			ProductID:     p.ID,
			Retailer:      req.Retailer,
			Price:         *req.Price,
			OriginalPrice: req.OriginalPrice,
			URL:           req.URL,
			InStock:       req.InStock == nil || *req.InStock,
			Rating:        req.Rating,
			ReviewCount:   req.ReviewCount,
			ObservedAt:    s.now(),
		}
		if req.Timestamp != nil {
			o.ObservedAt = req.Timestamp.UTC()
		}
		o, err = s.DB.ObservationInsert(r.Context(), o)
		if err != nil {
			s.writeError(w, r, "priceRecord", err)
			return
		}
		s.Logger.Infof("priceRecord: Observation recorded, ProductID: %s, Retailer: %s, Price: %.2f, by: %s, TraceID: %s",
			p.ID.Hex(), o.Retailer, o.Price, owner(r.Context()), getTraceContext(r.Context()).traceID)
		s.writeJsonResponse(w, o, http.StatusCreated)
	}
}
