package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricecompare/internal/model"
	"pricecompare/internal/pricing"
)

const maxRecommendationLimit = 50

func (s Server) recommendationGet() http.HandlerFunc {
	type recommendation struct {
		model.Recommendation
		Product model.Product `json:"product"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.DB.ProductFindOne(r.Context(), mux.Vars(r)["productID"])
		if err != nil {
			s.writeError(w, r, "recommendationGet", err)
			return
		}
		rs, err := s.DB.RecommendationsFind(r.Context(), p.ID)
		if err != nil {
			s.writeError(w, r, "recommendationGet", err)
			return
		}
		ids := make([]primitive.ObjectID, 0, len(rs))
		for _, rec := range rs {
			ids = append(ids, rec.RecommendedProductID)
		}
		ps, err := s.DB.ProductsFind(r.Context(), ids)
		if err != nil {
			s.writeError(w, r, "recommendationGet", err)
			return
		}
		byID := make(map[primitive.ObjectID]model.Product, len(ps))
		for _, rp := range ps {
			byID[rp.ID] = rp
		}

		resp := make([]recommendation, 0, len(rs))
		for _, rec := range rs {
			rp, ok := byID[rec.RecommendedProductID]
			if !ok {
				s.Logger.Warnf("recommendationGet: Recommended product missing, ProductID: %s, TraceID: %s",
					rec.RecommendedProductID.Hex(), getTraceContext(r.Context()).traceID)
				continue
			}
			resp = append(resp, recommendation{Recommendation: rec, Product: rp})
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

// recommendationGenerate recomputes and replaces the stored recommendations of a product.
func (s Server) recommendationGenerate() http.HandlerFunc {
	type response struct {
		Status          string                 `json:"status"`
		ProductID       string                 `json:"product_id"`
		Count           int                    `json:"count"`
		Recommendations []model.Recommendation `json:"recommendations"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit := pricing.DefaultRecommendationLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxRecommendationLimit {
				s.writeError(w, r, "recommendationGenerate",
					errors.Wrapf(model.ErrValidation, "limit must be between 1 and %d, got: %s", maxRecommendationLimit, v))
				return
			}
			limit = n
		}

		p, quotes, err := s.productQuotes(r)
		if err != nil {
			s.writeError(w, r, "recommendationGenerate", err)
			return
		}
		if len(quotes) == 0 {
			s.Logger.Debugf("recommendationGenerate: No prices, keeping stored Recommendations, ProductID: %s, TraceID: %s",
				p.ID.Hex(), getTraceContext(r.Context()).traceID)
			s.writeJsonResponse(w, response{
				Status:          "success",
				ProductID:       p.ID.Hex(),
				Recommendations: []model.Recommendation{},
			}, http.StatusOK)
			return
		}
		sameCategory, err := s.DB.ProductsFindByCategory(r.Context(), p.Category)
		if err != nil {
			s.writeError(w, r, "recommendationGenerate", err)
			return
		}
		candidates := make([]pricing.Candidate, 0, limit)
		for _, cp := range sameCategory {
			if len(candidates) == limit {
				break
			}
			if cp.ID == p.ID {
				continue
			}
			cq, err := s.quotes(r.Context(), cp.ID)
			if err != nil {
				s.writeError(w, r, "recommendationGenerate", err)
				return
			}
			candidates = append(candidates, pricing.Candidate{Product: cp, Quotes: cq})
		}

		recs := pricing.Recommend(p, quotes, candidates, limit, s.now())
		if err = s.DB.RecommendationsReplace(r.Context(), p.ID, recs); err != nil {
			s.writeError(w, r, "recommendationGenerate", err)
			return
		}
		s.writeJsonResponse(w, response{
			Status:          "success",
			ProductID:       p.ID.Hex(),
			Count:           len(recs),
			Recommendations: recs,
		}, http.StatusOK)
	}
}
