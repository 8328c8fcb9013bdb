package server

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"pricecompare/internal/model"
	"pricecompare/internal/pricing"
)

const minSearchQueryLength = 2

type productWithPrices struct {
	model.Product
	Prices []pricing.Quote `json:"prices"`
}

// productList returns the catalog with every product's current quotes embedded.
func (s Server) productList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := s.DB.ProductsFindAll(r.Context())
		if err != nil {
			s.writeError(w, r, "productList", err)
			return
		}
		resp := make([]productWithPrices, 0, len(ps))
		for _, p := range ps {
			quotes, err := s.quotes(r.Context(), p.ID)
			if err != nil {
				s.writeError(w, r, "productList", err)
				return
			}
			resp = append(resp, productWithPrices{Product: p, Prices: quotes})
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) productTrending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := s.trendingProducts(r.Context())
		if err != nil {
			s.writeError(w, r, "productTrending", err)
			return
		}
		s.writeJsonResponse(w, ps, http.StatusOK)
	}
}

func (s Server) productSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ps, err := s.DB.ProductsSearch(r.Context(), q.Get("q"), q.Get("category"))
		if err != nil {
			s.writeError(w, r, "productSearch", err)
			return
		}
		s.writeJsonResponse(w, ps, http.StatusOK)
	}
}

func (s Server) productSearchAdd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if utf8.RuneCountInString(q) < minSearchQueryLength {
			s.Logger.Debugf("productSearchAdd: Search query too short: %q, TraceID: %s", q, getTraceContext(r.Context()).traceID)
			http.Error(w, "Search query too short", http.StatusBadRequest)
			return
		}
		ps, err := s.searchAndIngest(r.Context(), q)
		if err != nil {
			s.writeError(w, r, "productSearchAdd", err)
			return
		}
		s.writeJsonResponse(w, ps, http.StatusOK)
	}
}

func (s Server) productGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.DB.ProductFindOne(r.Context(), mux.Vars(r)["productID"])
		if err != nil {
			s.writeError(w, r, "productGet", err)
			return
		}
		s.writeJsonResponse(w, p, http.StatusOK)
	}
}

func (s Server) productCreate() http.HandlerFunc {
	type request struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Brand       string   `json:"brand"`
		ImageURL    string   `json:"image_url"`
		Tags        []string `json:"tags"`
		Rating      *float64 `json:"rating"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if !s.decodeJSON(w, r, "productCreate", &req) {
			return
		}
		p, err := s.DB.ProductInsert(r.Context(), model.Product{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Brand:       req.Brand,
			ImageURL:    req.ImageURL,
			Tags:        req.Tags,
			Rating:      req.Rating,
		})
		if err != nil {
			s.writeError(w, r, "productCreate", err)
			return
		}
		s.Logger.Infof("productCreate: Product created, ID: %s, by: %s, TraceID: %s",
			p.ID.Hex(), owner(r.Context()), getTraceContext(r.Context()).traceID)
		s.writeJsonResponse(w, p, http.StatusCreated)
	}
}

func (s Server) productUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := model.ProductUpdate{}
		if !s.decodeJSON(w, r, "productUpdate", &req) {
			return
		}
		productID := mux.Vars(r)["productID"]
		p, err := s.DB.ProductUpdateMetadata(r.Context(), productID, req)
		if err != nil {
			s.writeError(w, r, "productUpdate", err)
			return
		}
		s.Logger.Infof("productUpdate: Product metadata updated, ID: %s, by: %s, TraceID: %s",
			productID, owner(r.Context()), getTraceContext(r.Context()).traceID)
		s.writeJsonResponse(w, p, http.StatusOK)
	}
}
