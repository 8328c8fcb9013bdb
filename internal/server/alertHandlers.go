package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricecompare/internal/database"
	"pricecompare/internal/model"
)

// alertList returns active alerts, or every alert with all=true.
func (s Server) alertList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		all, _ := strconv.ParseBool(q.Get("all"))
		f := database.AlertFilter{ActiveOnly: !all}
		if v := q.Get("product_id"); v != "" {
			productID, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				s.writeJsonResponse(w, []model.PriceAlert{}, http.StatusOK)
				return
			}
			f.ProductID = productID
		}
		as, err := s.DB.AlertsFind(r.Context(), f)
		if err != nil {
			s.writeError(w, r, "alertList", err)
			return
		}
		s.writeJsonResponse(w, as, http.StatusOK)
	}
}

func (s Server) alertCreate() http.HandlerFunc {
	type request struct {
		ProductID      string   `json:"product_id"`
		PriceThreshold *float64 `json:"price_threshold"`
		TargetRetailer *string  `json:"target_retailer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if !s.decodeJSON(w, r, "alertCreate", &req) {
			return
		}
		if req.PriceThreshold == nil {
			http.Error(w, "price_threshold is required", http.StatusBadRequest)
			return
		}
		if err := model.ValidateThreshold(*req.PriceThreshold); err != nil {
			s.writeError(w, r, "alertCreate", err)
			return
		}
		p, err := s.DB.ProductFindOne(r.Context(), req.ProductID)
		if err != nil {
			s.writeError(w, r, "alertCreate", err)
			return
		}
		a, err := model.NewPriceAlert(p.ID, *req.PriceThreshold, model.ScopeFor(req.TargetRetailer), s.now())
		if err != nil {
			s.writeError(w, r, "alertCreate", err)
			return
		}
		a, err = s.DB.AlertInsert(r.Context(), a)
		if err != nil {
			s.writeError(w, r, "alertCreate", err)
			return
		}
		s.Logger.Infof("alertCreate: Alert created, AlertID: %s, ProductID: %s, threshold: %.2f, scope: %s, TraceID: %s",
			a.ID.Hex(), p.ID.Hex(), a.PriceThreshold, a.Scope.Kind, getTraceContext(r.Context()).traceID)
		s.writeJsonResponse(w, a, http.StatusCreated)
	}
}

func (s Server) alertDeactivate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alertID := mux.Vars(r)["alertID"]
		if err := s.DB.AlertDeactivate(r.Context(), alertID); err != nil {
			s.writeError(w, r, "alertDeactivate", err)
			return
		}
		s.Logger.Infof("alertDeactivate: Alert deactivated, AlertID: %s, TraceID: %s",
			alertID, getTraceContext(r.Context()).traceID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s Server) alertCheck() http.HandlerFunc {
	type response struct {
		Status         string           `json:"status"`
		EvaluatedCount int              `json:"evaluated_count"`
		TriggeredCount int              `json:"triggered_count"`
		SkippedCount   int              `json:"skipped_count"`
		Alerts         []TriggeredAlert `json:"alerts"`
		Warnings       []string         `json:"warnings"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.CheckAlerts(r.Context())
		if err != nil {
			s.writeError(w, r, "alertCheck", err)
			return
		}
		s.writeJsonResponse(w, response{
			Status:         "success",
			EvaluatedCount: summary.Evaluated,
			TriggeredCount: len(summary.Triggered),
			SkippedCount:   summary.Skipped,
			Alerts:         summary.Triggered,
			Warnings:       summary.Warnings,
		}, http.StatusOK)
	}
}
