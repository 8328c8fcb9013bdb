package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = s.loggingMw(s.corsMw(s.notFoundHandler()))
	r.MethodNotAllowedHandler = s.loggingMw(s.corsMw(s.methodNotAllowedHandler()))
	r.Use(s.loggingMw, s.corsMw)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.maxBytesMw)

	api.HandleFunc("/health", s.health()).Methods(http.MethodGet)
	api.HandleFunc("/auth/token", s.authToken()).Methods(http.MethodPost)

	productAPI := api.PathPrefix("/products").Subrouter()
	productAPI.HandleFunc("/", s.productList()).Methods(http.MethodGet)
	productAPI.Handle("/", s.authMw(s.productCreate())).Methods(http.MethodPost)
	productAPI.HandleFunc("/trending", s.productTrending()).Methods(http.MethodGet)
	productAPI.HandleFunc("/search", s.productSearch()).Methods(http.MethodGet)
	productAPI.HandleFunc("/search-add", s.productSearchAdd()).Methods(http.MethodPost)
	productAPI.HandleFunc("/{productID}", s.productGet()).Methods(http.MethodGet)
	productAPI.Handle("/{productID}", s.authMw(s.productUpdate())).Methods(http.MethodPatch)

	priceAPI := api.PathPrefix("/prices").Subrouter()
	priceAPI.Handle("/", s.authMw(s.priceRecord())).Methods(http.MethodPost)
	priceAPI.HandleFunc("/comparison/{productID}", s.priceComparison()).Methods(http.MethodGet)
	priceAPI.HandleFunc("/history/{productID}", s.priceHistory()).Methods(http.MethodGet)
	priceAPI.HandleFunc("/lowest/{productID}", s.priceLowest()).Methods(http.MethodGet)
	priceAPI.HandleFunc("/best-deal/{productID}", s.priceBestDeal()).Methods(http.MethodGet)

	alertAPI := api.PathPrefix("/alerts").Subrouter()
	alertAPI.HandleFunc("/", s.alertList()).Methods(http.MethodGet)
	alertAPI.HandleFunc("/", s.alertCreate()).Methods(http.MethodPost)
	alertAPI.HandleFunc("/check", s.alertCheck()).Methods(http.MethodPost)
	alertAPI.HandleFunc("/{alertID}", s.alertDeactivate()).Methods(http.MethodDelete)

	recommendationAPI := api.PathPrefix("/recommendations").Subrouter()
	recommendationAPI.HandleFunc("/generate/{productID}", s.recommendationGenerate()).Methods(http.MethodPost)
	recommendationAPI.HandleFunc("/{productID}", s.recommendationGet()).Methods(http.MethodGet)

	// preflight requests for any path are answered by corsMw. A MatcherFunc instead of
	// Methods keeps unknown paths from turning into 405s.
	r.MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
		return r.Method == http.MethodOptions
	}).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
