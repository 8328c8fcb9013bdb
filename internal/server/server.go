package server

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricecompare/internal/client"
	"pricecompare/internal/database"
	"pricecompare/internal/model"
)

type Server struct {
	DB                store
	Client            retailerClient
	Logger            logger
	AuthSecretKey     jwk.Key
	AdminPasswordHash []byte
	TokenTTL          time.Duration
	CORSOrigins       []string
	SearchLimit       int
	Workers           int
	// Now is the clock used for observations, alerts and history windows, time.Now when nil.
	Now func() time.Time
}

var (
	_ store          = database.Database{}
	_ retailerClient = client.Client{}
)

type store interface {
	Ping(ctx context.Context) error

	ProductInsert(ctx context.Context, p model.Product) (model.Product, error)
	ProductFindOne(ctx context.Context, productID string) (model.Product, error)
	ProductsFind(ctx context.Context, productIDs []primitive.ObjectID) ([]model.Product, error)
	ProductsFindAll(ctx context.Context) ([]model.Product, error)
	ProductsFindByCategory(ctx context.Context, category string) ([]model.Product, error)
	ProductsSearch(ctx context.Context, q string, category string) ([]model.Product, error)
	ProductsCount(ctx context.Context) (int64, error)
	ProductUpdateMetadata(ctx context.Context, productID string, u model.ProductUpdate) (model.Product, error)

	ObservationInsert(ctx context.Context, o model.PriceObservation) (model.PriceObservation, error)
	ObservationsFindLatestPerRetailer(ctx context.Context, productID primitive.ObjectID) ([]model.PriceObservation, error)
	ObservationsFindRange(ctx context.Context, productID primitive.ObjectID, start time.Time, end time.Time) ([]model.PriceObservation, error)

	AlertInsert(ctx context.Context, a model.PriceAlert) (model.PriceAlert, error)
	AlertFindOne(ctx context.Context, alertID string) (model.PriceAlert, error)
	AlertsFind(ctx context.Context, f database.AlertFilter) ([]model.PriceAlert, error)
	AlertDeactivate(ctx context.Context, alertID string) error
	AlertMarkTriggered(ctx context.Context, alertID primitive.ObjectID, at time.Time) (bool, error)

	RecommendationsReplace(ctx context.Context, productID primitive.ObjectID, rs []model.Recommendation) error
	RecommendationsFind(ctx context.Context, productID primitive.ObjectID) ([]model.Recommendation, error)
}

type retailerClient interface {
	Sources() []client.Source
	Search(ctx context.Context, source client.Source, query string, limit int) ([]model.Listing, error)
	WebhookEnabled() bool
	SendAlertWebhook(ctx context.Context, req client.AlertWebhookRequest) error
}

type logger interface {
	Trace(v ...any)
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

func (s Server) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
