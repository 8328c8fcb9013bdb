package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"pricecompare/internal/model"
)

const (
	CollectionProducts        = "products"
	CollectionObservations    = "price_observations"
	CollectionAlerts          = "alerts"
	CollectionRecommendations = "recommendations"
)

type Database struct {
	*mongo.Database
}

func ConnectDB(ctx context.Context, dbURI string, name string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to database: %s", dbURI)
	}

	db := c.Database(name)

	_, err = db.Collection(CollectionProducts).Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating products indexes")
	}

	_, err = db.Collection(CollectionObservations).Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "product_id", Value: 1},
					{Key: "retailer", Value: 1},
					{Key: "observed_at", Value: -1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "product_id", Value: 1},
					{Key: "observed_at", Value: -1},
				},
			},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating price_observations indexes")
	}

	_, err = db.Collection(CollectionAlerts).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "product_id", Value: 1},
			},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating alerts indexes")
	}

	_, err = db.Collection(CollectionRecommendations).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "product_id", Value: 1},
				{Key: "score", Value: -1},
			},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating recommendations indexes")
	}

	return c, nil
}

func (db Database) Ping(ctx context.Context) error {
	return errors.Wrap(db.Client().Ping(ctx, readpref.Primary()), "error pinging database")
}

// objectID parses a client supplied id. A malformed id can never match a document,
// so it is reported as not found.
func objectID(hex string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(model.ErrNotFound, "invalid id: %s", hex)
	}
	return objID, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return err
}
