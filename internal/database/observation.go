package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricecompare/internal/model"
	"time"
)

// ObservationInsert appends o to the ledger. A zero ObservedAt is stamped with the
// current time.
func (db Database) ObservationInsert(ctx context.Context, o model.PriceObservation) (model.PriceObservation, error) {
	if err := o.Normalize(); err != nil {
		return o, err
	}
	if o.ProductID.IsZero() {
		return o, errors.Wrap(model.ErrValidation, "product id is empty")
	}
	if o.ObservedAt.IsZero() {
		o.ObservedAt = time.Now()
	}
	// stored with millisecond precision
	o.ObservedAt = o.ObservedAt.UTC().Truncate(time.Millisecond)
	o.ID = primitive.NilObjectID

	r, err := db.Collection(CollectionObservations).InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return o, errors.Wrapf(model.ErrValidation, "duplicate observation, ProductID: %s, Retailer: %s, ObservedAt: %s",
			o.ProductID.Hex(), o.Retailer, o.ObservedAt.Format(time.RFC3339Nano))
	}
	if err != nil {
		return o, errors.Wrapf(err, "error inserting PriceObservation: %+v", o)
	}
	o.ID = r.InsertedID.(primitive.ObjectID)
	return o, nil
}

// ObservationsFindLatestPerRetailer returns the most recent observation of each retailer
// for productID. Among observations sharing a timestamp the one inserted last wins.
func (db Database) ObservationsFindLatestPerRetailer(ctx context.Context, productID primitive.ObjectID) ([]model.PriceObservation, error) {
	obs := []model.PriceObservation{}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$sort", Value: bson.D{{Key: "observed_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$retailer",
			"doc": bson.M{"$first": "$$ROOT"},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
	}
	cur, err := db.Collection(CollectionObservations).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "error aggregating latest PriceObservations for ProductID: %s", productID.Hex())
	}
	if err = cur.All(ctx, &obs); err != nil {
		return nil, errors.Wrapf(err, "error getting latest PriceObservations from cursor for ProductID: %s", productID.Hex())
	}
	return obs, nil
}

func (db Database) ObservationsFindRange(
	ctx context.Context, productID primitive.ObjectID, start time.Time, end time.Time,
) ([]model.PriceObservation, error) {
	obs := []model.PriceObservation{}
	opts := options.Find().SetSort(bson.D{{Key: "retailer", Value: 1}, {Key: "observed_at", Value: 1}})
	cur, err := db.Collection(CollectionObservations).Find(ctx, bson.M{
		"product_id": productID,
		"observed_at": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}, opts)
	if err != nil {
		return nil, errors.Wrapf(err,
			"error getting cursor to find PriceObservations for ProductID: %s, start: %s, end: %s",
			productID.Hex(), start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if err = cur.All(ctx, &obs); err != nil {
		return nil, errors.Wrapf(err,
			"error getting PriceObservations from cursor for ProductID: %s, start: %s, end: %s",
			productID.Hex(), start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return obs, nil
}
