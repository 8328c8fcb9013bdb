package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricecompare/internal/model"
)

// RecommendationsReplace drops the stored recommendations of productID and writes rs.
func (db Database) RecommendationsReplace(ctx context.Context, productID primitive.ObjectID, rs []model.Recommendation) error {
	_, err := db.Collection(CollectionRecommendations).DeleteMany(ctx, bson.M{"product_id": productID})
	if err != nil {
		return errors.Wrapf(err, "error deleting Recommendations for ProductID: %s", productID.Hex())
	}
	if len(rs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(rs))
	for _, r := range rs {
		r.ID = primitive.NilObjectID
		docs = append(docs, r)
	}
	_, err = db.Collection(CollectionRecommendations).InsertMany(ctx, docs)
	return errors.Wrapf(err, "error inserting Recommendations for ProductID: %s", productID.Hex())
}

func (db Database) RecommendationsFind(ctx context.Context, productID primitive.ObjectID) ([]model.Recommendation, error) {
	rs := []model.Recommendation{}
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := db.Collection(CollectionRecommendations).Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Recommendations for ProductID: %s", productID.Hex())
	}
	if err = cur.All(ctx, &rs); err != nil {
		return nil, errors.Wrapf(err, "error getting Recommendations from cursor for ProductID: %s", productID.Hex())
	}
	return rs, nil
}
