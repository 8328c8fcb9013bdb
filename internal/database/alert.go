package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricecompare/internal/model"
	"time"
)

type AlertFilter struct {
	ActiveOnly bool
	ProductID  primitive.ObjectID
}

func (f AlertFilter) bson() bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	if !f.ProductID.IsZero() {
		filter["product_id"] = f.ProductID
	}
	return filter
}

func (db Database) AlertInsert(ctx context.Context, a model.PriceAlert) (model.PriceAlert, error) {
	a.ID = primitive.NilObjectID
	r, err := db.Collection(CollectionAlerts).InsertOne(ctx, a)
	if err != nil {
		return a, errors.Wrapf(err, "error inserting PriceAlert for ProductID: %s", a.ProductID.Hex())
	}
	a.ID = r.InsertedID.(primitive.ObjectID)
	return a, nil
}

func (db Database) AlertFindOne(ctx context.Context, alertID string) (model.PriceAlert, error) {
	var a model.PriceAlert
	objID, err := objectID(alertID)
	if err != nil {
		return a, err
	}
	err = db.Collection(CollectionAlerts).FindOne(ctx, bson.M{"_id": objID}).Decode(&a)
	return a, errors.Wrapf(notFound(err), "error finding PriceAlert with ID: %s", alertID)
}

func (db Database) AlertsFind(ctx context.Context, f AlertFilter) ([]model.PriceAlert, error) {
	as := []model.PriceAlert{}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := db.Collection(CollectionAlerts).Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find PriceAlerts, filter: %+v", f)
	}
	if err = cur.All(ctx, &as); err != nil {
		return nil, errors.Wrapf(err, "error getting PriceAlerts from cursor, filter: %+v", f)
	}
	return as, nil
}

// AlertDeactivate sets the alert inactive. Deactivating an inactive alert is a no-op.
func (db Database) AlertDeactivate(ctx context.Context, alertID string) error {
	objID, err := objectID(alertID)
	if err != nil {
		return err
	}
	res, err := db.Collection(CollectionAlerts).UpdateOne(
		ctx,
		bson.M{"_id": objID, "is_active": true},
		bson.M{"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error deactivating PriceAlert with ID: %s", alertID)
	}
	if res.MatchedCount == 0 {
		n, err := db.Collection(CollectionAlerts).CountDocuments(ctx, bson.M{"_id": objID})
		if err != nil {
			return errors.Wrapf(err, "error checking PriceAlert with ID: %s", alertID)
		}
		if n == 0 {
			return errors.Wrapf(model.ErrNotFound, "PriceAlert with ID: %s", alertID)
		}
	}
	return nil
}

// AlertMarkTriggered flips an active, untriggered alert to triggered and reports whether
// it did. An alert deactivated or triggered since it was read is left as it is.
func (db Database) AlertMarkTriggered(ctx context.Context, alertID primitive.ObjectID, at time.Time) (bool, error) {
	res, err := db.Collection(CollectionAlerts).UpdateOne(
		ctx,
		bson.M{"_id": alertID, "is_active": true, "triggered": false},
		bson.M{"$set": bson.M{
			"triggered":    true,
			"triggered_at": at,
			"updated_at":   at,
		}},
	)
	if err != nil {
		return false, errors.Wrapf(err, "error marking PriceAlert triggered, AlertID: %s", alertID.Hex())
	}
	return res.ModifiedCount == 1, nil
}
