package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricecompare/internal/model"
	"regexp"
	"strings"
	"time"
)

func (db Database) ProductInsert(ctx context.Context, p model.Product) (model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if err := p.Validate(); err != nil {
		return p, err
	}
	now := time.Now().UTC()
	p.ID = primitive.NilObjectID
	p.CreatedAt = now
	p.UpdatedAt = now

	r, err := db.Collection(CollectionProducts).InsertOne(ctx, p)
	if err != nil {
		return p, errors.Wrapf(err, "error inserting Product with name: %s", p.Name)
	}
	p.ID = r.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (db Database) ProductFindOne(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	objID, err := objectID(productID)
	if err != nil {
		return p, err
	}
	err = db.Collection(CollectionProducts).FindOne(ctx, bson.M{"_id": objID}).Decode(&p)
	return p, errors.Wrapf(notFound(err), "error finding Product with ID: %s", productID)
}

func (db Database) ProductsFind(ctx context.Context, productIDs []primitive.ObjectID) ([]model.Product, error) {
	ps := []model.Product{}
	cur, err := db.Collection(CollectionProducts).Find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Products, productIDs: %v", productIDs)
	}
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrapf(err, "error getting Products from cursor, productIDs: %v", productIDs)
	}
	return ps, nil
}

func (db Database) ProductsFindAll(ctx context.Context) ([]model.Product, error) {
	return db.productsFind(ctx, bson.M{})
}

func (db Database) ProductsFindByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return db.productsFind(ctx, bson.M{"category": category})
}

// ProductsSearch matches q case-insensitively against name and description. An empty
// category matches every category.
func (db Database) ProductsSearch(ctx context.Context, q string, category string) ([]model.Product, error) {
	filter := bson.M{}
	if q = strings.TrimSpace(q); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if category = strings.TrimSpace(category); category != "" {
		filter["category"] = category
	}
	return db.productsFind(ctx, filter)
}

func (db Database) ProductsCount(ctx context.Context) (int64, error) {
	n, err := db.Collection(CollectionProducts).CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "error counting Products")
}

func (db Database) ProductUpdateMetadata(ctx context.Context, productID string, u model.ProductUpdate) (model.Product, error) {
	p, err := db.ProductFindOne(ctx, productID)
	if err != nil {
		return p, err
	}
	if u.Empty() {
		return p, nil
	}
	p, err = u.Apply(p)
	if err != nil {
		return p, err
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = db.Collection(CollectionProducts).UpdateOne(
		ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"brand":       p.Brand,
			"image_url":   p.ImageURL,
			"tags":        p.Tags,
			"updated_at":  p.UpdatedAt,
		}},
	)
	return p, errors.Wrapf(err, "error updating Product metadata, ProductID: %s", productID)
}

func (db Database) productsFind(ctx context.Context, filter bson.M) ([]model.Product, error) {
	ps := []model.Product{}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := db.Collection(CollectionProducts).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Products, filter: %v", filter)
	}
	if err = cur.All(ctx, &ps); err != nil {
		return nil, errors.Wrapf(err, "error getting Products from cursor, filter: %v", filter)
	}
	return ps, nil
}
