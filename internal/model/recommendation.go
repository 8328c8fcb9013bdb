package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

const (
	RecommendationSimilar = "similar"
	RecommendationRelated = "related"
)

type Recommendation struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID            primitive.ObjectID `bson:"product_id" json:"product_id"`
	RecommendedProductID primitive.ObjectID `bson:"recommended_product_id" json:"recommended_product_id"`
	Type                 string             `bson:"type" json:"type"`
	Score                float64            `bson:"score" json:"score"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
}
