package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Rating      *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProductUpdate carries the catalog owner's metadata edits, nil fields are left as they are.
type ProductUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Brand       *string   `json:"brand"`
	ImageURL    *string   `json:"image_url"`
	Tags        *[]string `json:"tags"`
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.Wrap(ErrValidation, "product name is empty")
	}
	if strings.TrimSpace(p.Category) == "" {
		return errors.Wrap(ErrValidation, "product category is empty")
	}
	return nil
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Category == nil &&
		u.Brand == nil && u.ImageURL == nil && u.Tags == nil
}

// Apply returns p with the non-nil fields of u written over it.
func (u ProductUpdate) Apply(p Product) (Product, error) {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = strings.TrimSpace(*u.Category)
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Tags != nil {
		p.Tags = append([]string{}, (*u.Tags)...)
	}
	return p, p.Validate()
}

// SplitTags accepts the comma separated form used by seed files.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
