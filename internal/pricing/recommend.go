package pricing

import (
	"time"

	"pricecompare/internal/model"
)

const (
	DefaultRecommendationLimit = 5

	similarScore = 0.9
	relatedScore = 0.6
	priceBand    = 0.3
)

type Candidate struct {
	Product model.Product
	Quotes  []Quote
}

// Recommend scores up to limit same-category candidates against the product's average
// current price. Candidates priced within 30% of it are "similar", the rest "related".
// Candidates without prices are skipped but still count towards the limit.
func Recommend(product model.Product, quotes []Quote, candidates []Candidate, limit int, now time.Time) []model.Recommendation {
	recs := []model.Recommendation{}
	avg, ok := AveragePrice(quotes)
	if !ok {
		return recs
	}
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	lo, hi := avg*(1-priceBand), avg*(1+priceBand)

	var considered int
	for _, cand := range candidates {
		if considered == limit {
			break
		}
		if cand.Product.ID == product.ID || cand.Product.Category != product.Category {
			continue
		}
		considered++

		candAvg, ok := AveragePrice(cand.Quotes)
		if !ok {
			continue
		}
		rec := model.Recommendation{
			ProductID:            product.ID,
			RecommendedProductID: cand.Product.ID,
			Type:                 model.RecommendationRelated,
			Score:                relatedScore,
			CreatedAt:            now,
		}
		if lo <= candAvg && candAvg <= hi {
			rec.Type = model.RecommendationSimilar
			rec.Score = similarScore
		}
		recs = append(recs, rec)
	}
	return recs
}
