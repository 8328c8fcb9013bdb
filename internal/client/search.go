package client

import (
	"context"
	"fmt"
	"pricecompare/internal/misc"
	"pricecompare/internal/model"
	"strings"

	"github.com/pkg/errors"
)

const maxSearchLimit = 50

var ErrUnknownSource = errors.New("unknown retailer source")

// Search queries one retailer source for at most limit listings. Results are cached in
// redis for Config.CacheTTL when redis is configured. limit is bounded to [1, 50].
func (c Client) Search(ctx context.Context, source Source, query string, limit int) ([]model.Listing, error) {
	query = strings.TrimSpace(query)
	limit = misc.Clamp(limit, 1, maxSearchLimit)
	cacheKey := fmt.Sprintf("search:%s:%d:%s", source, limit, strings.ToLower(query))

	var listings []model.Listing
	if c.cacheGet(ctx, cacheKey, &listings) {
		c.Logger.Debugf("Search: Cache found, key: %s", cacheKey)
		return listings, nil
	}

	var err error
	switch source {
	case SourceEbay:
		listings, err = c.EbaySearch(ctx, query, limit)
	case SourceAmazon:
		listings, err = c.serpAPISearch(ctx, serpAmazon, query, limit)
	case SourceWalmart:
		listings, err = c.serpAPISearch(ctx, serpWalmart, query, limit)
	case SourceGoogleShopping:
		listings, err = c.serpAPISearch(ctx, serpGoogleShopping, query, limit)
	default:
		return nil, errors.Wrapf(ErrUnknownSource, "source: %s", source)
	}
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, listings)
	return listings, nil
}
