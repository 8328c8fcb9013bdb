package server

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"pricecompare/internal/model"
)

const (
	defaultSearchLimit  = 5
	trendingPerCategory = 2
	minTrendingCatalog  = 3
)

var trendingCategories = []string{
	"phones", "laptops", "headphones", "tablets", "smartwatch", "camera", "monitor", "gaming console",
}

// searchAndIngest answers from the local catalog when it has matches. Otherwise every
// enabled retailer source is queried and the listings found are added to the catalog.
// Sources that fail are skipped, the search only fails when all of them do.
func (s Server) searchAndIngest(ctx context.Context, q string) ([]model.Product, error) {
	local, err := s.DB.ProductsSearch(ctx, q, "")
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		return local, nil
	}

	sources := s.Client.Sources()
	ingested := []model.Product{}
	if len(sources) == 0 {
		s.Logger.Warnf("searchAndIngest: No retailer sources enabled, query: %s", q)
		return ingested, nil
	}
	limit := s.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results := make([][]model.Listing, len(sources))
	errs := make([]error, len(sources))
	g := new(errgroup.Group)
	for i, src := range sources {
		g.Go(func() error {
			results[i], errs[i] = s.Client.Search(ctx, src, q, limit)
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for i, src := range sources {
		if errs[i] != nil {
			failed++
			s.Logger.Warnf("searchAndIngest: Source failed, source: %s, query: %s, err: %v", src, q, errs[i])
			continue
		}
		for _, l := range results[i] {
			if p, ok := s.ingestListing(ctx, l); ok {
				ingested = append(ingested, p)
			}
		}
	}
	if failed == len(sources) {
		return nil, errs[0]
	}
	s.Logger.Infof("searchAndIngest: Ingested %d product(s) from %d source(s), query: %s",
		len(ingested), len(sources)-failed, q)
	return ingested, nil
}

// trendingProducts returns the catalog once it holds a few products. A nearly empty
// catalog is first filled from the primary source with a fixed list of categories.
func (s Server) trendingProducts(ctx context.Context) ([]model.Product, error) {
	n, err := s.DB.ProductsCount(ctx)
	if err != nil {
		return nil, err
	}
	if n >= minTrendingCatalog {
		return s.DB.ProductsFindAll(ctx)
	}

	sources := s.Client.Sources()
	if len(sources) == 0 {
		return s.DB.ProductsFindAll(ctx)
	}
	primary := sources[0]
	s.Logger.Infof("trendingProducts: Catalog has %d product(s), fetching trending from %s", n, primary)

	saved := []model.Product{}
	for _, category := range trendingCategories {
		listings, err := s.Client.Search(ctx, primary, category, trendingPerCategory)
		if err != nil {
			s.Logger.Warnf("trendingProducts: Error searching %s, category: %s, err: %v", primary, category, err)
			continue
		}
		for _, l := range listings {
			if p, ok := s.ingestListing(ctx, l); ok {
				saved = append(saved, p)
			}
		}
	}
	if len(saved) > 0 {
		return saved, nil
	}
	return s.DB.ProductsFindAll(ctx)
}

// ingestListing stores a listing as a product under its retailer's category together
// with the listing's price as the first observation. Listings without a title or a
// positive price are dropped.
func (s Server) ingestListing(ctx context.Context, l model.Listing) (model.Product, bool) {
	title := strings.TrimSpace(l.Title)
	if title == "" || l.Price <= 0 {
		s.Logger.Debugf("ingestListing: Dropping listing without title or price, retailer: %s, title: %q, price: %v",
			l.Retailer, l.Title, l.Price)
		return model.Product{}, false
	}
	description := l.Description
	if description == "" {
		description = l.Retailer + " Listing"
	}
	p, err := s.DB.ProductInsert(ctx, model.Product{
		Name:        title,
		Description: description,
		Category:    l.Retailer,
		ImageURL:    l.ImageURL,
		Rating:      l.Rating,
	})
	if err != nil {
		s.Logger.Errorf("ingestListing: Error inserting Product, title: %s, err: %v", title, err)
		return model.Product{}, false
	}
	_, err = s.DB.ObservationInsert(ctx, model.PriceObservation{
		ProductID:     p.ID,
		Retailer:      l.Retailer,
		Price:         l.Price,
		OriginalPrice: l.OriginalPrice,
		URL:           l.URL,
		InStock:       l.InStock,
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		ObservedAt:    s.now(),
	})
	if err != nil {
		s.Logger.Errorf("ingestListing: Error inserting PriceObservation, product left without prices, ProductID: %s, err: %v",
			p.ID.Hex(), err)
		return model.Product{}, false
	}
	return p, true
}
