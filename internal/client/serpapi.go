package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"pricecompare/internal/misc"
	"pricecompare/internal/model"
	"strings"

	"github.com/pkg/errors"
)

var ErrSerpAPI = errors.Wrap(ErrUpstream, "SerpAPI error")

type serpEngine struct {
	name       string
	source     Source
	queryParam string
	params     map[string]string

	// google_shopping lists results under shopping_results instead of organic_results
	shopping bool
}

var (
	serpAmazon = serpEngine{
		name:       "amazon",
		source:     SourceAmazon,
		queryParam: "k",
		params:     map[string]string{"amazon_domain": "amazon.com"},
	}
	serpWalmart = serpEngine{
		name:       "walmart",
		source:     SourceWalmart,
		queryParam: "query",
	}
	serpGoogleShopping = serpEngine{
		name:       "google_shopping",
		source:     SourceGoogleShopping,
		queryParam: "q",
		shopping:   true,
	}
)

type serpAPIResponse struct {
	Error           string          `json:"error"`
	OrganicResults  []serpAPIResult `json:"organic_results"`
	ShoppingResults []serpAPIResult `json:"shopping_results"`
}

// serpAPIResult holds the fields of the amazon, walmart and google_shopping engines.
type serpAPIResult struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Price             flexNumber `json:"price"`
	ExtractedPrice    flexNumber `json:"extracted_price"`
	OldPrice          flexNumber `json:"old_price"`
	ExtractedOldPrice flexNumber `json:"extracted_old_price"`
	PrimaryOffer      struct {
		OfferPrice flexNumber `json:"offer_price"`
		WasPrice   flexNumber `json:"was_price"`
	} `json:"primary_offer"`
	Thumbnail      string     `json:"thumbnail"`
	Link           string     `json:"link"`
	ProductLink    string     `json:"product_link"`
	ProductPageURL string     `json:"product_page_url"`
	Rating         flexNumber `json:"rating"`
	Reviews        flexNumber `json:"reviews"`
	OutOfStock     bool       `json:"out_of_stock"`
}

func (c Client) serpAPISearch(ctx context.Context, engine serpEngine, query string, limit int) ([]model.Listing, error) {
	if !c.serpAPIEnabled() {
		return nil, errors.Wrap(ErrSerpAPI, "SerpAPI not enabled")
	}

	params := url.Values{}
	params.Set("engine", engine.name)
	params.Set(engine.queryParam, query)
	for k, v := range engine.params {
		params.Set(k, v)
	}
	params.Set("api_key", c.Config.SerpAPIKey)
	apiURL := c.URLs.SerpAPI + "?" + params.Encode()

	req, err := newRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "serpAPISearch: error creating request, engine: %s", engine.name)
	}

	c.Logger.Infof("serpAPISearch: Sending request, engine: %s, query: %s, limit: %d", engine.name, query, limit)
	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrSerpAPI, "error doing request, engine: %s, err: %v", engine.name, redactKey(err, c.Config.SerpAPIKey))
	}
	defer c.closeBody("serpAPISearch", resp)

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Wrapf(ErrSerpAPI, "error reading response body, engine: %s, status: %s, err: %v",
			engine.name, resp.Status, err)
	}
	var serpResp serpAPIResponse
	if err = json.Unmarshal(body, &serpResp); err != nil {
		return nil, errors.Wrapf(ErrSerpAPI, "error unmarshalling response body, engine: %s, status: %s, body: %s, err: %v",
			engine.name, resp.Status, misc.BytesLimit(body, 200), err)
	}
	if resp.StatusCode != http.StatusOK || serpResp.Error != "" {
		return nil, errors.Wrapf(ErrSerpAPI, "search failed, engine: %s, status: %s, error: %s",
			engine.name, resp.Status, serpResp.Error)
	}

	results := serpResp.OrganicResults
	if engine.shopping {
		results = serpResp.ShoppingResults
	}
	if len(results) > limit {
		results = results[:limit]
	}
	listings := make([]model.Listing, 0, len(results))
	for _, r := range results {
		listings = append(listings, r.toListing(engine.source))
	}
	return listings, nil
}

func (r serpAPIResult) toListing(source Source) model.Listing {
	price := firstValid(r.ExtractedPrice, r.Price, r.PrimaryOffer.OfferPrice)
	original := firstValid(r.ExtractedOldPrice, r.OldPrice, r.PrimaryOffer.WasPrice)

	description := string(source) + " Listing"
	if r.Description != "" {
		description = r.Description
	} else if r.Rating.Valid {
		description = fmt.Sprintf("Rating: %v", r.Rating.Value)
	}

	link := r.Link
	if r.ProductPageURL != "" {
		link = r.ProductPageURL
	} else if link == "" {
		link = r.ProductLink
	}

	l := model.Listing{
		Retailer:      string(source),
		Title:         misc.RuneLimit(strings.TrimSpace(r.Title), 200),
		Price:         price.Value,
		OriginalPrice: original.ptr(),
		URL:           link,
		ImageURL:      r.Thumbnail,
		Description:   description,
		Rating:        r.Rating.ptr(),
		InStock:       !r.OutOfStock,
	}
	if r.Reviews.Valid {
		n := int(r.Reviews.Value)
		l.ReviewCount = &n
	}
	return l
}

func firstValid(ns ...flexNumber) flexNumber {
	for _, n := range ns {
		if n.Valid {
			return n
		}
	}
	return flexNumber{}
}

// redactKey keeps the api key out of logged transport errors, which embed the URL.
func redactKey(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "REDACTED")
}
