package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"pricecompare/internal/misc"
	"pricecompare/internal/model"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrEbay = errors.Wrap(ErrUpstream, "eBay error")
var ErrEbayUnauthorized = errors.Wrap(ErrEbay, "eBay credentials rejected")

const (
	ebayTokenCacheKey = "ebay:token"
	ebayTokenMaxTTL   = time.Hour
	ebayScope         = "https://api.ebay.com/oauth/api_scope"
)

type ebayTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type ebaySearchResponse struct {
	Total         int               `json:"total"`
	ItemSummaries []ebayItemSummary `json:"itemSummaries"`
}

type ebayItemSummary struct {
	ItemID           string    `json:"itemId"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	Price            flexNumber `json:"price"`
	MarketingPrice   struct {
		OriginalPrice flexNumber `json:"originalPrice"`
	} `json:"marketingPrice"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	ItemWebURL string `json:"itemWebUrl"`
	Condition  string `json:"condition"`
}

// EbaySearch queries the eBay Browse API for fixed price listings.
func (c Client) EbaySearch(ctx context.Context, query string, limit int) ([]model.Listing, error) {
	if !c.ebayEnabled() {
		return nil, errors.Wrap(ErrEbay, "eBay credentials not configured")
	}
	token, err := c.ebayGetToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("filter", "buyingOptions:{FIXED_PRICE}")
	apiURL := c.URLs.EbaySearch + "?" + params.Encode()

	req, err := newRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "EbaySearch: error creating request to URL: %s", apiURL)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.Config.EbayMarketplaceID)

	c.Logger.Infof("EbaySearch: Sending request, query: %s, limit: %d", query, limit)
	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrEbay, "error doing search request, query: %s, err: %v", query, err)
	}
	defer c.closeBody("EbaySearch", resp)

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 2<<20))
	if err != nil {
		return nil, errors.Wrapf(ErrEbay, "error reading search response body, status: %s, err: %v", resp.Status, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.ebayDropToken(ctx)
		return nil, errors.Wrapf(ErrEbayUnauthorized, "status: %s, body: %s", resp.Status, misc.BytesLimit(body, 200))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrEbay, "search failed, status: %s, body: %s", resp.Status, misc.BytesLimit(body, 200))
	}

	var ebayResp ebaySearchResponse
	if err = json.Unmarshal(body, &ebayResp); err != nil {
		return nil, errors.Wrapf(ErrEbay, "error unmarshalling search response body: %s, err: %v", misc.BytesLimit(body, 200), err)
	}

	listings := make([]model.Listing, 0, len(ebayResp.ItemSummaries))
	for _, item := range ebayResp.ItemSummaries {
		listings = append(listings, item.toListing(c.Logger))
	}
	return listings, nil
}

func (item ebayItemSummary) toListing(l logger) model.Listing {
	description := "eBay Listing"
	if item.Condition != "" {
		description = "Condition: " + item.Condition
	}
	if item.ShortDescription != "" {
		if text, err := HTMLToText(item.ShortDescription); err != nil {
			l.Warnf("EbaySearch: Error parsing description, itemId: %s, err: %v", item.ItemID, err)
		} else if text != "" {
			description = text
		}
	}
	return model.Listing{
		Retailer:      string(SourceEbay),
		Title:         misc.RuneLimit(strings.TrimSpace(item.Title), 200),
		Price:         item.Price.Value,
		OriginalPrice: item.MarketingPrice.OriginalPrice.ptr(),
		URL:           item.ItemWebURL,
		ImageURL:      item.Image.ImageURL,
		Description:   description,
		Condition:     item.Condition,
		InStock:       true,
	}
}

// ebayGetToken returns an OAuth application token, reusing a cached one while it is
// valid. The process cache is checked first, then redis.
func (c Client) ebayGetToken(ctx context.Context) (string, error) {
	c.ebayToken.mu.Lock()
	defer c.ebayToken.mu.Unlock()

	now := time.Now()
	if c.ebayToken.token != "" && now.Before(c.ebayToken.expires) {
		return c.ebayToken.token, nil
	}
	if c.Redis != nil {
		token, err := c.Redis.Get(ctx, ebayTokenCacheKey).Result()
		if err == nil && token != "" {
			ttl, err := c.Redis.TTL(ctx, ebayTokenCacheKey).Result()
			if err == nil && ttl > 0 {
				c.ebayToken.token, c.ebayToken.expires = token, now.Add(ttl)
				return token, nil
			}
		}
	}

	token, ttl, err := c.ebayRequestToken(ctx)
	if err != nil {
		return "", err
	}
	c.ebayToken.token, c.ebayToken.expires = token, now.Add(ttl)
	if c.Redis != nil {
		if err = c.Redis.Set(ctx, ebayTokenCacheKey, token, ttl).Err(); err != nil {
			c.Logger.Errorf("ebayGetToken: Error caching token in Redis, err: %v", err)
		}
	}
	return token, nil
}

func (c Client) ebayDropToken(ctx context.Context) {
	c.ebayToken.mu.Lock()
	c.ebayToken.token = ""
	c.ebayToken.mu.Unlock()
	if c.Redis != nil {
		if err := c.Redis.Del(ctx, ebayTokenCacheKey).Err(); err != nil {
			c.Logger.Errorf("ebayDropToken: Error deleting token from Redis, err: %v", err)
		}
	}
}

func (c Client) ebayRequestToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", ebayScope)

	req, err := newRequest(ctx, http.MethodPost, c.URLs.EbayToken, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, errors.Wrapf(err, "ebayRequestToken: error creating request to URL: %s", c.URLs.EbayToken)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.Config.EbayClientID, c.Config.EbayClientSecret)

	c.Logger.Infof("ebayRequestToken: Requesting new OAuth token")
	resp, err := c.Do(req)
	if err != nil {
		return "", 0, errors.Wrapf(ErrEbay, "error doing token request, err: %v", err)
	}
	defer c.closeBody("ebayRequestToken", resp)

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 64<<10))
	if err != nil {
		return "", 0, errors.Wrapf(ErrEbay, "error reading token response body, status: %s, err: %v", resp.Status, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return "", 0, errors.Wrapf(ErrEbayUnauthorized, "status: %s, body: %s", resp.Status, misc.BytesLimit(body, 200))
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, errors.Wrapf(ErrEbay, "token request failed, status: %s, body: %s", resp.Status, misc.BytesLimit(body, 200))
	}

	var tokenResp ebayTokenResponse
	if err = json.Unmarshal(body, &tokenResp); err != nil {
		return "", 0, errors.Wrapf(ErrEbay, "error unmarshalling token response, err: %v", err)
	}
	if tokenResp.AccessToken == "" {
		return "", 0, errors.Wrap(ErrEbay, "token response has no access_token")
	}

	ttl := ebayTokenMaxTTL
	if expiresIn := time.Duration(tokenResp.ExpiresIn) * time.Second; expiresIn > 0 && expiresIn/2 < ttl {
		ttl = expiresIn / 2
	}
	return tokenResp.AccessToken, ttl, nil
}
