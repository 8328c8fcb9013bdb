package model

// Listing is one retailer search hit before it is ingested into the catalog.
type Listing struct {
	Retailer      string   `json:"retailer"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	URL           string   `json:"url"`
	ImageURL      string   `json:"image_url"`
	Description   string   `json:"description"`
	Condition     string   `json:"condition,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	InStock       bool     `json:"in_stock"`
}
