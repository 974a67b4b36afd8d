package api

import "encoding/json"

type analyzeRequest struct {
	SiteURL string   `json:"site_url"`
	Pages   []string `json:"pages"`
}

type imageResponse struct {
	URL        string `json:"url"`
	Selector   string `json:"selector"`
	ElementID  string `json:"element_id"`
	CurrentAlt string `json:"current_alt"`
}

type analyzeResponse struct {
	SiteURL          string          `json:"site_url"`
	PagesAnalyzed    []string        `json:"pages_analyzed"`
	ImagesWithoutAlt []imageResponse `json:"images_without_alt"`
	TotalFound       int             `json:"total_found"`
}

type generateRequest struct {
	ImageURL string `json:"image_url"`
	Context  string `json:"context"`
}

type generateResponse struct {
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
	Status   string `json:"status"`
	Cached   bool   `json:"cached"`
}

// batchRequest keeps images raw so a non-array value can be reported.
type batchRequest struct {
	Images json.RawMessage `json:"images"`
}

type batchItem struct {
	URL     string `json:"url"`
	Context string `json:"context"`
}

type batchResult struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
	Status  string `json:"status"`
	Cached  bool   `json:"cached"`
}

type batchResponse struct {
	Results        []batchResult `json:"results"`
	TotalProcessed int           `json:"total_processed"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Model   string `json:"model,omitempty"`
	Cache   string `json:"cache"`
}

type messageResponse struct {
	Message string `json:"message"`
}
