package domain

import "strings"

// ImageDescriptor is one image found on a scanned page.
type ImageDescriptor struct {
	URL                string `json:"url"`
	CurrentDescription string `json:"current_alt,omitempty"`
	Locator            string `json:"selector,omitempty"`
	ElementID          string `json:"element_id"`
}

// HasDescription reports whether the image already carries usable alt text.
func (d ImageDescriptor) HasDescription() bool {
	return strings.TrimSpace(d.CurrentDescription) != ""
}

// GenerationStatus tells apart the ways a generation attempt can end.
type GenerationStatus string

const (
	StatusGenerated GenerationStatus = "generated"
	StatusFailed    GenerationStatus = "failed"
	StatusCached    GenerationStatus = "cached"
)

// GenerationResult is the generator output for one image URL.
type GenerationResult struct {
	URL      string           `json:"url"`
	Text     string           `json:"alt_text"`
	Status   GenerationStatus `json:"status"`
	Attempts int              `json:"attempts,omitempty"`
}

// OK reports whether the result carries model output.
func (r GenerationResult) OK() bool {
	return r.Status == StatusGenerated || r.Status == StatusCached
}

// BatchEntry is one row of a BatchRecord.
type BatchEntry struct {
	URL           string           `json:"url"`
	Locator       string           `json:"selector"`
	ElementID     string           `json:"element_id"`
	GeneratedText string           `json:"generated_alt_text"`
	Status        GenerationStatus `json:"status"`
}

// BatchRecord is the durable output of a batch run.
type BatchRecord struct {
	SiteURL         string       `json:"site_url"`
	ImagesProcessed int          `json:"images_processed"`
	Results         []BatchEntry `json:"results"`
}

// ApplyAssignment is a single (locator, text) pair to write into a live document.
type ApplyAssignment struct {
	Locator   string `json:"selector"`
	ElementID string `json:"element_id"`
	Text      string `json:"alt_text"`
}

// ApplyReport summarises an apply run.
type ApplyReport struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
