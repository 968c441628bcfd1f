package domain

// GeneratedImage is one produced image. The URL doubles as the image's
// identity: two images with the same URL are the same entity.
type GeneratedImage struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// ID returns the stable identity of the image.
func (g GeneratedImage) ID() string { return g.URL }

// GeneratedImageResult is the decoded terminal payload of a generation job.
type GeneratedImageResult struct {
	Images      []GeneratedImage `json:"images"`
	Description string           `json:"description"`
}
