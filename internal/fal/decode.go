package fal

import (
	"net/url"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/domain"
)

// DecodeResult parses the loosely-typed completion payload a finished job
// leaves at its response URL. The payload is whatever encoding/json produced
// for an unknown schema, so raw is expected to be a map[string]any tree.
//
// Images are validated strictly; description is cosmetic and falls back to ""
// when absent or mistyped.
func DecodeResult(raw any) (*domain.GeneratedImageResult, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, &domain.DecodeError{Kind: domain.DecodeInvalidRoot}
	}

	rawImages, ok := root["images"]
	if !ok {
		return nil, &domain.DecodeError{Kind: domain.DecodeMissingImages}
	}
	items, ok := rawImages.([]any)
	if !ok {
		return nil, &domain.DecodeError{Kind: domain.DecodeInvalidImages}
	}

	images := make([]domain.GeneratedImage, 0, len(items))
	for _, item := range items {
		img, err := decodeImage(item)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	description, _ := root["description"].(string)

	return &domain.GeneratedImageResult{Images: images, Description: description}, nil
}

func decodeImage(item any) (domain.GeneratedImage, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return domain.GeneratedImage{}, &domain.DecodeError{Kind: domain.DecodeInvalidImageItem}
	}

	rawURL, ok := obj["url"].(string)
	if !ok {
		return domain.GeneratedImage{}, &domain.DecodeError{Kind: domain.DecodeInvalidImageItem}
	}
	fileName, ok := obj["file_name"].(string)
	if !ok {
		return domain.GeneratedImage{}, &domain.DecodeError{Kind: domain.DecodeInvalidImageItem}
	}
	contentType, ok := obj["content_type"].(string)
	if !ok {
		return domain.GeneratedImage{}, &domain.DecodeError{Kind: domain.DecodeInvalidImageItem}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return domain.GeneratedImage{}, &domain.DecodeError{Kind: domain.DecodeInvalidURL, Value: rawURL}
	}

	return domain.GeneratedImage{
		URL:         rawURL,
		FileName:    fileName,
		ContentType: contentType,
	}, nil
}
