package fal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/domain"
)

func unmarshalRaw(t *testing.T, payload string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return raw
}

func TestDecodeResultWellFormed(t *testing.T) {
	raw := unmarshalRaw(t, `{"images":[{"file_name":"a.png","content_type":"image/png","url":"https://x/a.png"}],"description":"d"}`)

	result, err := DecodeResult(raw)
	if err != nil {
		t.Fatalf("DecodeResult error: %v", err)
	}
	if len(result.Images) != 1 {
		t.Fatalf("unexpected image count: %d", len(result.Images))
	}
	img := result.Images[0]
	if img.ID() != "https://x/a.png" {
		t.Fatalf("image id mismatch: %s", img.ID())
	}
	if img.FileName != "a.png" || img.ContentType != "image/png" {
		t.Fatalf("image fields mismatch: %+v", img)
	}
	if result.Description != "d" {
		t.Fatalf("description mismatch: %q", result.Description)
	}
}

func TestDecodeResultOmittedDescription(t *testing.T) {
	raw := unmarshalRaw(t, `{"images":[{"file_name":"a.png","content_type":"image/png","url":"https://x/a.png"}]}`)

	result, err := DecodeResult(raw)
	if err != nil {
		t.Fatalf("DecodeResult error: %v", err)
	}
	if result.Description != "" {
		t.Fatalf("expected empty description, got %q", result.Description)
	}
}

func TestDecodeResultNonStringDescription(t *testing.T) {
	raw := unmarshalRaw(t, `{"images":[],"description":42}`)

	result, err := DecodeResult(raw)
	if err != nil {
		t.Fatalf("DecodeResult error: %v", err)
	}
	if result.Description != "" {
		t.Fatalf("expected empty description, got %q", result.Description)
	}
}

func TestDecodeResultMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		kind    domain.DecodeKind
		value   string
	}{
		{name: "array root", payload: `[]`, kind: domain.DecodeInvalidRoot},
		{name: "missing images", payload: `{"description":"d"}`, kind: domain.DecodeMissingImages},
		{name: "images as string", payload: `{"images":"nope"}`, kind: domain.DecodeInvalidImages},
		{name: "item not object", payload: `{"images":["nope"]}`, kind: domain.DecodeInvalidImageItem},
		{name: "item missing url", payload: `{"images":[{"file_name":"a.png","content_type":"image/png"}]}`, kind: domain.DecodeInvalidImageItem},
		{name: "item numeric file name", payload: `{"images":[{"url":"https://x/a.png","file_name":7,"content_type":"image/png"}]}`, kind: domain.DecodeInvalidImageItem},
		{name: "relative url", payload: `{"images":[{"url":"not a url","file_name":"a.png","content_type":"image/png"}]}`, kind: domain.DecodeInvalidURL, value: "not a url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeResult(unmarshalRaw(t, tc.payload))
			var decodeErr *domain.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decodeErr.Kind != tc.kind {
				t.Fatalf("kind mismatch: got %s want %s", decodeErr.Kind, tc.kind)
			}
			if decodeErr.Value != tc.value {
				t.Fatalf("value mismatch: got %q want %q", decodeErr.Value, tc.value)
			}
		})
	}
}
