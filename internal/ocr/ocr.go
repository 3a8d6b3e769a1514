//go:build ocr

// Package ocr recognizes text lines in scanned page images.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations. Calls are serialized because a
// Tesseract handle holds the current image.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Open creates a client recognizing the given languages, e.g. "eng" or "deu+eng".
func Open(lang string) (*Client, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	if lang != "" {
		if err := c.SetLanguage(lang); err != nil {
			c.Close()
			return nil, fmt.Errorf("set ocr language %q: %w", lang, err)
		}
	}
	return c, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// SetLanguage sets the recognition language(s), e.g. "eng" or "deu+eng".
func (c *Client) SetLanguage(langs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetLanguage(langs...)
}

// RecognizeLines performs OCR on image data (PNG, TIFF, JPEG, etc.) and
// returns the text lines in reading order.
func (c *Client) RecognizeLines(imageData []byte) ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := c.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:     b.Word,
			MinX:     b.Box.Min.X,
			MaxX:     b.Box.Max.X,
			MinY:     b.Box.Min.Y,
			BlockNum: b.BlockNum,
			ParNum:   b.ParNum,
			LineNum:  b.LineNum,
		})
	}
	return GroupLines(words), nil
}
