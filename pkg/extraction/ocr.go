package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCREngine recognizes card text with Tesseract
type OCREngine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewOCREngine creates a Tesseract-backed recognizer. Languages default to eng.
func NewOCREngine(languages []string) *OCREngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &OCREngine{languages: languages, clientFactory: gosseract.NewClient}
}

// Recognize returns the plain text found on the image
func (e *OCREngine) Recognize(ctx context.Context, image Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image.Data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
