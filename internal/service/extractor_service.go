package service

import (
	"context"
	"strings"

	"mymoney/pkg/config"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// ExtractorService turns an uploaded document into plain text. PDFs
// are read page by page with go-fitz; images go through tesseract.
// The document never touches disk, it lives as a request-scoped byte
// slice only.
type ExtractorService struct {
	language string
	logger   *zap.Logger
}

func NewExtractorService(cfg *config.OCRConfig, logger *zap.Logger) *ExtractorService {
	return &ExtractorService{
		language: cfg.Language,
		logger:   logger,
	}
}

// ExtractText extracts plain text from the document bytes. An empty
// result is valid: a readable document with no recognizable text is
// not an extraction failure. Corrupt documents and unsupported media
// types fail distinctly.
func (s *ExtractorService) ExtractText(ctx context.Context, data []byte, mediaType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	var text string
	var err error

	switch {
	case mediaType == "application/pdf":
		text, err = s.extractPDFText(data)
	case strings.HasPrefix(mediaType, "image/"):
		text, err = s.extractImageText(data)
	default:
		return "", ErrUnsupportedMediaType
	}

	if err != nil {
		return "", &ExtractionError{Err: err}
	}

	s.logger.Info("Text extraction completed",
		zap.String("media_type", mediaType),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

// extractPDFText walks pages in document order and joins their text
// with a newline, so multi-page statements keep their line order.
func (s *ExtractorService) extractPDFText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", err
		}
		pages = append(pages, strings.TrimSpace(pageText))
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

func (s *ExtractorService) extractImageText(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(s.language); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}
