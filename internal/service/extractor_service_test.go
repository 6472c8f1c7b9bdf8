package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mymoney/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildPDF assembles a minimal PDF with one Helvetica text line per
// page. The xref table is computed from the serialized object offsets,
// so the fixture stays valid when page text changes.
func buildPDF(pageTexts ...string) []byte {
	kids := make([]string, len(pageTexts))
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageTexts)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, text := range pageTexts {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i,
		))
		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return buf.Bytes()
}

func TestExtractorService_ExtractText_PDF(t *testing.T) {
	svc := NewExtractorService(&config.OCRConfig{Language: "eng"}, zap.NewNop())
	ctx := context.Background()

	t.Run("pages come out in document order joined by a newline", func(t *testing.T) {
		data := buildPDF("alpha market receipt", "beta utility statement")

		text, err := svc.ExtractText(ctx, data, "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "alpha market receipt\nbeta utility statement", text)
	})

	t.Run("readable PDF with no text is empty and not an error", func(t *testing.T) {
		text, err := svc.ExtractText(ctx, buildPDF(""), "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "", text)
	})
}

func TestExtractorService_ExtractText_Rejections(t *testing.T) {
	svc := NewExtractorService(&config.OCRConfig{Language: "eng"}, zap.NewNop())
	ctx := context.Background()

	t.Run("empty buffer", func(t *testing.T) {
		_, err := svc.ExtractText(ctx, nil, "application/pdf")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		tests := []string{"text/plain", "application/zip", "video/mp4", ""}
		for _, mediaType := range tests {
			_, err := svc.ExtractText(ctx, []byte("data"), mediaType)
			assert.ErrorIs(t, err, ErrUnsupportedMediaType, "media type %q", mediaType)
		}
	})

	t.Run("corrupt pdf is an extraction failure", func(t *testing.T) {
		_, err := svc.ExtractText(ctx, []byte("not a pdf at all"), "application/pdf")
		require.Error(t, err)
		var extractErr *ExtractionError
		assert.True(t, errors.As(err, &extractErr))
	})
}
