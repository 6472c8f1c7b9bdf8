package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"mymoney/internal/api/handlers"
	"mymoney/internal/dto"
	"mymoney/internal/models"
	"mymoney/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(ctx context.Context, data []byte, mediaType string) (string, error) {
	return s.text, s.err
}

type stubParser struct {
	entries []service.Entry
	err     error
}

func (s *stubParser) ParseEntries(ctx context.Context, rawText string, mode models.DocumentMode) ([]service.Entry, error) {
	return s.entries, s.err
}

type stubInserter struct {
	calls int
}

func (s *stubInserter) CreateBatch(ctx context.Context, transactions []*models.Transaction) error {
	s.calls++
	return nil
}

func newExtractApp(extractor service.TextExtractor, parser service.EntryParser, inserter service.TransactionInserter) *fiber.App {
	logger := zap.NewNop()
	ingest := service.NewIngestService(extractor, parser, inserter, logger)
	handler := handlers.NewExtractHandler(ingest, logger)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uuid.New().String())
		return c.Next()
	})
	app.Post("/transaction/extract", handler.Extract)
	return app
}

func multipartUpload(t *testing.T, fieldContentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="receipt.png"`)
	header.Set("Content-Type", fieldContentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func doExtract(t *testing.T, app *fiber.App, url, fileType string) (*http.Response, map[string]any) {
	t.Helper()
	body, contentType := multipartUpload(t, fileType, []byte("file-bytes"))
	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func TestExtractHandler_Success(t *testing.T) {
	inserter := &stubInserter{}
	app := newExtractApp(
		&stubExtractor{text: "Coffee 150 Jan 5"},
		&stubParser{entries: []service.Entry{
			{Description: "Coffee", Amount: 150, Date: "2025-01-05", Category: "Food", Type: "expense"},
		}},
		inserter,
	)

	body, contentType := multipartUpload(t, "image/png", []byte("file-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/transaction/extract?type=receipt", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded dto.ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Len(t, decoded.Data, 1)
	assert.Equal(t, "Food", decoded.Data[0].Category)
	assert.Equal(t, "expense", decoded.Data[0].Type)
	assert.Equal(t, 1, inserter.calls)
}

func TestExtractHandler_RejectsUnsupportedFileType(t *testing.T) {
	inserter := &stubInserter{}
	app := newExtractApp(&stubExtractor{}, &stubParser{}, inserter)

	resp, decoded := doExtract(t, app, "/transaction/extract?type=receipt", "text/plain")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decoded["error"], "PDF")
	assert.Zero(t, inserter.calls)
}

func TestExtractHandler_RejectsBadMode(t *testing.T) {
	app := newExtractApp(&stubExtractor{}, &stubParser{}, &stubInserter{})

	resp, _ := doExtract(t, app, "/transaction/extract?type=invoice", "image/png")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtractHandler_ExtractionFailure(t *testing.T) {
	inserter := &stubInserter{}
	app := newExtractApp(
		&stubExtractor{err: &service.ExtractionError{Err: errors.New("corrupt document")}},
		&stubParser{},
		inserter,
	)

	resp, decoded := doExtract(t, app, "/transaction/extract?type=receipt", "application/pdf")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "OCR failed to extract text", decoded["error"])
	assert.Zero(t, inserter.calls)
}

func TestExtractHandler_StructuringFailureCarriesRawReply(t *testing.T) {
	inserter := &stubInserter{}
	app := newExtractApp(
		&stubExtractor{text: "text"},
		&stubParser{err: &service.StructuringError{
			RawReply: "I could not find any transactions.",
			Err:      errors.New("failed to parse response"),
		}},
		inserter,
	)

	resp, decoded := doExtract(t, app, "/transaction/extract?type=receipt", "image/png")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to parse AI response", decoded["error"])
	assert.Equal(t, "I could not find any transactions.", decoded["raw_response"])
	assert.Zero(t, inserter.calls)
}

func TestExtractHandler_MissingFile(t *testing.T) {
	app := newExtractApp(&stubExtractor{}, &stubParser{}, &stubInserter{})

	req := httptest.NewRequest(http.MethodPost, "/transaction/extract?type=receipt", bytes.NewReader(nil))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
