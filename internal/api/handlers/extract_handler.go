package handlers

import (
	"errors"
	"io"
	"time"

	"mymoney/internal/dto"
	"mymoney/internal/models"
	"mymoney/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// allowedMediaTypes mirrors the file-intake policy: images and PDFs
// only. Anything else is rejected before the pipeline runs.
var allowedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
}

type ExtractHandler struct {
	ingestService *service.IngestService
	logger        *zap.Logger
}

func NewExtractHandler(ingestService *service.IngestService, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// Extract godoc
// @Summary Extract transactions from a document
// @Description Upload a receipt or statement (image/PDF); its text is extracted, structured by the model, validated, and stored
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt or statement (image or PDF)"
// @Param type query string false "receipt or statement" default(receipt)
// @Security Bearer
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /transaction/extract [post]
func (h *ExtractHandler) Extract(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	mode := models.DocumentMode(c.Query("type", string(models.DocumentModeReceipt)))
	if mode != models.DocumentModeReceipt && mode != models.DocumentModeStatement {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Type must be receipt or statement",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image or PDF uploaded",
		})
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedMediaTypes[mediaType]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only image files and PDFs are allowed",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	transactions, err := h.ingestService.Ingest(c.Context(), userID, data, mediaType, mode)
	if err != nil {
		return h.ingestError(c, err)
	}

	responses := make([]dto.TransactionResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = dto.TransactionResponse{
			ID:          tx.ID.String(),
			Type:        string(tx.Type),
			Category:    tx.Category,
			Amount:      tx.Amount,
			Description: tx.Description,
			Date:        tx.Date.Format("2006-01-02"),
			CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		}
	}

	return c.JSON(dto.ExtractResponse{
		Message: "Expenses extracted and stored successfully",
		Data:    responses,
	})
}

// ingestError maps a stage failure to a status code: bad documents are
// the client's to fix, service outages are ours.
func (h *ExtractHandler) ingestError(c *fiber.Ctx, err error) error {
	var extractionErr *service.ExtractionError
	var structuringErr *service.StructuringError

	switch {
	case errors.Is(err, service.ErrEmptyDocument), errors.Is(err, service.ErrUnsupportedMediaType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only image files and PDFs are allowed",
		})
	case errors.As(err, &extractionErr):
		h.logger.Warn("Document extraction failed", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "OCR failed to extract text",
		})
	case errors.As(err, &structuringErr):
		h.logger.Error("Entry structuring failed",
			zap.Error(structuringErr.Err),
			zap.String("raw_reply", structuringErr.RawReply),
		)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":        "Failed to parse AI response",
			"raw_response": structuringErr.RawReply,
		})
	}

	h.logger.Error("Failed to store extracted transactions", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
