package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mymoney/internal/models"

	"go.uber.org/zap"
)

// Entry is one transaction-shaped record as emitted by the model.
// Category is unvalidated free text until normalization.
type Entry struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

// CompletionClient is the single-turn completion dependency of the
// parser; LLMService satisfies it and tests substitute fakes.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ParserService turns raw document text into candidate entries by way
// of a constrained completion prompt.
type ParserService struct {
	llm    CompletionClient
	logger *zap.Logger
}

func NewParserService(llm CompletionClient, logger *zap.Logger) *ParserService {
	return &ParserService{
		llm:    llm,
		logger: logger,
	}
}

// ParseEntries sends the extracted text through the completion service
// and parses the reply as a JSON array of entries. Any service error
// or non-array reply is a structuring failure; malformed replies carry
// the raw content for diagnostics rather than being coerced into zero
// records.
func (s *ParserService) ParseEntries(ctx context.Context, rawText string, mode models.DocumentMode) ([]Entry, error) {
	prompt := buildExtractionPrompt(rawText, mode, time.Now())

	content, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, &StructuringError{Err: fmt.Errorf("extraction service failed: %w", err)}
	}

	jsonText := stripCodeFence(content)

	var entries []Entry
	if err := json.Unmarshal([]byte(jsonText), &entries); err != nil {
		return nil, &StructuringError{
			RawReply: content,
			Err:      fmt.Errorf("failed to parse response: %w", err),
		}
	}

	s.logger.Info("Entries parsed from document text",
		zap.String("mode", string(mode)),
		zap.Int("count", len(entries)),
	)

	return entries, nil
}

// buildExtractionPrompt fixes the output shape to a bare JSON array,
// states the type policy for the mode, and enumerates the allowed
// taxonomy verbatim with Miscellaneous as the fallback.
func buildExtractionPrompt(rawText string, mode models.DocumentMode, now time.Time) string {
	formattedDate := now.Format("2006-01-02")

	quoted := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	formattedCategories := strings.Join(quoted, ", ")

	typeNote := `Set "type" to "income" if it's money coming in, or "expense" if it's going out.`
	if mode == models.DocumentModeReceipt {
		typeNote = `Set "type" to "expense" for all entries.`
	}

	return fmt.Sprintf(`You are a strict JSON financial entry extractor.

Given the following unstructured OCR text, extract a JSON array in the format:
[
  {
    "description": "Item or transaction",
    "amount": 123,
    "date": "%s",
    "category": "<MUST_BE_FROM_ALLOWED_CATEGORIES>",
    "type": "income" or "expense"
  }
]

Rules:
- %s
- The "category" field MUST strictly be one of ONLY the following (copy-paste exactly):
  %s
- DO NOT invent new categories. If unsure, use %q.
- No explanation, no markdown, no extra text - just the JSON array.

OCR Text:
%s`, formattedDate, typeNote, formattedCategories, models.DefaultCategory, rawText)
}

// stripCodeFence removes a markdown code-fence wrapper the model may
// emit despite instructions. Unfenced content passes through intact.
func stripCodeFence(content string) string {
	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
