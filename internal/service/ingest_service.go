package service

import (
	"context"

	"mymoney/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TextExtractor is the stage-one dependency of the ingestion pipeline.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mediaType string) (string, error)
}

// EntryParser is the stage-two dependency of the ingestion pipeline.
type EntryParser interface {
	ParseEntries(ctx context.Context, rawText string, mode models.DocumentMode) ([]Entry, error)
}

// TransactionInserter is the persistence hand-off at the end of the
// pipeline.
type TransactionInserter interface {
	CreateBatch(ctx context.Context, transactions []*models.Transaction) error
}

// IngestService runs the upload-to-persisted pipeline: extract text,
// structure it into candidate entries, normalize, bulk insert. The
// stages are strictly sequential within one request and share no state
// across requests; a failure at any stage aborts with nothing written.
type IngestService struct {
	extractor TextExtractor
	parser    EntryParser
	txRepo    TransactionInserter
	logger    *zap.Logger
}

func NewIngestService(extractor TextExtractor, parser EntryParser, txRepo TransactionInserter, logger *zap.Logger) *IngestService {
	return &IngestService{
		extractor: extractor,
		parser:    parser,
		txRepo:    txRepo,
		logger:    logger,
	}
}

// Ingest processes one uploaded document for one user and returns the
// persisted transactions in the order the model reported them.
func (s *IngestService) Ingest(ctx context.Context, userID uuid.UUID, data []byte, mediaType string, mode models.DocumentMode) ([]*models.Transaction, error) {
	rawText, err := s.extractor.ExtractText(ctx, data, mediaType)
	if err != nil {
		return nil, err
	}

	// Empty text is a valid degenerate outcome; stage two still runs
	// and either returns zero entries or a structuring failure.
	entries, err := s.parser.ParseEntries(ctx, rawText, mode)
	if err != nil {
		return nil, err
	}

	transactions := NormalizeEntries(entries, userID, mode)

	if err := s.txRepo.CreateBatch(ctx, transactions); err != nil {
		return nil, err
	}

	s.logger.Info("Document ingested",
		zap.String("user_id", userID.String()),
		zap.String("mode", string(mode)),
		zap.Int("transactions", len(transactions)),
	)

	return transactions, nil
}
