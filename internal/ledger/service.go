package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/extract"
)

// ErrMissingInput indicates an empty company name or empty transaction text.
var ErrMissingInput = errors.New("ledger: company name and transaction text are required")

// minLineLength filters out trivially short lines before extraction runs.
const minLineLength = 15

// Service runs the batch processor over a session's transaction list.
type Service struct {
	store     *Store
	extractor *extract.Extractor
	logger    *slog.Logger
	newID     func() string
}

// NewService constructs a Service.
func NewService(store *Store, extractor *extract.Extractor, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// WithIDGenerator overrides transaction ID generation, for tests.
func (s *Service) WithIDGenerator(gen func() string) {
	if gen != nil {
		s.newID = gen
	}
}

// BatchInput is one processing request: a company label applied to the whole
// batch plus the raw multi-line transaction text.
type BatchInput struct {
	Company string
	Text    string
}

// BatchResult reports what a batch run did. Lines that yielded no amount are
// dropped silently and are not counted anywhere.
type BatchResult struct {
	Accepted      int
	Total         int
	QuotaExceeded bool
}

// ProcessBatch extracts transactions from the input text and appends them to
// the session's list, clipping the batch when it would exceed the plan's
// transaction quota.
func (s *Service) ProcessBatch(ctx context.Context, sessionID string, plan billing.Plan, input BatchInput) (BatchResult, error) {
	company := strings.TrimSpace(input.Company)
	text := strings.TrimSpace(input.Text)
	if company == "" || text == "" {
		return BatchResult{}, ErrMissingInput
	}

	count, err := s.store.Count(ctx, sessionID)
	if err != nil {
		return BatchResult{}, err
	}
	if !plan.Allows(count + 1) {
		return BatchResult{Total: count, QuotaExceeded: true}, nil
	}

	var parsed []Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minLineLength {
			continue
		}
		fields := s.extractor.Line(line)
		if fields.Amount <= 0 {
			continue
		}
		clientName := fields.ClientName
		if clientName == "" {
			clientName = DefaultClientName
		}
		parsed = append(parsed, Transaction{
			ID:           s.newID(),
			Date:         fields.Date,
			Company:      company,
			Description:  line,
			Amount:       fields.Amount,
			DetectedType: fields.Type,
			OriginalText: line,
			ClientName:   clientName,
			Concept:      fields.Concept,
			PaymentTerms: fields.PaymentTerms,
		})
	}
	if len(parsed) == 0 {
		return BatchResult{Total: count}, nil
	}

	quotaHit := false
	if !plan.Allows(count + len(parsed)) {
		parsed = parsed[:plan.TransactionLimit-count]
		quotaHit = true
	}

	stored, err := s.store.Append(ctx, sessionID, parsed)
	if err != nil {
		return BatchResult{}, err
	}
	if s.logger != nil {
		s.logger.Info("batch processed",
			slog.Int("accepted", len(parsed)),
			slog.Int("total", len(stored)),
			slog.Bool("quota_hit", quotaHit),
		)
	}
	return BatchResult{Accepted: len(parsed), Total: len(stored), QuotaExceeded: quotaHit}, nil
}

// List returns the session's stored transactions.
func (s *Service) List(ctx context.Context, sessionID string) ([]Transaction, error) {
	return s.store.List(ctx, sessionID)
}

// Remove deletes one transaction by ID.
func (s *Service) Remove(ctx context.Context, sessionID, id string) error {
	return s.store.Remove(ctx, sessionID, id)
}

// Clear drops the session's transaction list. Logout runs this so a reused
// session ID never sees another visitor's transactions.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Journal regenerates the journal from the current transaction list.
func (s *Service) Journal(ctx context.Context, sessionID string) ([]JournalEntry, error) {
	txns, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return GenerateJournal(txns), nil
}
