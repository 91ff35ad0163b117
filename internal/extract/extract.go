// Package extract turns a free-text expense description into validated
// transaction candidates via an external text-generation service. It never
// touches the store; the caller decides what to do with the candidates.
package extract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// DefaultTimeout bounds the one unbounded-latency call this service makes.
const DefaultTimeout = 30 * time.Second

// Request is one extraction: the user's free text plus the as-of timestamp
// that resolves relative or unstated dates.
type Request struct {
	Text string
	AsOf time.Time
}

// Extractor drives the generator and defensively re-validates everything
// it returns.
type Extractor struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
}

// New creates an extractor around a generator.
func New(gen Generator, log zerolog.Logger) *Extractor {
	return &Extractor{gen: gen, timeout: DefaultTimeout, log: log}
}

// WithTimeout overrides the per-call deadline.
func (e *Extractor) WithTimeout(d time.Duration) *Extractor {
	e.timeout = d
	return e
}

// Extract sends the request to the model and returns the candidate drafts,
// in the order the model produced them. Failure modes:
//
//   - domain.Errors when the request itself is malformed (empty text);
//   - *RefusalError when the upstream declares there is no expense data;
//   - ErrService (wrapped) for transport failures, timeouts, malformed
//     output, or candidates that break the schema contract.
func (e *Extractor) Extract(ctx context.Context, req Request) ([]domain.Draft, error) {
	if req.Text == "" {
		return nil, domain.Errors{{Field: "text", Code: "InvalidText", Reason: "transactions description is required"}}
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.gen.Generate(ctx, buildPrompt(asOf), req.Text)
	if err != nil {
		return nil, serviceErr("call generation service", err)
	}

	clean := cleanModelJSON(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		e.log.Warn().Err(err).Str("raw", raw).Msg("Model returned unparseable JSON")
		return nil, serviceErr("unmarshal model output", err)
	}

	if reason, ok := parsed["refusal"].(string); ok {
		return nil, &RefusalError{Reason: reason}
	}

	candidates, err := decodeCandidates(parsed, asOf)
	if err != nil {
		return nil, serviceErr("decode model output", err)
	}

	// The upstream's structural guarantees are not trusted: every candidate
	// goes through the same validator a hand-entered transaction would.
	// A non-integer amount is a hard failure here, not a warning.
	drafts := make([]domain.Draft, 0, len(candidates))
	for i, c := range candidates {
		draft := domain.Draft{
			Date:        c.date,
			Category:    c.category,
			Description: c.description,
		}
		if c.hasAmount {
			draft.Amount = &c.amount
		}
		if _, errs := draft.Validate(); errs != nil {
			e.log.Warn().Int("candidate", i).Str("detail", errs.Error()).Msg("Model candidate failed validation")
			return nil, serviceErr("validate model candidate", errs)
		}
		drafts = append(drafts, draft)
	}

	e.log.Info().Int("candidates", len(drafts)).Msg("Extraction succeeded")
	return drafts, nil
}
