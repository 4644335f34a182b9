package minwon

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/minwon/pkg/minwon/classify"
	"github.com/cognicore/minwon/pkg/minwon/ingest"
	"github.com/cognicore/minwon/pkg/minwon/internalerr"
	"github.com/cognicore/minwon/pkg/minwon/morph"
	"github.com/cognicore/minwon/pkg/minwon/store"
)

// DefaultCategory labels complaints that could not be classified.
const DefaultCategory = "기타"

var (
	defaultOnce     sync.Once
	defaultPipeline *ingest.Pipeline
)

// DefaultPipeline returns the process-wide pipeline built from the built-in
// analyzer and keyword sets. It is constructed on first use.
func DefaultPipeline() *ingest.Pipeline {
	defaultOnce.Do(func() {
		defaultPipeline = ingest.NewPipeline(
			ingest.NewSummarizer(morph.Default(), ingest.DefaultKeywordSets()),
		)
	})
	return defaultPipeline
}

// GenerateComplaintTitle returns "[category] summary / short address" for a
// complaint using the default pipeline. It never fails.
func GenerateComplaintTitle(text, address, category string) string {
	return DefaultPipeline().Title(text, address, category)
}

// Recorder receives service-level events. *metrics.Exporter satisfies it.
type Recorder interface {
	RecordComplaintSaved()
}

// Service stores complaints with generated titles and agency routing.
type Service struct {
	store      store.Store
	pipeline   *ingest.Pipeline
	classifier classify.Classifier
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Service
type Options struct {
	Store      store.Store
	Pipeline   *ingest.Pipeline    // nil uses DefaultPipeline()
	Classifier classify.Classifier // nil disables classification
	Recorder   Recorder
	Logger     *slog.Logger
	Now        func() time.Time
}

// New creates a Service with the given dependencies
func New(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		pipeline:   opts.Pipeline,
		classifier: opts.Classifier,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		now:        opts.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if s.pipeline == nil {
		s.pipeline = DefaultPipeline()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Close releases the underlying store
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Title composes a title without storing anything.
func (s *Service) Title(c ingest.Complaint) ingest.Composed {
	return s.pipeline.Compose(c)
}

// SubmitRequest is a complaint as received from a citizen
type SubmitRequest struct {
	Text     string
	Address  string
	Category string // empty asks the classifier
}

// Submit strips markup, fills in the category, composes the title and stores
// the result.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (store.Complaint, error) {
	if s.store == nil {
		return store.Complaint{}, internalerr.ErrStoreUnavailable
	}
	text := ingest.StripMarkup(req.Text)
	if strings.TrimSpace(text) == "" {
		return store.Complaint{}, fmt.Errorf("%w: empty complaint text", internalerr.ErrInvalidInput)
	}

	category := strings.TrimSpace(req.Category)
	var verdict *store.Verdict
	if category == "" {
		var v *classify.Verdict
		category, v = s.Categorize(ctx, text)
		verdict = toStoreVerdict(v)
	}

	composed := s.pipeline.Compose(ingest.Complaint{
		Text:     text,
		Address:  req.Address,
		Category: category,
	})

	now := s.now()
	rec := store.Complaint{
		ID:           s.newID(now),
		Text:         text,
		Address:      req.Address,
		Category:     category,
		Title:        composed.Title,
		Summary:      composed.Summary,
		Tier:         composed.Tier.String(),
		ShortAddress: composed.ShortAddress,
		Verdict:      verdict,
		CreatedAt:    now,
	}
	if err := s.store.SaveComplaint(ctx, rec); err != nil {
		return store.Complaint{}, fmt.Errorf("save complaint: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordComplaintSaved()
	}
	s.logger.Info("complaint_submitted",
		"id", rec.ID,
		"category", rec.Category,
		"tier", rec.Tier,
		"classified", verdict != nil)
	return rec, nil
}

// Categorize asks the classifier for a category. A missing classifier, a
// classifier error or a blank category yields DefaultCategory; the verdict is
// nil unless classification succeeded.
func (s *Service) Categorize(ctx context.Context, text string) (string, *classify.Verdict) {
	if s.classifier == nil {
		return DefaultCategory, nil
	}
	v, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("classify_fallback", "error", err)
		return DefaultCategory, nil
	}
	category := strings.TrimSpace(v.Category)
	if category == "" {
		category = DefaultCategory
	}
	return category, &v
}

func toStoreVerdict(v *classify.Verdict) *store.Verdict {
	if v == nil {
		return nil
	}
	return &store.Verdict{
		AgencyName: v.AgencyName,
		AgencyCode: v.AgencyCode,
		Confidence: v.Confidence,
		Reasoning:  v.Reasoning,
		Sources:    v.Sources,
	}
}

func (s *Service) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Get returns a stored complaint by ID
func (s *Service) Get(ctx context.Context, id string) (store.Complaint, error) {
	if s.store == nil {
		return store.Complaint{}, internalerr.ErrStoreUnavailable
	}
	return s.store.GetComplaint(ctx, id)
}

// Recent returns up to limit complaints, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]store.Complaint, error) {
	if s.store == nil {
		return nil, internalerr.ErrStoreUnavailable
	}
	return s.store.RecentComplaints(ctx, limit)
}

// Stats summarizes stored complaints
type Stats struct {
	Total  int64            `json:"total"`
	ByTier map[string]int64 `json:"byTier"`
}

// Stats counts stored complaints by summary tier
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.store == nil {
		return Stats{}, internalerr.ErrStoreUnavailable
	}
	counts, err := s.store.CountByTier(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{ByTier: counts}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

// IsNotFound reports whether err means the complaint does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, internalerr.ErrNotFound)
}
