package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/minwon/pkg/minwon/ingest"
)

func TestExporterCounters(t *testing.T) {
	e := NewExporter(DefaultConfig())

	e.ObserveSummary(ingest.TierLocation)
	e.ObserveSummary(ingest.TierLocation)
	e.ObserveSummary(ingest.TierDegraded)
	e.ObserveTokenizerFailure()
	e.RecordComplaintSaved()
	e.RecordHTTPRequest("/api/titles", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(e.summaries.WithLabelValues("location")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.summaries.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.tokenizerFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.complaintsStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.httpRequests.WithLabelValues("/api/titles", "200")))
}

func TestExporterHandler(t *testing.T) {
	e := NewExporter(Config{})
	e.ObserveSummary(ingest.TierComplaint)
	e.ObserveClassify(120*time.Millisecond, nil)
	e.ObserveClassify(2*time.Second, errors.New("timeout"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `minwon_title_summaries_total{tier="complaint"} 1`)
	assert.Contains(t, string(body), `minwon_classify_latency_seconds_count{status="error"} 1`)
}

func TestExporterSummarizer(t *testing.T) {
	e := NewExporter(DefaultConfig())
	tok := ingest.TokenizerFunc(func(string) ([]ingest.Token, error) {
		return []ingest.Token{{Surface: "쓰레기", Tag: ingest.TagCommonNoun}}, nil
	})
	s := ingest.NewSummarizer(tok, ingest.DefaultKeywordSets(), ingest.WithObserver(e))
	assert.Equal(t, "쓰레기", s.Summarize("쓰레기가 많아요", ingest.DefaultMaxLength))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.summaries.WithLabelValues("complaint")))
}
