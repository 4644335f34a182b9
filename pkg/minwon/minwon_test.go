package minwon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/minwon/pkg/minwon/classify"
	"github.com/cognicore/minwon/pkg/minwon/ingest"
	"github.com/cognicore/minwon/pkg/minwon/internalerr"
	"github.com/cognicore/minwon/pkg/minwon/store/memstore"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRecorder struct {
	mu    sync.Mutex
	saved int
}

func (r *countingRecorder) RecordComplaintSaved() {
	r.mu.Lock()
	r.saved++
	r.mu.Unlock()
}

func TestGenerateComplaintTitle(t *testing.T) {
	tests := []struct {
		text, address, category string
		want                    string
	}{
		{"사릉역앞에 불법주차 차량이 너무 많아요", "경기도 남양주시 진접읍", "교통", "[교통] 사릉역 앞 / 경기도 남양주시"},
		{"학교 앞 소음이 심해요.", "", "소음", "[소음] 학교 앞"},
		{"", "서울특별시 중구", "기타", "[기타] 민원 내용 / 서울시 중구"},
		{"   ", "", "", "[] 민원 내용"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateComplaintTitle(tt.text, tt.address, tt.category))
	}
	assert.Same(t, DefaultPipeline(), DefaultPipeline())
}

func TestSubmitWithCategory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := &countingRecorder{}

	called := false
	svc := New(Options{
		Store: memstore.New(),
		Classifier: classify.Func(func(context.Context, string) (classify.Verdict, error) {
			called = true
			return classify.Verdict{}, nil
		}),
		Recorder: rec,
		Logger:   quietLogger(),
		Now:      func() time.Time { return now },
	})
	defer svc.Close()

	c, err := svc.Submit(ctx, SubmitRequest{
		Text:     "<p>학교 앞 소음이 심해요.</p>",
		Address:  "서울특별시 강남구 역삼동",
		Category: "소음",
	})
	require.NoError(t, err)
	assert.False(t, called, "classifier must not run when a category is given")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "학교 앞 소음이 심해요.", c.Text)
	assert.Equal(t, "[소음] 학교 앞 / 서울시 강남구", c.Title)
	assert.Equal(t, "location", c.Tier)
	assert.Nil(t, c.Verdict)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, 1, rec.saved)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
}

func TestSubmitClassifies(t *testing.T) {
	ctx := context.Background()
	svc := New(Options{
		Store: memstore.New(),
		Classifier: classify.Func(func(_ context.Context, text string) (classify.Verdict, error) {
			return classify.Verdict{
				AgencyName: "남양주시청",
				Category:   "교통",
				Confidence: 0.9,
				Sources:    []string{"도로교통법"},
			}, nil
		}),
		Logger: quietLogger(),
	})

	c, err := svc.Submit(ctx, SubmitRequest{Text: "사릉역앞에 불법주차 차량이 너무 많아요", Address: "경기도 남양주시 진접읍"})
	require.NoError(t, err)
	assert.Equal(t, "교통", c.Category)
	assert.Equal(t, "[교통] 사릉역 앞 / 경기도 남양주시", c.Title)
	require.NotNil(t, c.Verdict)
	assert.Equal(t, "남양주시청", c.Verdict.AgencyName)
	assert.Equal(t, []string{"도로교통법"}, c.Verdict.Sources)
}

func TestSubmitClassifierFallback(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		classifier classify.Classifier
	}{
		{"none", nil},
		{"error", classify.Func(func(context.Context, string) (classify.Verdict, error) {
			return classify.Verdict{}, internalerr.ErrClassifierUnavailable
		})},
		{"blank category", classify.Func(func(context.Context, string) (classify.Verdict, error) {
			return classify.Verdict{AgencyName: "경찰청"}, nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(Options{Store: memstore.New(), Classifier: tt.classifier, Logger: quietLogger()})
			c, err := svc.Submit(ctx, SubmitRequest{Text: "쓰레기가 많아요"})
			require.NoError(t, err)
			assert.Equal(t, DefaultCategory, c.Category)
			assert.Equal(t, "[기타] 쓰레기", c.Title)
		})
	}
}

func TestCategorize(t *testing.T) {
	ctx := context.Background()

	category, v := New(Options{Logger: quietLogger()}).Categorize(ctx, "쓰레기가 많아요")
	assert.Equal(t, DefaultCategory, category)
	assert.Nil(t, v)

	failing := New(Options{
		Logger: quietLogger(),
		Classifier: classify.Func(func(context.Context, string) (classify.Verdict, error) {
			return classify.Verdict{}, errors.New("timeout")
		}),
	})
	category, v = failing.Categorize(ctx, "쓰레기가 많아요")
	assert.Equal(t, DefaultCategory, category)
	assert.Nil(t, v)

	blank := New(Options{
		Logger: quietLogger(),
		Classifier: classify.Func(func(context.Context, string) (classify.Verdict, error) {
			return classify.Verdict{AgencyName: "환경부", Category: "  "}, nil
		}),
	})
	category, v = blank.Categorize(ctx, "쓰레기가 많아요")
	assert.Equal(t, DefaultCategory, category)
	require.NotNil(t, v)
	assert.Equal(t, "환경부", v.AgencyName)

	ok := New(Options{
		Logger: quietLogger(),
		Classifier: classify.Func(func(context.Context, string) (classify.Verdict, error) {
			return classify.Verdict{AgencyName: "환경부", Category: " 환경 ", Confidence: 0.9}, nil
		}),
	})
	category, v = ok.Categorize(ctx, "쓰레기가 많아요")
	assert.Equal(t, "환경", category)
	require.NotNil(t, v)
	assert.InDelta(t, 0.9, v.Confidence, 1e-9)
}

func TestSubmitRejectsBlank(t *testing.T) {
	svc := New(Options{Store: memstore.New(), Logger: quietLogger()})
	_, err := svc.Submit(context.Background(), SubmitRequest{Text: "<br/>  "})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestServiceWithoutStore(t *testing.T) {
	svc := New(Options{Logger: quietLogger()})
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitRequest{Text: "소음"})
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	_, err = svc.Recent(ctx, 10)
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	assert.NoError(t, svc.Close())

	composed := svc.Title(ingest.Complaint{Text: "도로 파손 신고합니다", Address: "서울특별시 강남구 역삼동 123", Category: "도로/시설물"})
	assert.Equal(t, "[도로/시설물] 도로 / 서울시 강남구", composed.Title)
	assert.Equal(t, ingest.TierComplaint, composed.Tier)
}

func TestRecentAndStats(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc := New(Options{
		Store:  memstore.New(),
		Logger: quietLogger(),
		Now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		},
	})

	texts := []string{"학교 앞 소음이 심해요.", "쓰레기가 많아요", "여기 너무 시끄러워서 미치겠어요."}
	var ids []string
	for _, text := range texts {
		c, err := svc.Submit(ctx, SubmitRequest{Text: text, Category: "기타"})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, int64(1), st.ByTier["location"])
	assert.Equal(t, int64(1), st.ByTier["complaint"])
	assert.Equal(t, int64(1), st.ByTier["sentence"])

	_, err = svc.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestSubmitConcurrentIDsUnique(t *testing.T) {
	ctx := context.Background()
	svc := New(Options{Store: memstore.New(), Logger: quietLogger()})

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := svc.Submit(ctx, SubmitRequest{Text: "가로등이 고장났어요", Category: "안전"})
			if err == nil {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
