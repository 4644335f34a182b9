package classify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/minwon/internal/llm"
	"github.com/cognicore/minwon/pkg/minwon/internalerr"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "complaint_verdict")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLLMClassify(t *testing.T) {
	srv := chatServer(t, `{"agency_name":" 남양주시청 ","agency_code":"4130000","category":"교통","confidence":0.82,"reasoning":"불법 주정차 단속","sources":["도로교통법"]}`)
	client := &llm.Client{BaseURL: srv.URL, Model: "test", Logger: quietLogger()}

	var observed int
	c := NewLLM(client, quietLogger())
	c.Observe = func(time.Duration, error) { observed++ }

	v, err := c.Classify(context.Background(), "여기 주차 때문에 애들이 위험해요.")
	require.NoError(t, err)
	assert.Equal(t, "남양주시청", v.AgencyName)
	assert.Equal(t, "4130000", v.AgencyCode)
	assert.Equal(t, "교통", v.Category)
	assert.InDelta(t, 0.82, v.Confidence, 1e-9)
	assert.Equal(t, []string{"도로교통법"}, v.Sources)
	assert.Equal(t, 1, observed)
}

func TestLLMClampsConfidence(t *testing.T) {
	tests := []struct {
		content string
		want    float64
	}{
		{`{"agency_name":"a","agency_code":"","category":"기타","confidence":1.7,"reasoning":"","sources":null}`, 1},
		{`{"agency_name":"a","agency_code":"","category":"기타","confidence":-0.2,"reasoning":"","sources":[]}`, 0},
	}
	for _, tt := range tests {
		srv := chatServer(t, tt.content)
		c := NewLLM(&llm.Client{BaseURL: srv.URL, Model: "test", Logger: quietLogger()}, quietLogger())
		v, err := c.Classify(context.Background(), "도로가 파였어요")
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Confidence)
		assert.NotNil(t, v.Sources)
	}
}

func TestLLMErrors(t *testing.T) {
	c := NewLLM(nil, quietLogger())
	_, err := c.Classify(context.Background(), "   ")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = c.Classify(context.Background(), "소음")
	assert.ErrorIs(t, err, internalerr.ErrClassifierUnavailable)

	srv := chatServer(t, "not json")
	c = NewLLM(&llm.Client{BaseURL: srv.URL, Model: "test", Logger: quietLogger()}, quietLogger())
	_, err = c.Classify(context.Background(), "소음")
	assert.ErrorIs(t, err, internalerr.ErrClassifierUnavailable)
}

type stubChat struct {
	user string
}

func (s *stubChat) ChatJSON(_ context.Context, _, user, _ string, _ *llm.Schema, out interface{}) error {
	s.user = user
	return json.Unmarshal([]byte(`{"agency_name":"x","confidence":0.5}`), out)
}

func TestLLMTruncatesQuery(t *testing.T) {
	chat := &stubChat{}
	c := NewLLM(chat, quietLogger())
	_, err := c.Classify(context.Background(), strings.Repeat("가", maxQueryRunes+50))
	require.NoError(t, err)
	assert.Equal(t, maxQueryRunes, len([]rune(strings.TrimPrefix(chat.user, "민원 내용: "))))
}

func TestFunc(t *testing.T) {
	var c Classifier = Func(func(ctx context.Context, text string) (Verdict, error) {
		if text == "" {
			return Verdict{}, errors.New("empty")
		}
		return Verdict{Category: "환경"}, nil
	})
	v, err := c.Classify(context.Background(), "쓰레기")
	require.NoError(t, err)
	assert.Equal(t, "환경", v.Category)
}
