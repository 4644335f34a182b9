// Package classify routes complaint text to the responsible agency.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cognicore/minwon/internal/llm"
	"github.com/cognicore/minwon/pkg/minwon/internalerr"
)

// maxQueryRunes bounds the complaint text sent to the model.
const maxQueryRunes = 1000

// Verdict is the routing decision for one complaint.
type Verdict struct {
	AgencyName string   `json:"agency_name"`
	AgencyCode string   `json:"agency_code"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Sources    []string `json:"sources"`
}

// Classifier decides which agency handles a complaint.
type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, text string) (Verdict, error)

// Classify implements Classifier.
func (f Func) Classify(ctx context.Context, text string) (Verdict, error) {
	return f(ctx, text)
}

// Chatter is the part of llm.Client the LLM classifier needs.
type Chatter interface {
	ChatJSON(ctx context.Context, system, user, name string, schema *llm.Schema, out interface{}) error
}

// LLM classifies complaints with a chat model constrained to a JSON schema.
type LLM struct {
	chat   Chatter
	logger *slog.Logger

	// Observe, if set, receives the latency of every call.
	Observe func(time.Duration, error)
}

// NewLLM creates an LLM classifier. A nil logger uses slog.Default().
func NewLLM(chat Chatter, logger *slog.Logger) *LLM {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLM{chat: chat, logger: logger}
}

const systemPrompt = `당신은 대한민국 민원 분류 담당자입니다.
시민이 작성한 민원 내용을 읽고 처리 기관을 판단하세요.
- agency_name: 담당 기관 이름 (예: 서울특별시 강남구청, 경찰청, 국토교통부)
- agency_code: 기관 코드, 모르면 빈 문자열
- category: 교통, 환경, 안전, 도로/시설물, 소음, 행정, 기타 중 하나
- confidence: 0과 1 사이의 신뢰도
- reasoning: 한두 문장의 판단 근거
- sources: 참고한 법령이나 업무 분장, 없으면 빈 배열
민원 내용이 모호하면 confidence를 낮게 주세요.`

var verdictSchema = &llm.Schema{
	Type:     "object",
	Required: []string{"agency_name", "agency_code", "category", "confidence", "reasoning", "sources"},
	Properties: map[string]*llm.Schema{
		"agency_name": {Type: "string"},
		"agency_code": {Type: "string"},
		"category":    {Type: "string"},
		"confidence":  {Type: "number"},
		"reasoning":   {Type: "string"},
		"sources":     {Type: "array", Items: &llm.Schema{Type: "string"}},
	},
}

// Classify implements Classifier.
func (c *LLM) Classify(ctx context.Context, text string) (Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Verdict{}, internalerr.ErrInvalidInput
	}
	if c.chat == nil {
		return Verdict{}, internalerr.ErrClassifierUnavailable
	}
	if r := []rune(text); len(r) > maxQueryRunes {
		text = string(r[:maxQueryRunes])
	}

	start := time.Now()
	var v Verdict
	err := c.chat.ChatJSON(ctx, systemPrompt, "민원 내용: "+text, "complaint_verdict", verdictSchema, &v)
	if c.Observe != nil {
		c.Observe(time.Since(start), err)
	}
	if err != nil {
		c.logger.Warn("classify_failed", "error", err)
		return Verdict{}, fmt.Errorf("%w: %v", internalerr.ErrClassifierUnavailable, err)
	}

	v.AgencyName = strings.TrimSpace(v.AgencyName)
	v.Category = strings.TrimSpace(v.Category)
	v.Confidence = clamp(v.Confidence)
	if v.Sources == nil {
		v.Sources = []string{}
	}
	c.logger.Debug("classify_done",
		"agency", v.AgencyName,
		"category", v.Category,
		"confidence", v.Confidence)
	return v, nil
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
