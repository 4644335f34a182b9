package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cognicore/minwon/pkg/minwon"
	"github.com/cognicore/minwon/pkg/minwon/config"
	"github.com/cognicore/minwon/pkg/minwon/ingest"
)

const queryColumnRunes = 37

// builtinCases are ambiguous everyday complaints used when no --cases file
// is given.
var builtinCases = []config.Case{
	{ID: "HN-001", Text: "여기 너무 시끄러워서 미치겠어요. 도대체 누가 책임지나요?"},
	{ID: "HN-002", Text: "밤에 너무 어두워요. 무서워서 못 다니겠어요."},
	{ID: "HN-003", Text: "차가 다 망가질 것 같아요. 진짜 지뢰밭입니다."},
	{ID: "HN-004", Text: "민원 넣었는데 아직도 그대로예요. 확인 좀 해주세요."},
	{ID: "HN-005", Text: "불법주차도 심하고 쓰레기도 많고 냄새도 나요. 전부 해결해주세요."},
	{ID: "HN-006", Text: "요즘 더 불편해졌어요. 왜 이렇게 바뀐 거죠?"},
	{ID: "HN-007", Text: "기사님이 너무 불친절하고 위험하게 운전해요."},
	{ID: "HN-008", Text: "여기 사람들 맨날 이상한 거 붙이고 다녀요. 보기 싫어요."},
	{ID: "HN-009", Text: "이 동네 도로 때문에 사고 날 것 같은데 아무도 안 해요."},
	{ID: "HN-010", Text: "하수구인지 뭔지 모르겠는데 냄새가 계속 올라와요."},
	{ID: "HN-011", Text: "공사인지 행사인지 새벽부터 확성기 소리가 들려요."},
	{ID: "HN-012", Text: "버스가 안 와요. 근데 앱에는 온다는데요?"},
	{ID: "HN-013", Text: "민원 넣으면 뭐하나요? 맨날 똑같아요."},
	{ID: "HN-014", Text: "여기 주차 때문에 애들이 위험해요. 차도 못 지나가요."},
	{ID: "HN-015", Text: "공원에 뭐가 부러져 있는데 관리가 너무 안 돼요."},
	{ID: "HN-016", Text: "쓰레기가 많은 건지 냄새가 나는 건지 모르겠는데 주변이 너무 더러워요."},
	{ID: "HN-017", Text: "도로도 파였고 표지판도 안 보이고 밤엔 어두워요."},
	{ID: "HN-018", Text: "이거 어디에 신고해야 해요?"},
	{ID: "HN-019", Text: "요즘 차가 너무 막혀요. 도로 공사 때문인가요?"},
	{ID: "HN-020", Text: "갑자기 바퀴가 터졌는데 도로 상태가 이상했어요."},
}

func newBatchCmd(v *viper.Viper) *cobra.Command {
	var (
		casesPath   string
		concurrency int
		rps         float64
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Classify and title a set of test complaints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases := builtinCases
			if casesPath != "" {
				loaded, err := config.LoadCases(casesPath)
				if err != nil {
					return fmt.Errorf("load cases: %w", err)
				}
				cases = loaded
			}

			a, err := openApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			return runBatch(cmd.Context(), cmd.OutOrStdout(), a, cases, batchOptions{
				Concurrency: concurrency,
				RPS:         rps,
			})
		},
	}
	cmd.Flags().StringVar(&casesPath, "cases", "", "YAML file of test cases (built-in set if empty)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel classification calls")
	cmd.Flags().Float64Var(&rps, "rps", 2, "classification requests per second (0 = unlimited)")
	return cmd
}

type batchOptions struct {
	Concurrency int
	RPS         float64
}

type batchResult struct {
	Case       config.Case
	Title      string
	Agency     string
	Confidence string
	Failed     bool
}

// runBatch processes every case and prints one table row per case in input
// order. A failed classification is reported in its row, not returned.
func runBatch(ctx context.Context, w io.Writer, a *app, cases []config.Case, opts batchOptions) error {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	results := make([]batchResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			res := batchResult{Case: c, Agency: "-", Confidence: "-"}
			category := c.Category
			if a.classifier != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				guess, v := a.service.Categorize(gctx, c.Text)
				if v == nil {
					res.Failed = true
				} else {
					res.Agency = v.AgencyName
					res.Confidence = fmt.Sprintf("%.2f", v.Confidence)
				}
				if category == "" {
					category = guess
				}
			}
			if category == "" {
				category = minwon.DefaultCategory
			}
			res.Title = a.pipeline.Title(c.Text, c.Address, category)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%-10s | %-40s | %-15s | %-6s | %s\n", "ID", "Query", "Agency", "Conf", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	failed := 0
	for _, r := range results {
		agency := r.Agency
		if r.Failed {
			agency = "ERROR"
			failed++
		}
		fmt.Fprintf(w, "%-10s | %-40s | %-15s | %-6s | %s\n",
			r.Case.ID, displayQuery(r.Case.Text), agency, r.Confidence, r.Title)
	}
	if failed > 0 {
		fmt.Fprintf(w, "\n%d of %d classifications failed\n", failed, len(results))
	}
	return nil
}

func displayQuery(text string) string {
	text = ingest.Normalize(text)
	r := []rune(text)
	if len(r) > queryColumnRunes {
		return string(r[:queryColumnRunes]) + "..."
	}
	return text
}
