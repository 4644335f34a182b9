package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/minwon/pkg/minwon/ingest"
)

var exitWords = map[string]bool{
	"exit": true,
	"q":    true,
	"quit": true,
	"종료":   true,
	"x":    true,
}

func newReplCmd(v *viper.Viper) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively title and classify complaints",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a, address)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "address used for every title")
	return cmd
}

func runREPL(ctx context.Context, in io.Reader, out io.Writer, a *app, address string) error {
	fmt.Fprintln(out, "===========================================")
	fmt.Fprintln(out, "  민원 제목 생성기")
	fmt.Fprintln(out, "===========================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "민원 내용을 입력하세요 (exit, q, quit, 종료, x 로 종료):")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		category, verdict := a.service.Categorize(ctx, line)
		composed := a.pipeline.Compose(ingest.Complaint{Text: line, Address: address, Category: category})
		fmt.Fprintf(out, "제목: %s\n", composed.Title)
		if verdict != nil {
			fmt.Fprintf(out, "기관: %s (신뢰도 %.2f)\n", verdict.AgencyName, verdict.Confidence)
			if verdict.Reasoning != "" {
				fmt.Fprintf(out, "근거: %s\n", verdict.Reasoning)
			}
		}
		fmt.Fprintln(out)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n종료합니다.")
	return nil
}
