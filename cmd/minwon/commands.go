package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/minwon/pkg/minwon/classify"
	"github.com/cognicore/minwon/pkg/minwon/ingest"
)

var errNoClassifier = errors.New("classifier not configured: set --llm-base-url and --llm-model")

func newTitleCmd(v *viper.Viper) *cobra.Command {
	var text, address, category string
	cmd := &cobra.Command{
		Use:   "title [text]",
		Short: "Print the generated title for one complaint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				text = strings.Join(args, " ")
			}
			a, err := openApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			return runTitle(cmd.Context(), cmd.OutOrStdout(), a, ingest.Complaint{
				Text:     text,
				Address:  address,
				Category: category,
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "complaint text")
	cmd.Flags().StringVar(&address, "address", "", "complaint address")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	return cmd
}

// runTitle prints the title for c. A blank category is filled in the same
// way Submit does it.
func runTitle(ctx context.Context, w io.Writer, a *app, c ingest.Complaint) error {
	c.Text = ingest.StripMarkup(c.Text)
	if strings.TrimSpace(c.Category) == "" {
		c.Category, _ = a.service.Categorize(ctx, c.Text)
	}
	composed := a.service.Title(c)
	fmt.Fprintln(w, composed.Title)
	a.logger.Debug("title_generated", "tier", composed.Tier.String(), "summary", composed.Summary)
	return nil
}

func newClassifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <query>",
		Short: "Ask the classifier which agency handles a complaint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return runClassify(cmd.Context(), cmd.OutOrStdout(), a, strings.Join(args, " "))
		},
	}
}

func runClassify(ctx context.Context, w io.Writer, a *app, query string) error {
	if a.classifier == nil {
		return errNoClassifier
	}
	fmt.Fprintf(w, "Testing query: %s\n", query)
	v, err := a.classifier.Classify(ctx, query)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	printVerdict(w, v)
	return nil
}

func printVerdict(w io.Writer, v classify.Verdict) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[Result]")
	fmt.Fprintf(w, "Agency: %s", v.AgencyName)
	if v.AgencyCode != "" {
		fmt.Fprintf(w, " (%s)", v.AgencyCode)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Category: %s\n", v.Category)
	fmt.Fprintf(w, "Confidence: %.2f\n", v.Confidence)
	fmt.Fprintf(w, "Reasoning: %s\n", v.Reasoning)
	fmt.Fprintln(w, "Sources:")
	for _, src := range v.Sources {
		fmt.Fprintf(w, "- %s\n", src)
	}
}

func newStatsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored complaint counts by summary tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.service.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total complaints: %d\n", st.Total)

			tiers := make([]string, 0, len(st.ByTier))
			for tier := range st.ByTier {
				tiers = append(tiers, tier)
			}
			sort.Strings(tiers)
			for _, tier := range tiers {
				fmt.Fprintf(w, "  %-10s %d\n", tier, st.ByTier[tier])
			}
			return nil
		},
	}
}
