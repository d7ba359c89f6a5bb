package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docsum/internal/config"
	"docsum/internal/document"
	"docsum/internal/service"
	"docsum/internal/summarizer"
)

var (
	summarizeMethod   string
	summarizeAudience string
	summarizeStyle    string
	summarizeQuery    string
	summarizeJSON     bool
	summarizeStats    bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a document",
	Long: `Summarizes a text, Markdown or PDF document with the selected method:
zero_shot sends the whole document in one prompt, rag retrieves the most
relevant chunks first, and map_reduce summarizes paragraphs then combines them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	f := summarizeCmd.Flags()
	f.StringVarP(&summarizeMethod, "method", "m", "", "summarization method (default from config)")
	f.StringVar(&summarizeAudience, "audience", "", "rewrite the summary for an audience: general, experts, students")
	f.StringVar(&summarizeStyle, "style", "", "rewrite the summary in a style: concise, detailed, bullet_points")
	f.StringVar(&summarizeQuery, "query", "", "rag retrieval query: document or key_topics")
	f.BoolVar(&summarizeJSON, "json", false, "output the result as JSON")
	f.BoolVar(&summarizeStats, "stats", false, "print length metrics to stderr")
	rootCmd.AddCommand(summarizeCmd)
}

type summaryOutput struct {
	service.Result
	Reduction float64 `json:"reduction_percent"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, a, err := setup(cmd, func(cfg *config.AppConfig) {
		if summarizeMethod != "" {
			cfg.Method = summarizeMethod
		}
		if summarizeQuery != "" {
			cfg.RAG.Query = summarizeQuery
		}
	})
	if err != nil {
		return err
	}
	kind, err := summarizer.ParseKind(a.cfg.Method)
	if err != nil {
		return err
	}
	doc, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	res, err := a.service.Summarize(ctx, doc.Content, kind)
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}
	if summarizeAudience != "" || summarizeStyle != "" {
		adjusted, err := a.service.Adjust(ctx, res.Summary, summarizeAudience, summarizeStyle)
		if err != nil {
			return fmt.Errorf("adjust failed: %w", err)
		}
		res.Summary = adjusted
		res.SummaryLength = document.Measure(adjusted)
	}

	if summarizeJSON {
		data, err := json.MarshalIndent(summaryOutput{Result: res, Reduction: document.Reduction(res.Source, res.SummaryLength)}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
	if summarizeStats {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s via %s: %d -> %d words (%.0f%% shorter) in %s\n",
			res.Kind, a.provider, res.Source.Words, res.SummaryLength.Words,
			document.Reduction(res.Source, res.SummaryLength), res.Elapsed.Round(time.Millisecond))
	}
	return nil
}
