package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docsum/internal/config"
	"docsum/internal/summarizer"
	"docsum/internal/tui"
)

var tuiMethod string

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Summarize a document and edit the summary interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := setup(cmd, func(cfg *config.AppConfig) {
			if tuiMethod != "" {
				cfg.Method = tuiMethod
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
		title := fmt.Sprintf("%s · %s", filepath.Base(doc.Path), res.Kind)
		final, err := tea.NewProgram(tui.New(ctx, a.service, title, res.Summary), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			return err
		}
		if m, ok := final.(tui.Model); ok {
			fmt.Fprintln(cmd.OutOrStdout(), m.Text())
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiMethod, "method", "m", "", "summarization method (default from config)")
	rootCmd.AddCommand(tuiCmd)
}
