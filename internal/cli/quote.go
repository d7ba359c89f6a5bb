package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [file]",
	Short: "Extract the most representative quote from a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		doc, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		q, err := a.service.Quote(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("quote failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), q)
		return nil
	},
}

var visualizeCmd = &cobra.Command{
	Use:   "visualize [file]",
	Short: "Describe a diagram for a summary",
	Long:  `Reads a summary and asks the model for a Mermaid diagram of its main ideas.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		doc, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		out, err := a.service.Visualize(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("visualize failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(visualizeCmd)
}
