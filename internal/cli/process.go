package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docsum/internal/postprocess"
)

var processCmd = &cobra.Command{
	Use:   "process <operation> [file]",
	Short: "Rewrite a summary: simplify, shorten, rephrase or expand",
	Args:  cobra.RangeArgs(1, 2),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveDefault
		}
		var names []string
		for _, op := range postprocess.Operations() {
			names = append(names, op.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	op, err := postprocess.ParseOperation(args[0])
	if err != nil {
		return err
	}
	ctx, a, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	doc, err := readInput(cmd, args[1:])
	if err != nil {
		return err
	}
	out, err := a.service.Process(ctx, doc.Content, op)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(out))
	return nil
}
