package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docsum/internal/completion"
	"docsum/internal/postprocess"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List summarization methods, models and rewrite options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, a, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Methods:")
		for _, info := range a.service.Available() {
			marker := " "
			if info.Name == a.cfg.Method {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %-11s %s\n", marker, info.Name, info.Description)
			fmt.Fprintf(w, "                Recommended for %s\n", info.RecommendedFor)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Provider: %s\n", a.provider)
		fmt.Fprintln(w, "Models:")
		for _, m := range completion.ModelNames() {
			p, _ := completion.ProviderForModel(m)
			fmt.Fprintf(w, "  %-17s %s\n", m, p)
		}
		fmt.Fprintln(w)
		var ops []string
		for _, op := range postprocess.Operations() {
			ops = append(ops, op.String())
		}
		fmt.Fprintf(w, "Operations: %s\n", strings.Join(ops, ", "))
		fmt.Fprintf(w, "Audiences:  %s\n", strings.Join(postprocess.Audiences(), ", "))
		fmt.Fprintf(w, "Styles:     %s\n", strings.Join(postprocess.Styles(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}
