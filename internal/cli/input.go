package cli

import (
	"github.com/spf13/cobra"

	"docsum/internal/document"
	"docsum/internal/domain"
)

// readInput loads the file named by the first argument, or stdin when there
// is none or it is "-".
func readInput(cmd *cobra.Command, args []string) (domain.Document, error) {
	if len(args) > 0 && args[0] != "-" {
		return document.Load(args[0])
	}
	return document.Read("stdin", cmd.InOrStdin())
}
