package cli

import (
	"github.com/spf13/cobra"
)

var serverURL string

func AddConnectionFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "monitor node address")
}
