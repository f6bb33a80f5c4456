package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const DefaultPort = "8080"

var CMD = &cobra.Command{
	Use:   "zenwatch",
	Short: "live pub/sub topic monitor",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()
		return nil
	},
}
