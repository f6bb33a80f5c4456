package version

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zenwatch/zenwatch/cmd"
)

var CMD = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	cmd.CMD.AddCommand(CMD)
}
