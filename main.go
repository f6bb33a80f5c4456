package main

import (
	_ "github.com/zenwatch/zenwatch/logging"

	"github.com/zenwatch/zenwatch/cmd"

	_ "github.com/zenwatch/zenwatch/cli"
	"github.com/zenwatch/zenwatch/engine"
	_ "github.com/zenwatch/zenwatch/version"
	"github.com/spf13/cobra"

	"github.com/pkg/browser"
)

func init() {
	cmd.CMD.Flags().Bool("view", false, "open the web ui in a browser")

	cmd.CMD.RunE = func(cobraCmd *cobra.Command, args []string) error {
		enableView, _ := cobraCmd.Flags().GetBool("view")

		errc := make(chan error)

		go func() {
			errc <- engine.CMD.RunE(cobraCmd, args)
		}()

		if enableView {
			_ = browser.OpenURL("http://localhost:" + engine.Port)
		}

		err := <-errc
		return err
	}
}

func main() {
	err := cmd.CMD.Execute()
	if err != nil {
		panic(err)
	}
}
