package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/zenwatch/zenwatch/cmd"
	"github.com/zenwatch/zenwatch/engine"
)

func init() {
	topicsCmd := &cobra.Command{
		Use:     "topics",
		Aliases: []string{"t"},
		Short:   "topic cache client",
	}
	AddConnectionFlags(topicsCmd)

	lsCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "list all known topics",
		RunE:    runLS,
	}

	topicsCmd.AddCommand(lsCmd)
	topicsCmd.AddCommand(watchCmd())

	cmd.CMD.AddCommand(topicsCmd)
}

func runLS(cobraCmd *cobra.Command, args []string) error {
	resp, err := http.Get(serverURL + "/api/topics")
	if err != nil {
		return fmt.Errorf("failed to reach monitor node: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("monitor node returned %s", resp.Status)
	}

	var records []engine.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return fmt.Errorf("failed to decode topic list: %w", err)
	}

	printTopicsTable(records)
	return nil
}

func printTopicsTable(records []engine.Record) {
	if len(records) == 0 {
		fmt.Println("No topics found")
		return
	}

	tbl := table.New("Topic", "Size (B)", "Received")

	for _, r := range records {
		tbl.AddRow(r.Name, r.SizeBytes, r.ReceivedAt.UTC().Format(time.RFC3339))
	}

	tbl.Print()
}
