package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/annchain/settler/scenario"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a scenario script against a fresh executor",
	Long:  `Replay a yaml scenario of schedule and settle steps and print every outcome as json`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()
		script, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		log.WithField("scenario", script.Name).WithField("steps", len(script.Steps)).Info("replaying")

		report, replayErr := scenario.Replay(script.NewExecutor(), script)
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return replayErr
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
