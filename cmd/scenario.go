/*
Copyright © 2021 Sentry

*/
package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/getsentry/go-dlist/scenario"
)

// scenarioCmd runs scenario files against fresh lists
var scenarioCmd = &cobra.Command{
	Use:   "scenario FILE...",
	Short: "Run list scenarios",
	Long: `Runs each scenario file (yaml or json) against a new list.
Use --log debug to see the list contents after every step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if err := runScenarioFile(path); err != nil {
				log.Error().Err(err).Msgf("Scenario file %s failed", path)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
		}
		return nil
	},
}

func runScenarioFile(path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	_, err = scenario.NewRunner().Run(s)
	return err
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
