/*
Copyright © 2021 Sentry

*/
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getsentry/go-dlist/loadtest"
	"github.com/getsentry/go-dlist/utils"
)

// loadCmd attacks a running playground with random operations
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load test a running list playground",
	Long: `Creates a list on the playground and attacks it with random operations.
Operation weights can be configured with the load.weights configuration key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			log.Error().Err(err).Msg("Invalid load test parameters")
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		target := viper.GetString("load.target")
		log.Info().Msgf("Load testing %s for %v", target, params.AttackDuration)
		if _, err = loadtest.Attack(ctx, target, params); err != nil {
			log.Error().Err(err).Msg("Load test failed")
			return err
		}
		return nil
	},
}

// loadParams builds the load test parameters from flags, config file and environment
func loadParams() (loadtest.Params, error) {
	var params loadtest.Params
	var err error
	if params.AttackDuration, err = utils.ParseStringDuration(viper.GetString("load.duration")); err != nil {
		return params, err
	}
	if params.Per, err = utils.ParseStringDuration(viper.GetString("load.per")); err != nil {
		return params, err
	}
	params.NumMessages = viper.GetInt("load.numMessages")
	params.MaxValue = viper.GetInt("load.maxValue")
	params.MaxIndex = viper.GetInt("load.maxIndex")
	if err = viper.UnmarshalKey("load.weights", &params.Weights); err != nil {
		return params, err
	}
	return params, nil
}

func init() {
	runCmd.AddCommand(loadCmd)

	loadCmd.Flags().String("duration", "10s", "attack duration")
	loadCmd.Flags().Int("num-messages", 100, "number of operations sent every 'per' interval")
	loadCmd.Flags().String("per", "1s", "interval for num-messages")
	loadCmd.Flags().Int("max-value", 1000, "largest value stored in the list")
	loadCmd.Flags().Int("max-index", 32, "largest index used by index based operations")

	for key, flagName := range map[string]string{
		"load.duration":    "duration",
		"load.numMessages": "num-messages",
		"load.per":         "per",
		"load.maxValue":    "max-value",
		"load.maxIndex":    "max-index",
	} {
		if err := viper.BindPFlag(key, loadCmd.Flags().Lookup(flagName)); err != nil {
			log.Error().Err(err).Msgf("Could not bind flag %s", flagName)
		}
	}
}
