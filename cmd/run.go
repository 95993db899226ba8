/*
Copyright © 2021 Sentry

*/
package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runCliParams struct {
	port       string
	targetUrl  string
	statsdAddr string
}

var runConfig runCliParams

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the list playground or a load test against it",
	Long:  `Run either the HTTP list playground (serve) or a load test against a running playground (load)`,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.PersistentFlags().StringVarP(&runConfig.port, "port", "p", "8000", "port to listen to")
	runCmd.PersistentFlags().StringVarP(&runConfig.targetUrl, "target-url", "t", "http://localhost:8000", "URL of the playground to attack")
	runCmd.PersistentFlags().StringVar(&runConfig.statsdAddr, "statsd", "", "statsd server address (metrics are disabled if missing)")

	bindFlag("serve.port", "port")
	bindFlag("serve.statsd", "statsd")
	bindFlag("load.target", "target-url")
}

func bindFlag(key string, flagName string) {
	if err := viper.BindPFlag(key, runCmd.PersistentFlags().Lookup(flagName)); err != nil {
		log.Error().Err(err).Msgf("Could not bind flag %s", flagName)
	}
}
