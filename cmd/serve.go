/*
Copyright © 2021 Sentry

*/
package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/getsentry/go-dlist/web_server"
)

// serveCmd runs the HTTP list playground.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP list playground.",
	Long: `Runs the HTTP list playground.
Lists are created with POST /lists/ and modified by posting operations
(in the scenario step format) to /lists/<id>/ops/.`,
	Run: func(cmd *cobra.Command, args []string) {
		port := viper.GetString("serve.port")
		log.Info().Msgf("Running list playground at port: %s", port)
		web_server.RunWebServer(port, viper.GetString("serve.statsd"))
	},
}

func init() {
	runCmd.AddCommand(serveCmd)
}
