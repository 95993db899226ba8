/*
Copyright © 2021 Sentry

*/
package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootConfig struct {
	cfgDirectory string
	envFile      string
	useColor     bool
	logLevel     string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "go-dlist",
	Short: "Doubly linked list playground",
	Long: `Doubly linked list with index based mutation.
Runs operation scenarios against the list, serves lists over HTTP
and load tests the HTTP playground with random operations.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&rootConfig.cfgDirectory, "config", ".config", "configuration directory")
	rootCmd.PersistentFlags().StringVar(&rootConfig.envFile, "env-file", ".env", "file with environment variables (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&rootConfig.logLevel, "log", "info", "Log level: trace, info, warn, (error), fatal, panic")
	rootCmd.PersistentFlags().BoolVar(&rootConfig.useColor, "color", false, "Use color (only for console output).")
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "t", "trc", "trace":
		return zerolog.TraceLevel
	case "d", "dbg", "debug":
		return zerolog.DebugLevel
	case "i", "inf", "info":
		return zerolog.InfoLevel
	case "w", "warn", "warning":
		return zerolog.WarnLevel
	case "e", "err", "error":
		return zerolog.ErrorLevel
	case "f", "fatal":
		return zerolog.FatalLevel
	case "p", "panic":
		return zerolog.PanicLevel
	case "dis", "disable", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.ErrorLevel
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// setup logging
	var consoleWriter = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: !rootConfig.useColor,
		TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(parseLogLevel(rootConfig.logLevel))

	// variables already set in the environment win over the env file
	if err := godotenv.Load(rootConfig.envFile); err == nil {
		log.Info().Msgf("Loaded environment from %s", rootConfig.envFile)
	}

	viper.AddConfigPath(rootConfig.cfgDirectory)
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvPrefix("DLIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Msgf("Using config file:%s", viper.ConfigFileUsed())
	} else {
		log.Warn().Msg("Could not find config file")
	}
}
