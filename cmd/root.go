package cmd

import (
	"os"

	"github.com/SafeMPC/custody-signer/cmd/address"
	"github.com/SafeMPC/custody-signer/cmd/probe"
	"github.com/SafeMPC/custody-signer/cmd/serve"
	"github.com/SafeMPC/custody-signer/cmd/sign"
	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/util/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	verboseFlag = "verbose"
	prettyFlag  = "pretty"
	configFlag  = "config"
)

var rootCmd = &cobra.Command{
	Use:           "custody-signer",
	Short:         "Sign Solana transactions with a remote custody vault",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		command.SetupLogger(viper.GetBool(verboseFlag), viper.GetBool(prettyFlag))

		if path := viper.GetString(configFlag); path != "" {
			if err := config.LoadFile(path); err != nil {
				return err
			}
		}

		return config.LoadDotEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP(verboseFlag, "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool(prettyFlag, true, "human readable console logs")
	rootCmd.PersistentFlags().StringP(configFlag, "c", "", "optional config file, keys map to environment variables")

	for _, name := range []string{verboseFlag, prettyFlag, configFlag} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Fatal().Err(err).Str("flag", name).Msg("Failed to bind flag")
		}
	}
	viper.SetEnvPrefix("CUSTODY_SIGNER")
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		address.New(),
		sign.New(),
		serve.New(),
		probe.New(),
	)
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
