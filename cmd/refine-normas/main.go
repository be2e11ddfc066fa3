// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refine-normas CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refine-normas/internal/logging"
	"github.com/pdiddy/refine-normas/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the log.* settings before any command runs.
var logger *logrus.Logger

// rootCmd is the base command for the refine-normas CLI.
var rootCmd = &cobra.Command{
	Use:   "refine-normas",
	Short: "Restructure annotation blocks in traffic-code norma files",
	Long: `refine-normas post-processes JSON norma documents. Each infraction's
descripcion may end with an annotation block of the form

  *Nota: <text> Responsable: <parties>*

The refine commands strip that block from the description and store its
content in the structured "nota" and "responsables" fields. The ledger
commands report on what previous runs recorded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./refine-normas.yaml or ~/.config/refine-normas/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refine-normas")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refine-normas"))
		}
	}

	viper.SetEnvPrefix("REFINE_NORMAS")
	viper.AutomaticEnv()

	viper.SetDefault("refine.dir", filepath.Join("data", "normas"))
	viper.SetDefault("ledger.max_results", 50)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
