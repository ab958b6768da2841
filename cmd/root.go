package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/logging"
)

var (
	cfgFile   string
	appConfig config.Config
	logger    = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio renders a bilingual personal site",
	Long: `folio renders a small English/French personal site from a content
file and HTML templates, either on request (serve) or as a directory of
static files ready to deploy (build).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initializeConfig(_ *cobra.Command) error {
	v := viper.New()

	defaults := config.Default()
	v.SetDefault("contentFile", defaults.ContentFile)
	v.SetDefault("templatesDir", defaults.TemplatesDir)
	v.SetDefault("staticDir", defaults.StaticDir)
	v.SetDefault("outputDir", defaults.OutputDir)
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("logLevel", defaults.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SITE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return fmt.Errorf("failed to read config file: %w", readErr)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, readErr)
		}
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	logger = logging.New(os.Stderr, appConfig.LogLevel, os.Getenv("NO_COLOR") != "")
	slog.SetDefault(logger)
	if readErr == nil {
		logger.Info("using config file", "path", v.ConfigFileUsed())
	} else {
		logger.Debug("no config file found, using defaults and environment")
	}
	return nil
}
