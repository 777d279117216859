package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/francois-cf/guidefacile/internal/config"
)

var (
	cfgFile       string
	verbose       bool
	buildDateFlag string
	appConfig     config.Config

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "guidefacile",
	Short: "Builds a static guide site from a CSV of articles",
	Long: `guidefacile reads a CSV of articles (and optionally a directory of
markdown files) and writes one HTML page per article, refreshes the latest
cards on the homepage, and regenerates sitemap.xml and rss.xml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return initializeConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&buildDateFlag, "build-date", "", "build date as YYYY-MM-DD (default today)")
	pf.StringP("input", "i", "", "input CSV file")
	pf.StringP("output", "o", "", "output directory")
	pf.String("template", "", "page template file (default built-in)")
	pf.String("site-root", "", "public site root URL")
}

var flagKeys = map[string]string{
	"input":     "inputFile",
	"output":    "outputDir",
	"template":  "templateFile",
	"site-root": "siteRoot",
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.DisableStacktrace = true
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func initializeConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using the process environment")
	}

	v := viper.New()
	for key, value := range config.Defaults() {
		v.SetDefault(key, value)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GUIDEFACILE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("siteRoot", "GUIDEFACILE_SITEROOT", "SITE_ROOT"); err != nil {
		return err
	}
	if err := v.BindEnv("repository", "GUIDEFACILE_REPOSITORY", "GITHUB_REPOSITORY"); err != nil {
		return err
	}

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag --%s: %w", flag, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				return fmt.Errorf("config file %s not found: %w", cfgFile, err)
			}
			logger.Debug("No config file found, using defaults and environment")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Info("Using config file", zap.String("path", v.ConfigFileUsed()))
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return nil
}
