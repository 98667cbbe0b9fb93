package cmd

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pageling/pageling"
	"github.com/pageling/pageling/provider"
	"github.com/pageling/pageling/store"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "pageling",
	Short:   "Instant server-side web page translation",
	Version: pageling.FullVersion(),
	Long: `Pageling translates rendered web pages on the fly: it proxies an
origin site, rewrites URLs and translatable text for the requested
language, and records every string it has not seen before.

Commands:
  serve          translating reverse proxy in front of the origin
  translate      one-shot translation of an HTML file or stdin
  tokenize       extract all translatable strings from HTML
  autotranslate  machine-translate a list of URLs in resumable chunks
  prune          delete translations without recent sightings
  reset          clear all translation data
  export/import  move the translation catalog between installations`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pageling.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// envSettings holds process-level settings read from the environment only.
type envSettings struct {
	Listen      string `env:"PAGELING_LISTEN" envDefault:":8080"`
	Origin      string `env:"PAGELING_ORIGIN"`
	RedisURL    string `env:"PAGELING_REDIS_URL"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel string `env:"PAGELING_OPENAI_MODEL"`
}

// newLogger builds the process logger.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// loadConfig reads the YAML config file and applies environment overrides.
func loadConfig() (pageling.Config, envSettings, error) {
	// The .env file might not exist and that's ok.
	_ = godotenv.Load()

	var cfg pageling.Config
	path := cfgFile
	if path == "" {
		path = "pageling.yml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if cfgFile != "" || !os.IsNotExist(err) {
			return cfg, envSettings{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, envSettings{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, envSettings{}, fmt.Errorf("parsing config environment: %w", err)
	}
	var es envSettings
	if err := env.Parse(&es); err != nil {
		return cfg, es, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, es, nil
}

// buildEngine wires an engine from config, environment and the logger.
func buildEngine(logger *logrus.Logger) (*pageling.Engine, *provider.UsageCounter, error) {
	cfg, es, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	usage := provider.NewUsageCounter()
	opts := []pageling.Option{
		pageling.WithLogger(logger),
		pageling.WithUsageReporter(usage),
	}

	if es.OpenAIKey != "" {
		p := provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey: es.OpenAIKey,
			Model:  es.OpenAIModel,
		})
		opts = append(opts, pageling.WithProvider(
			pageling.NewRetryableProvider(p, pageling.DefaultRetryConfig()),
		))
	}

	if es.RedisURL != "" {
		cache, err := store.NewRedisCache(store.RedisConfig{URL: es.RedisURL, TTL: 3600})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		opts = append(opts, pageling.WithSharedCache(cache))
		logger.WithField("url", es.RedisURL).Debug("shared redis cache enabled")
	}

	engine, err := pageling.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return engine, usage, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
