package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "matchengine"
)

// Config is the full application configuration, unmarshalled by viper from
// matchengine.yaml (or the --config override).
type Config struct {
	JobsFile       string       `mapstructure:"jobs-file"`
	CandidatesFile string       `mapstructure:"candidates-file"`
	Match          *MatchConfig `mapstructure:"match"`
	AI             *AIConfig    `mapstructure:"ai"`
}

type MatchConfig struct {
	Limit      int           `mapstructure:"limit"`
	PoolSize   int           `mapstructure:"pool-size"`
	TimeBudget time.Duration `mapstructure:"time-budget"`
	CacheTTL   time.Duration `mapstructure:"cache-ttl"`
}

type AIConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	MaxLogLength int               `mapstructure:"max-log-length"`
	Providers    []*ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig describes one entry of the ordered external provider list.
// Order in the config file is the failover order.
type ProviderConfig struct {
	Name        string        `mapstructure:"name"`
	Type        string        `mapstructure:"type"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max-tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	APIKey      string        `mapstructure:"api-key"`
	APIKeyFile  string        `mapstructure:"api-key-file"`
	BaseURL     string        `mapstructure:"base-url"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "matchengine scores and ranks job/candidate pairs for a freelance marketplace",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is matchengine.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the match command. If there is no config, we
	// can skip initialization.
	if matchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		cobra.CheckErr(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
