package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/server"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "recruitai"
	envPrefix = "RECRUITAI"
)

type Config struct {
	Job       *job.Draft       `mapstructure:"job"`
	AI        *AIConfig        `mapstructure:"ai"`
	Quota     *QuotaConfig     `mapstructure:"quota"`
	Admin     *AdminConfig     `mapstructure:"admin"`
	Server    *server.Config   `mapstructure:"server"`
	Interview *InterviewConfig `mapstructure:"interview"`
	ExportDir string           `mapstructure:"export-dir"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string            `mapstructure:"api-key"`
	APIKeyFile   string            `mapstructure:"api-key-file"`
	Models       map[string]string `mapstructure:"models"`
	MaxLogLength int               `mapstructure:"max-log-length"`
}

type QuotaConfig struct {
	Store           string         `mapstructure:"store"`
	File            string         `mapstructure:"file"`
	DatabaseURL     string         `mapstructure:"database-url"`
	DatabaseURLFile string         `mapstructure:"database-url-file"`
	Limits          map[string]int `mapstructure:"limits"`
}

type AdminConfig struct {
	Secret     string `mapstructure:"secret"`
	SecretFile string `mapstructure:"secret-file"`
}

type InterviewConfig struct {
	ClosingDelay time.Duration `mapstructure:"closing-delay"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruitai runs AI mock interviews for a configured job and evaluates the candidate",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruitai.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("quota.store", "file")
	viper.SetDefault("quota.file", app+"-quota.json")
	viper.SetDefault("quota.database-url", "")
	viper.SetDefault("admin.secret", "")
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.unlock-rate", 1)
	viper.SetDefault("server.unlock-burst", 5)
	viper.SetDefault("server.session-ttl", "2h")
	viper.SetDefault("server.max-sessions", 1000)
	viper.SetDefault("interview.closing-delay", "2s")
	viper.SetDefault("export-dir", ".")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config file is fine for commands like version; a
	// broken or explicitly requested one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Quota == nil {
		config.Quota = &QuotaConfig{}
	}
	if config.Admin == nil {
		config.Admin = &AdminConfig{}
	}
	if config.Server == nil {
		config.Server = &server.Config{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}

	return config, nil
}
