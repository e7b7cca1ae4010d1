package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zfrkrc/pentaas-oneclick/logger"
)

type DefaultPaths struct {
	ConfigDir  string
	LogPathApp string
	ReportDir  string
	LogLevel   string
	BackendURL string
}

type Configuration struct {
	Backend struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"backend"`
	Poll struct {
		IntervalSeconds int `mapstructure:"interval_seconds"`
		// SessionTimeoutSeconds bounds one whole scan session, 0 means no bound.
		SessionTimeoutSeconds int `mapstructure:"session_timeout_seconds"`
		// StepPercent is the coarse progress advance per tick when the backend
		// reports no per-tool status.
		StepPercent int `mapstructure:"step_percent"`
	} `mapstructure:"poll"`
	Requester struct {
		ID string `mapstructure:"id"`
	} `mapstructure:"requester"`
	Report struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"report"`
	Archive struct {
		Enabled   bool   `mapstructure:"enabled"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		Region    string `mapstructure:"region"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"archive"`
	Analysis struct {
		Enabled bool   `mapstructure:"enabled"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"analysis"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

var AppConfig Configuration

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDirBase, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDirBase = "."
	}

	userConfigDir, err := expandTilde(userConfigDirBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in user config dir '%s': %v. Using potentially literal path.\n", userConfigDirBase, err)
		userConfigDir = userConfigDirBase
	}

	paths.ConfigDir = filepath.Join(userConfigDir, "pentaas")
	paths.LogPathApp = filepath.Join(paths.ConfigDir, "logs", "app.log")
	paths.ReportDir = filepath.Join(paths.ConfigDir, "reports")
	paths.LogLevel = "INFO"
	paths.BackendURL = "http://localhost:8000"
	return paths
}

// Init loads configuration with this precedence: flags (passed in by cmd),
// then PENTAAS_* environment variables, then the config file, then defaults.
func Init(cfgFile string, flagAppLogPath, flagLogLevel string) error {
	v := viper.New()

	defaults := GetDefaultConfigPaths()
	v.SetDefault("backend.base_url", defaults.BackendURL)
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("poll.interval_seconds", 3)
	v.SetDefault("poll.session_timeout_seconds", 1800)
	v.SetDefault("poll.step_percent", 7)
	v.SetDefault("requester.id", "")
	v.SetDefault("report.dir", defaults.ReportDir)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.use_ssl", true)
	v.SetDefault("analysis.enabled", false)
	v.SetDefault("analysis.model", "gpt-4o-mini")
	v.SetDefault("logging.level", defaults.LogLevel)
	v.SetDefault("logging.app_log_path", defaults.LogPathApp)

	if cfgFile != "" {
		expanded, err := expandTilde(cfgFile)
		if err != nil {
			logger.Error("Error expanding tilde in config file path '%s': %v. Using original.", cfgFile, err)
			expanded = cfgFile
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PENTAAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Debug("No config file found; using defaults and environment.")
		} else {
			return fmt.Errorf("failed to read config file '%s': %w", v.ConfigFileUsed(), err)
		}
	} else {
		logger.Info("Using config file: %s", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Flag overrides win over everything viper resolved.
	logPath := v.GetString("logging.app_log_path")
	if flagAppLogPath != "" {
		logPath = flagAppLogPath
	}
	if flagLogLevel != "" {
		AppConfig.Logging.Level = flagLogLevel
	}

	if err := logger.InitGlobalLoggers(logPath, AppConfig.Logging.Level); err != nil {
		return fmt.Errorf("failed to re-initialize loggers from config: %w", err)
	}
	return nil
}
