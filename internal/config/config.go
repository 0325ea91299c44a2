package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("wechat-oauth version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	WeChat  WeChatConfig  `mapstructure:"wechat"`
}

type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// WeChatConfig holds the application identity issued by the provider and
// the flow parameters the demo server passes through to the session.
type WeChatConfig struct {
	AppID       string `mapstructure:"app_id"`
	Secret      string `mapstructure:"secret"`
	Scope       string `mapstructure:"scope"`        // default scope for authorize URLs
	Lang        string `mapstructure:"lang"`         // locale for profile requests
	RedirectURL string `mapstructure:"redirect_url"` // where the provider sends the browser back
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("server.host", "localhost", "Host to bind the demo server to")
	pflag.Int("server.port", 8080, "Port to bind the demo server to")
	pflag.String("wechat.redirect-url", "", "Redirect URL registered with the provider")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("WECHAT_OAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/wechat-oauth")

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; env vars and flags can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.WeChat.AppID == "" {
		return nil, fmt.Errorf("wechat.app_id is required, please adjust the config or set WECHAT_OAUTH_WECHAT_APP_ID")
	}
	if config.WeChat.Secret == "" {
		return nil, fmt.Errorf("wechat.secret is required, please adjust the config or set WECHAT_OAUTH_WECHAT_SECRET")
	}
	if config.WeChat.RedirectURL == "" {
		return nil, fmt.Errorf("wechat.redirect_url is required, please adjust the config or pass --wechat.redirect-url")
	}

	return &config, nil
}
