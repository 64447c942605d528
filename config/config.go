package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v2"
)

type AppConfig struct {
	System   SysConfig `mapstructure:"system" yaml:"system"`
	Web      WebConfig `mapstructure:"web" yaml:"web"`
	Database DBConfig  `mapstructure:"database" yaml:"database"`
	Logger   LogConfig `mapstructure:"logger" yaml:"logger"`
}

type SysConfig struct {
	Appid    string `mapstructure:"appid" yaml:"appid"`
	Workdir  string `mapstructure:"workdir" yaml:"workdir"`
	Location string `mapstructure:"location" yaml:"location"`
}

type WebConfig struct {
	Host          string `mapstructure:"host" yaml:"host"`
	Port          int    `mapstructure:"port" yaml:"port"`
	Secret        string `mapstructure:"secret" yaml:"secret"`
	JwtTTLMinutes int    `mapstructure:"jwt_ttl_minutes" yaml:"jwt_ttl_minutes"`
}

type DBConfig struct {
	Type     string `mapstructure:"type" yaml:"type"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Name     string `mapstructure:"name" yaml:"name"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
}

type LogConfig struct {
	Mode       string `mapstructure:"mode" yaml:"mode"`
	FileEnable bool   `mapstructure:"file_enable" yaml:"file_enable"`
	Filename   string `mapstructure:"filename" yaml:"filename"`
}

// DefaultAppConfig is the configuration written by -initcfg and the
// fallback when no config file exists.
var DefaultAppConfig = AppConfig{
	System: SysConfig{
		Appid:    "shopd",
		Workdir:  "/var/shopd",
		Location: "Asia/Ho_Chi_Minh",
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		Secret:        "9b6de5cc-shopd-1816-secret",
		JwtTTLMinutes: 720,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "shopd",
		User:     "postgres",
		Password: "postgres",
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/shopd/shopd.log",
	},
}

// LoadConfig reads the yaml config file and applies SHOPD_ env overrides.
// A missing file is not an error; defaults are used instead.
func LoadConfig(cfile string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if cfile != "" {
		v.SetConfigFile(cfile)
	} else {
		v.SetConfigName("shopd")
		v.AddConfigPath("/etc/shopd/")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("SHOPD")
	v.AutomaticEnv()

	cfg := DefaultAppConfig
	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && cfile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration template to path.
func WriteDefault(path string) error {
	bs, err := yaml.Marshal(DefaultAppConfig)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0o644)
}
