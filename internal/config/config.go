// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"path/filepath"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Decks    DecksConfig    `mapstructure:"decks"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host" validate:"required"`
	Port            int               `mapstructure:"port" validate:"gte=1,lte=65535"`
	Database        string            `mapstructure:"database" validate:"required"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds" validate:"gte=0"`
}

type DecksConfig struct {
	// PoliciesDirectory holds one <deckID>.yml policy file per deck.
	PoliciesDirectory string `mapstructure:"policies_directory" validate:"required"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cardsched")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "cardsched")
	v.SetDefault("database.username", "user")
	v.SetDefault("decks.policies_directory", filepath.Join("decks", "policies"))

	// Bind database credentials to environment variables only (not from config file)
	if err := v.BindEnv("database.username", "CARDSCHED_DB_USERNAME"); err != nil {
		return nil, fmt.Errorf("failed to bind CARDSCHED_DB_USERNAME environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "CARDSCHED_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind CARDSCHED_DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		return nil, loader.translateValidationError(err)
	}

	return &cfg, nil
}

func (loader *ConfigLoader) translateValidationError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, fieldErr := range errs {
		return fmt.Errorf("invalid configuration: %s", fieldErr.Translate(loader.translator))
	}
	return fmt.Errorf("invalid configuration: %w", err)
}
