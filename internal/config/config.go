package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config stores configuration values for the application.
// These values can be read from a configuration file or environment variables.
type Config struct {
	// ServerAddress is the IP address where the server will listen.
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	// ServerPort is the port on which the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT"`
	// RoomCodeLength is the length of generated room codes.
	RoomCodeLength int `mapstructure:"ROOM_CODE_LENGTH"`
	// SessionIDLength is the length of generated session identifiers.
	SessionIDLength int `mapstructure:"SESSION_ID_LENGTH"`
	// SessionTimeoutMinutes is the inactivity window, in minutes, after which
	// rooms and session records expire.
	SessionTimeoutMinutes int `mapstructure:"SESSION_TIMEOUT_MINUTES"`
	// SweepIntervalSeconds is the period, in seconds, of the background
	// expiry sweep.
	SweepIntervalSeconds int `mapstructure:"SWEEP_INTERVAL_SECONDS"`
}

// Default returns the configuration used when no configuration file is
// provided.
func Default() *Config {
	return &Config{
		ServerAddress:         "",
		ServerPort:            8080,
		RoomCodeLength:        6,
		SessionIDLength:       12,
		SessionTimeoutMinutes: 20,
		SweepIntervalSeconds:  60,
	}
}

// Load loads configuration settings from a specified file or environment variables.
// If both a configuration file and environment variables are used, environment variables take precedence.
func Load(filePath string) (*Config, error) {
	viper.SetConfigFile(filePath)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}
