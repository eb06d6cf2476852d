// Package config loads the server and client's runtime configuration from
// environment variables, with the defaults the original hardcodes.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// ServerConfig configures the treasure-hunt server binary.
type ServerConfig struct {
	Interface  string `env:"ETHTREASURE_IFACE" envDefault:"veth0"`
	ObjectsDir string `env:"ETHTREASURE_OBJECTS_DIR" envDefault:"objetos"`
	LogLevel   string `env:"ETHTREASURE_LOG_LEVEL" envDefault:"info"`
}

// ClientConfig configures the treasure-hunt client binary.
type ClientConfig struct {
	Interface   string `env:"ETHTREASURE_IFACE" envDefault:"veth1"`
	ServerMAC   string `env:"ETHTREASURE_SERVER_MAC,required"`
	ReceivedDir string `env:"ETHTREASURE_RECEIVED_DIR" envDefault:"recebidos"`
	LogLevel    string `env:"ETHTREASURE_LOG_LEVEL" envDefault:"info"`
}

// LoadServer reads ServerConfig from the environment.
func LoadServer() (ServerConfig, error) {
	var c ServerConfig
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// LoadClient reads ClientConfig from the environment.
func LoadClient() (ClientConfig, error) {
	var c ClientConfig
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}
