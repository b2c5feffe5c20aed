package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/arashvale/dnswalk/internal/dns/domain"
)

// AppConfig holds the resolver's runtime configuration, parsed from
// environment variables with the DNS_ prefix.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod". Controls
	// the logger's console-vs-JSON encoding.
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// Debug, when true, raises the logger's minimum level to debug and
	// enables verbose per-hop tracing in the resolver.
	Debug bool `koanf:"debug"`

	// GetNameserversFromOS, when true, augments the Nameserver list
	// with servers discovered from the host's resolver configuration.
	GetNameserversFromOS bool `koanf:"getnameserversfromos"`

	// Nameserver is a ";"-delimited list of user-preferred nameservers,
	// each "host" or "host:port" (default port 53). Tried in order,
	// ahead of any OS-discovered servers.
	Nameserver string `koanf:"nameserver"`

	// TimeoutConnect bounds, in seconds, how long the transport waits
	// to establish a TCP connection to a nameserver.
	TimeoutConnect uint32 `koanf:"timeoutconnect" validate:"gte=1"`

	Log LoggingConfig `koanf:"log" validate:"required"`
}

type LoggingConfig struct {
	// Level defines the logging level: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// DEFAULT_APP_CONFIG defines the resolver's default configuration,
// applied before environment overrides and validated the same as a
// loaded config.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:                  "prod",
	Debug:                false,
	GetNameserversFromOS: true,
	Nameserver:           "",
	TimeoutConnect:       65535,
	Log: LoggingConfig{
		Level: "info",
	},
}

// envLoader is a function that loads environment variables with the prefix "DNS_".
// It transforms the keys to lowercase and removes the prefix, and replaces _ with .
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "DNS_")), "_", ".")
			value = strings.TrimSpace(value)
			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

// Nameservers returns the effective user-preference nameserver list
// parsed out of cfg.Nameserver. An empty list is not an error: the
// pool falls back to OS discovery, or its own builtin default, per
// the config.
func (cfg *AppConfig) Nameservers() ([]domain.Nameserver, error) {
	if cfg.Nameserver == "" {
		return nil, nil
	}
	return domain.ParseNameserverList(cfg.Nameserver)
}
