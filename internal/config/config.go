package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/horia141/jupiter-sub011/internal/storage"
)

// Env is the deployment environment the process believes it runs in.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvStaging     Env = "staging"
	EnvProduction  Env = "production"
)

// Hosting distinguishes a personal install from a shared deployment.
type Hosting string

const (
	HostingSelfHosted   Hosting = "self-hosted"
	HostingHostedGlobal Hosting = "hosted-global"
)

// Config is everything read from the environment at startup.
type Config struct {
	Env      Env
	Hosting  Hosting
	DBPath   string
	LogLevel string
	// LogFile, when set, redirects logs from stderr to a file.
	LogFile string
}

// Load reads JUPITER_* env vars and fills in defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:      EnvDevelopment,
		Hosting:  HostingSelfHosted,
		LogLevel: "info",
		LogFile:  os.Getenv("JUPITER_LOG_FILE"),
	}

	if raw := os.Getenv("JUPITER_ENV"); raw != "" {
		env := Env(strings.ToLower(strings.TrimSpace(raw)))
		switch env {
		case EnvDevelopment, EnvStaging, EnvProduction:
			cfg.Env = env
		default:
			return Config{}, fmt.Errorf("bad JUPITER_ENV %q", raw)
		}
	}
	if raw := os.Getenv("JUPITER_HOSTING"); raw != "" {
		hosting := Hosting(strings.ToLower(strings.TrimSpace(raw)))
		switch hosting {
		case HostingSelfHosted, HostingHostedGlobal:
			cfg.Hosting = hosting
		default:
			return Config{}, fmt.Errorf("bad JUPITER_HOSTING %q", raw)
		}
	}
	if raw := os.Getenv("JUPITER_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw))
	}

	path, err := storage.ResolveDBPath()
	if err != nil {
		return Config{}, err
	}
	cfg.DBPath = path
	return cfg, nil
}
