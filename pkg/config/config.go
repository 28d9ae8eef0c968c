package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk server configuration. Environment variables
// (WORKSTREAM_*) override file values; command-line flags override both.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
		// OpsAddress enables the fasthttp ops listener when non-empty.
		OpsAddress string `yaml:"ops_address"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
		// SealKeyHex enables snapshot sealing at rest (64 hex chars).
		SealKeyHex string `yaml:"seal_key_hex"`
	} `yaml:"storage"`
	Security struct {
		// TokenSecret signs session tokens. Required outside tests.
		TokenSecret string `yaml:"token_secret"`
		CORS        struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		APIKeys struct {
			Backend []string `yaml:"backend"`
			Admin   []string `yaml:"admin"`
		} `yaml:"api_keys"`
	} `yaml:"security"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text|json
	} `yaml:"logging"`
	Maintenance struct {
		Enabled bool `yaml:"enabled"`
		// Cron is a gronx expression; empty means daily at 02:00.
		Cron string `yaml:"cron"`
		// KeepCheckpoints bounds retained checkpoint blobs.
		KeepCheckpoints int `yaml:"keep_checkpoints"`
	} `yaml:"maintenance"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	host := c.Server.Address
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}

// LoadEffective merges file config (optional) with environment overrides.
// It returns the effective config and whether any env override applied.
func LoadEffective(path string) (*Config, bool, error) {
	var c *Config
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, false, err
			}
			c = &Config{}
		} else {
			c = loaded
		}
	} else {
		c = &Config{}
	}
	envUsed := applyEnv(c)
	return c, envUsed, nil
}

func applyEnv(c *Config) bool {
	used := false
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
			used = true
		}
	}
	set(&c.Server.Address, "WORKSTREAM_ADDRESS")
	if v := strings.TrimSpace(os.Getenv("WORKSTREAM_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
			used = true
		}
	}
	set(&c.Server.OpsAddress, "WORKSTREAM_OPS_ADDRESS")
	set(&c.Storage.DBPath, "WORKSTREAM_DB_PATH")
	set(&c.Storage.SealKeyHex, "WORKSTREAM_SEAL_KEY")
	set(&c.Security.TokenSecret, "WORKSTREAM_TOKEN_SECRET")
	set(&c.Logging.Level, "WORKSTREAM_LOG_LEVEL")
	set(&c.Logging.Format, "WORKSTREAM_LOG_FORMAT")
	if v := strings.TrimSpace(os.Getenv("WORKSTREAM_BACKEND_KEYS")); v != "" {
		c.Security.APIKeys.Backend = splitKeys(v)
		used = true
	}
	if v := strings.TrimSpace(os.Getenv("WORKSTREAM_ADMIN_KEYS")); v != "" {
		c.Security.APIKeys.Admin = splitKeys(v)
		used = true
	}
	return used
}

func splitKeys(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseCommandFlags parses the daemon's flags and reports which were set
// explicitly so they can win over file/env values.
func ParseCommandFlags() (addr, dbPath, cfgPath string, set map[string]bool) {
	addrFlag := flag.String("addr", "", "listen address (host:port)")
	dbFlag := flag.String("db", "./data", "database path")
	cfgFlag := flag.String("config", "workstream.yaml", "config file path")
	flag.Parse()
	set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return *addrFlag, *dbFlag, *cfgFlag, set
}
