package server

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultAddress  = "0.0.0.0:8080"
	defaultBasePath = "/api/v1"
	defaultTimeout  = 30 * time.Second
)

// Config represents the query API server configuration
type Config struct {
	Address  string        `yaml:"address" env:"SERVER_ADDRESS"`
	BasePath string        `yaml:"base_path" env:"SERVER_BASE_PATH"`
	Timeout  time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT"`

	// AuthToken protects every endpoint with a bearer token when set
	AuthToken string `yaml:"auth_token" env:"SERVER_AUTH_TOKEN"`

	CertFilePath string `yaml:"cert_file_path" env:"CERT_FILE_PATH"`
	KeyFilePath  string `yaml:"key_file_path" env:"KEY_FILE_PATH"`
	EnableHTTPS  bool   `yaml:"enable_https" env:"SERVER_ENABLE_HTTPS"`

	Certificate tls.Certificate `yaml:"-"`
}

func (cfg *Config) PrepareAndValidate() error {
	cfg.Address = lang.Check(cfg.Address, defaultAddress)
	cfg.BasePath = "/" + strings.Trim(lang.Check(cfg.BasePath, defaultBasePath), "/")
	cfg.Timeout = lang.Check(cfg.Timeout, defaultTimeout)

	if cfg.EnableHTTPS {
		if cfg.CertFilePath == "" || cfg.KeyFilePath == "" {
			return errm.New("cert_file_path and key_file_path must be set when enable_https is true")
		}

		cert, err := tls.LoadX509KeyPair(cfg.CertFilePath, cfg.KeyFilePath)
		if err != nil {
			return errm.Wrap(err, "failed to load certificate and key pair")
		}

		cfg.Certificate = cert
	}

	return nil
}
