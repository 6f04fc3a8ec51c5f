// Package config loads pairchat TOML files and PAIRCHAT_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvDataDir        = "PAIRCHAT_DATA_DIR"
	EnvSocket         = "PAIRCHAT_SOCKET"
	EnvHTTPAddr       = "PAIRCHAT_HTTP_ADDR"
	EnvPublicURL      = "PAIRCHAT_PUBLIC_URL"
	EnvJWTSecret      = "PAIRCHAT_JWT_SECRET"
	EnvTokenTTL       = "PAIRCHAT_TOKEN_TTL"
	EnvRedisURL       = "PAIRCHAT_REDIS_URL"
	EnvMaxUploadBytes = "PAIRCHAT_MAX_UPLOAD_BYTES"
	EnvLogLevel       = "PAIRCHAT_LOG_LEVEL"
	EnvSession        = "PAIRCHAT_SESSION"
	EnvStorageURL     = "PAIRCHAT_STORAGE_URL"
)

// Daemon is ~/.pairchat/pairchatd.toml.
type Daemon struct {
	DataDir        string `toml:"data_dir"`
	Socket         string `toml:"socket"`
	HTTPAddr       string `toml:"http_addr"`
	PublicURL      string `toml:"public_url"`
	JWTSecret      string `toml:"jwt_secret"`
	JWTIssuer      string `toml:"jwt_issuer"`
	TokenTTL       string `toml:"token_ttl"`
	RedisURL       string `toml:"redis_url"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	LogLevel       string `toml:"log_level"`
}

// Client is ~/.pairchat/config.toml.
type Client struct {
	DefaultSession string `toml:"default_session"`
	Socket         string `toml:"socket"`
	StorageURL     string `toml:"storage_url"`
}

// DefaultDaemon returns the daemon settings rooted at baseDir.
func DefaultDaemon(baseDir string) Daemon {
	return Daemon{
		DataDir:        filepath.Join(baseDir, "data"),
		Socket:         filepath.Join(baseDir, "pairchatd.sock"),
		HTTPAddr:       "127.0.0.1:8787",
		PublicURL:      "http://127.0.0.1:8787",
		JWTIssuer:      "pairchatd",
		TokenTTL:       "720h",
		MaxUploadBytes: 25 << 20,
		LogLevel:       "info",
	}
}

// Validate checks the settings the daemon cannot start without.
func (d Daemon) Validate() error {
	var errs []error
	if d.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if d.Socket == "" {
		errs = append(errs, errors.New("socket is required"))
	}
	if d.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("jwt_secret is required (set %s)", EnvJWTSecret))
	}
	if _, err := d.TokenValidity(); err != nil {
		errs = append(errs, err)
	}
	if d.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// TokenValidity parses TokenTTL.
func (d Daemon) TokenValidity() (time.Duration, error) {
	ttl, err := time.ParseDuration(d.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("token_ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, errors.New("token_ttl must be positive")
	}
	return ttl, nil
}

// LoadDaemon reads path over the defaults for baseDir, then applies the
// environment. A missing file is not an error.
func LoadDaemon(path, baseDir string) (*Daemon, error) {
	cfg := DefaultDaemon(baseDir)
	if err := decodeOptional(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *Daemon) applyEnv() error {
	setString(&d.DataDir, EnvDataDir)
	setString(&d.Socket, EnvSocket)
	setString(&d.HTTPAddr, EnvHTTPAddr)
	setString(&d.PublicURL, EnvPublicURL)
	setString(&d.JWTSecret, EnvJWTSecret)
	setString(&d.TokenTTL, EnvTokenTTL)
	setString(&d.RedisURL, EnvRedisURL)
	setString(&d.LogLevel, EnvLogLevel)
	if v, ok := os.LookupEnv(EnvMaxUploadBytes); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUploadBytes, err)
		}
		d.MaxUploadBytes = n
	}
	return nil
}

// LoadClient reads the client config and applies the environment. A missing
// file yields the zero config.
func LoadClient(path string) (*Client, error) {
	var cfg Client
	if err := decodeOptional(path, &cfg); err != nil {
		return nil, err
	}
	setString(&cfg.DefaultSession, EnvSession)
	setString(&cfg.Socket, EnvSocket)
	setString(&cfg.StorageURL, EnvStorageURL)
	return &cfg, nil
}

// Load reads the client config from path. Returns an error if the file is
// missing.
func Load(path string) (*Client, error) {
	var cfg Client
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes v to the given path, creating parent dirs as needed.
func Save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(v)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// LoadEnvFiles loads .env style files into the process environment without
// replacing variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", p, err)
	}
	return nil
}

func decodeOptional(path string, v any) error {
	if path == "" {
		return nil
	}
	_, err := toml.DecodeFile(path, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
