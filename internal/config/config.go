// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file, a .env file
// and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string `json:"jwt_secret"`

	// JWTIssuer is the iss claim of issued tokens.
	JWTIssuer string `json:"jwt_issuer"`

	// JWTTTLMinutes is the lifetime of issued tokens.
	JWTTTLMinutes int `json:"jwt_ttl_minutes"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// CORSOrigins lists the dashboard origins allowed to call the API.
	CORSOrigins []string `json:"cors_origins"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// AdminUserID is the operator's admin account, created at startup.
	// Admins cannot self-register.
	AdminUserID string `json:"admin_user_id"`

	// PrintAdminToken makes the server print a token for AdminUserID and exit.
	PrintAdminToken bool `json:"-"`
}

// JWTTTL returns the token lifetime as a duration.
func (o *Options) JWTTTL() time.Duration {
	return time.Duration(o.JWTTTLMinutes) * time.Minute
}

// TLSEnabled reports whether both certificate and key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Parse reads the process flags and environment. It loads .env from the
// working directory first, when present.
func Parse() (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return parse(flag.CommandLine, os.Args[1:])
}

// parse applies, in increasing priority: flag defaults, the JSON config
// file, explicitly set flags, environment variables.
func parse(fs *flag.FlagSet, args []string) (*Options, error) {
	opts := &Options{}
	var origins string

	fs.StringVar(&opts.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&opts.JWTSecret, "jwt-secret", "", "secret for signing bearer tokens")
	fs.StringVar(&opts.JWTIssuer, "jwt-issuer", "profiledesk", "issuer of bearer tokens")
	fs.IntVar(&opts.JWTTTLMinutes, "jwt-ttl", 60, "bearer token lifetime in minutes")
	fs.StringVar(&opts.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&opts.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&origins, "cors", "*", "comma-separated allowed CORS origins")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&opts.AdminUserID, "admin-id", "", "ID of the admin account to provision")
	fs.BoolVar(&opts.PrintAdminToken, "admin-token", false, "print a bearer token for the admin account and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.CORSOrigins = parseCSV(origins)

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		if _, err := os.Stat(opts.Config); err == nil {
			// explicit flags beat the file
			explicit := map[string]string{}
			fs.Visit(func(f *flag.Flag) {
				if f.Name != "config" && f.Name != "c" {
					explicit[f.Name] = f.Value.String()
				}
			})

			data, err := os.ReadFile(opts.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, opts); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}

			for name, value := range explicit {
				_ = fs.Set(name, value)
			}
			if _, ok := explicit["cors"]; ok {
				opts.CORSOrigins = parseCSV(origins)
			}
		}
	}

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		opts.Port = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		opts.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		opts.JWTSecret = v
	}
	if v := os.Getenv("JWT_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.JWTTTLMinutes = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		opts.CORSOrigins = parseCSV(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		opts.LogLevel = v
	}
	if v := os.Getenv("ADMIN_USER_ID"); v != "" {
		opts.AdminUserID = v
	}

	if opts.JWTSecret == "" {
		return nil, errors.New("JWT secret is required (-jwt-secret or JWT_SECRET)")
	}
	if opts.PrintAdminToken && opts.AdminUserID == "" {
		return nil, errors.New("-admin-token requires an admin ID (-admin-id or ADMIN_USER_ID)")
	}
	if opts.JWTTTLMinutes <= 0 {
		opts.JWTTTLMinutes = 60
	}
	return opts, nil
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
