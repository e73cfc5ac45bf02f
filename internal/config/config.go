// Package config provides the client and server options. Values are read
// from command-line flags, then from an optional JSON config file, then from
// environment variables; each step overrides the previous one.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
)

// Client holds the shell's options.
type Client struct {
	// URL is the command server base URL.
	URL string `json:"url"`
	// CA, Cert and Key are PEM files for (mutual) TLS. All optional.
	CA   string `json:"ca"`
	Cert string `json:"cert"`
	Key  string `json:"key"`
	// History is the readline history file. Empty disables history.
	History string `json:"history"`
	// QRPath is where the enrolment QR code is written after registration.
	QRPath string `json:"qr"`
	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the JSON config file.
	Config string `json:"-"`
}

// Server holds the command server's options.
type Server struct {
	// Addr is the listening address (ip:port).
	Addr string `json:"address"`
	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
	// TLSCA, when set, requires client certificates signed by it.
	TLSCA string `json:"tls_ca"`
	// BcryptCost is the master password hashing cost.
	BcryptCost int `json:"bcrypt_cost"`
	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the JSON config file.
	Config string `json:"-"`
}

// ParseClient parses the client options from args and the environment.
func ParseClient(args []string) (*Client, error) {
	o := &Client{}
	flags := flag.NewFlagSet("xenon", flag.ContinueOnError)
	flags.StringVar(&o.URL, "url", "http://localhost:8080", "command server URL")
	flags.StringVar(&o.CA, "ca", "", "CA certificate file")
	flags.StringVar(&o.Cert, "cert", "", "client certificate file")
	flags.StringVar(&o.Key, "key", "", "client key file")
	flags.StringVar(&o.History, "history", "", "shell history file")
	flags.StringVar(&o.QRPath, "qr", "xenon-qr.png", "where to write the enrolment QR code")
	flags.StringVar(&o.LogLevel, "log-level", "warn", "log level")
	flags.StringVar(&o.Config, "config", "", "path to config file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if p := os.Getenv("XENON_CONFIG"); p != "" {
		o.Config = p
	}
	if err := load(o.Config, o); err != nil {
		return nil, err
	}
	if u := os.Getenv("XENON_URL"); u != "" {
		o.URL = u
	}
	return o, nil
}

// ParseServer parses the server options from args and the environment.
func ParseServer(args []string) (*Server, error) {
	o := &Server{}
	flags := flag.NewFlagSet("xenon-server", flag.ContinueOnError)
	flags.StringVar(&o.Addr, "a", "localhost:8080", "run on ip:port server")
	flags.StringVar(&o.TLSCert, "tls-cert", "", "server certificate file")
	flags.StringVar(&o.TLSKey, "tls-key", "", "server key file")
	flags.StringVar(&o.TLSCA, "tls-ca", "", "CA for client certificates")
	flags.IntVar(&o.BcryptCost, "bcrypt-cost", 12, "bcrypt cost for the master password")
	flags.StringVar(&o.LogLevel, "log-level", "info", "log level")
	flags.StringVar(&o.Config, "config", "", "path to config file")
	flags.StringVar(&o.Config, "c", "", "path to config file (shorthand)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if p := os.Getenv("CONFIG"); p != "" {
		o.Config = p
	}
	if err := load(o.Config, o); err != nil {
		return nil, err
	}
	if a := os.Getenv("SERVER_ADDRESS"); a != "" {
		o.Addr = a
	}

	if (o.TLSCert == "") != (o.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	if o.TLSCA != "" && o.TLSCert == "" {
		return nil, errors.New("tls-ca requires tls-cert and tls-key")
	}
	return o, nil
}

// load overlays the JSON file at path onto v. A missing file is ignored.
func load(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
