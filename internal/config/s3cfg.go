// Package config loads s3browse settings from flags, environment, an
// optional config file and the s3cmd style .s3cfg file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"
)

// ErrNotFound is returned when no .s3cfg file exists.
var ErrNotFound = errors.New(".s3cfg file not found in any of the standard locations")

// S3Config holds the endpoint part of an .s3cfg file. Credentials are
// never read: every request is anonymous.
type S3Config struct {
	HostBase   string
	HostBucket string
	UseHTTPS   bool
	Region     string
	Path       string
}

// SearchPaths returns the .s3cfg locations in lookup order.
func SearchPaths() []string {
	paths := []string{".s3cfg"}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, filepath.Join(home, ".s3cfg"))
	}
	return append(paths, "/etc/s3cfg")
}

// LoadS3Config loads the first .s3cfg found in paths, or in SearchPaths
// when paths is empty.
func LoadS3Config(paths ...string) (*S3Config, error) {
	if len(paths) == 0 {
		paths = SearchPaths()
	}

	var configPath string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			configPath = path
			break
		}
	}

	if configPath == "" {
		return nil, ErrNotFound
	}

	cfg, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load .s3cfg: %w", err)
	}

	section := cfg.Section("default")

	return &S3Config{
		HostBase:   section.Key("host_base").MustString("s3.amazonaws.com"),
		HostBucket: section.Key("host_bucket").MustString("%(bucket)s.s3.amazonaws.com"),
		UseHTTPS:   section.Key("use_https").MustBool(true),
		Region:     section.Key("bucket_location").MustString("us-east-1"),
		Path:       configPath,
	}, nil
}

// GetEndpointURL returns the endpoint URL for the S3 service
func (c *S3Config) GetEndpointURL() string {
	protocol := "https"
	if !c.UseHTTPS {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s", protocol, c.HostBase)
}

// InteractiveS3Setup asks for an endpoint and region on in and writes
// the answers to the .s3cfg path the user picks.
func InteractiveS3Setup(in io.Reader, out io.Writer) (*S3Config, error) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "s3browse setup")
	fmt.Fprintln(out, "==============")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Common configurations:")
	fmt.Fprintln(out, "  • AWS S3: s3.amazonaws.com")
	fmt.Fprintln(out, "  • MinIO local: localhost:9000")
	fmt.Fprintln(out)

	config := &S3Config{}

	fmt.Fprint(out, "S3 Endpoint (default: s3.amazonaws.com): ")
	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read endpoint")
	}
	config.HostBase = strings.TrimSpace(scanner.Text())
	if config.HostBase == "" {
		config.HostBase = "s3.amazonaws.com"
	}

	if config.HostBase == "s3.amazonaws.com" {
		config.HostBucket = "%(bucket)s.s3.amazonaws.com"
	} else {
		config.HostBucket = config.HostBase + "/%(bucket)s"
	}

	fmt.Fprint(out, "Region (default: us-east-1): ")
	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read region")
	}
	config.Region = strings.TrimSpace(scanner.Text())
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	config.UseHTTPS = !strings.Contains(config.HostBase, "localhost") && !strings.Contains(config.HostBase, "127.0.0.1")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Where would you like to save this configuration?")
	fmt.Fprintln(out, "1. Current directory (.s3cfg)")
	fmt.Fprintln(out, "2. Home directory (~/.s3cfg)")
	fmt.Fprint(out, "Choice (1-2, default: 2): ")
	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read save location")
	}

	switch strings.TrimSpace(scanner.Text()) {
	case "1":
		config.Path = ".s3cfg"
	case "", "2":
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		config.Path = filepath.Join(home, ".s3cfg")
	default:
		return nil, fmt.Errorf("invalid choice")
	}

	if err := SaveS3Config(config, config.Path); err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration saved to: %s\n", config.Path)
	return config, nil
}

// SaveS3Config writes the endpoint settings of config to path.
func SaveS3Config(config *S3Config, path string) error {
	cfg := ini.Empty()
	section := cfg.Section("default")

	section.Key("host_base").SetValue(config.HostBase)
	section.Key("host_bucket").SetValue(config.HostBucket)

	if config.UseHTTPS {
		section.Key("use_https").SetValue("True")
	} else {
		section.Key("use_https").SetValue("False")
	}

	section.Key("bucket_location").SetValue(config.Region)

	return cfg.SaveTo(path)
}
