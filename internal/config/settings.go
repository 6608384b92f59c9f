package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/slmtnm/s3browse/internal/listing"
)

// Backend names a listing backend.
const (
	BackendXML   = "xml"
	BackendSDK   = "sdk"
	BackendMinio = "minio"
)

// Setting keys shared by flags, environment and config file.
const (
	KeyURL      = "url"
	KeyBucket   = "bucket"
	KeyEndpoint = "endpoint"
	KeyRegion   = "region"
	KeyBackend  = "backend"
	KeyPrefix   = "prefix"
	KeyMode     = "mode"
	KeyMaxKeys  = "max-keys"
	KeyMaxPages = "max-pages"
	KeyTimeout  = "timeout"
	KeyLogFile  = "log-file"
	KeyLogLevel = "log-level"
	KeyTZ       = "tz"
)

// EnvPrefix prefixes every environment variable, e.g. S3BROWSE_BUCKET.
const EnvPrefix = "S3BROWSE"

// Settings is the resolved run configuration.
type Settings struct {
	URL      string
	Bucket   string
	Endpoint string
	Region   string
	Backend  string
	Prefix   string
	Mode     string
	MaxKeys  int
	MaxPages int
	Timeout  time.Duration
	LogFile  string
	LogLevel string
	TZ       string
}

// AddFlags registers every setting on flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.StringP(KeyURL, "u", "", "browse URL of a public bucket page (virtual-host style)")
	flags.StringP(KeyEndpoint, "e", "", "S3 endpoint, e.g. https://s3.amazonaws.com (default from .s3cfg)")
	flags.StringP(KeyRegion, "r", "", "bucket region (default from .s3cfg)")
	flags.StringP(KeyBackend, "b", BackendXML, "listing backend: xml, sdk or minio")
	flags.StringP(KeyPrefix, "p", "", "folder to open")
	flags.StringP(KeyMode, "m", "", "view mode: list or tree")
	flags.Int(KeyMaxKeys, listing.DefaultMaxKeys, "page size requested from the store")
	flags.Int(KeyMaxPages, 0, "abort a listing after this many pages (0 = no limit)")
	flags.Duration(KeyTimeout, 30*time.Second, "per request timeout")
	flags.String(KeyLogFile, "", "log file (empty disables logging)")
	flags.String(KeyLogLevel, "info", "log level")
	flags.String(KeyTZ, "", "time zone for timestamps (default local)")
}

// NewViper returns a viper instance bound to flags and the environment.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// ReadConfigFile merges an optional .s3browse.{yaml,json,toml} file.
// An explicit path must exist; the search locations may be empty.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(".s3browse")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// FromViper reads Settings out of v.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		URL:      v.GetString(KeyURL),
		Bucket:   v.GetString(KeyBucket),
		Endpoint: v.GetString(KeyEndpoint),
		Region:   v.GetString(KeyRegion),
		Backend:  v.GetString(KeyBackend),
		Prefix:   v.GetString(KeyPrefix),
		Mode:     v.GetString(KeyMode),
		MaxKeys:  v.GetInt(KeyMaxKeys),
		MaxPages: v.GetInt(KeyMaxPages),
		Timeout:  v.GetDuration(KeyTimeout),
		LogFile:  v.GetString(KeyLogFile),
		LogLevel: v.GetString(KeyLogLevel),
		TZ:       v.GetString(KeyTZ),
	}
}

// ApplyS3Config fills the endpoint and region from an .s3cfg file where
// they were not set explicitly.
func (s *Settings) ApplyS3Config(c *S3Config) {
	if c == nil {
		return
	}
	if s.Endpoint == "" {
		s.Endpoint = c.GetEndpointURL()
	}
	if s.Region == "" {
		s.Region = c.Region
	}
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendXML, BackendSDK, BackendMinio:
	default:
		return fmt.Errorf("unknown backend %q (want xml, sdk or minio)", s.Backend)
	}
	if s.MaxKeys <= 0 {
		return fmt.Errorf("max-keys must be positive, got %d", s.MaxKeys)
	}
	if s.MaxPages < 0 {
		return fmt.Errorf("max-pages must not be negative, got %d", s.MaxPages)
	}
	if s.URL == "" && (s.Bucket == "" || s.Endpoint == "") {
		return fmt.Errorf("either a browse URL or a bucket and endpoint are required")
	}
	if s.Backend != BackendXML && s.Bucket == "" {
		return fmt.Errorf("backend %q needs a bucket name", s.Backend)
	}
	if s.Backend != BackendXML && s.Endpoint == "" {
		return fmt.Errorf("backend %q needs an endpoint", s.Backend)
	}
	if s.Endpoint != "" {
		if _, err := s.EndpointURL(); err != nil {
			return err
		}
	}
	return nil
}

// EndpointURL parses the endpoint, defaulting the scheme to https.
func (s Settings) EndpointURL() (*url.URL, error) {
	raw := s.Endpoint
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", s.Endpoint)
	}
	return u, nil
}

// BrowseURL returns the page URL to resolve and the bucket root path for
// path-style URLs. An explicit URL wins; otherwise a path-style URL is
// built from the endpoint and bucket.
func (s Settings) BrowseURL() (string, string, error) {
	if s.URL != "" {
		u, err := url.Parse(s.URL)
		if err != nil {
			return "", "", fmt.Errorf("invalid url %q: %w", s.URL, err)
		}
		overrideQuery(u, s.Prefix, s.Mode)
		return u.String(), "", nil
	}

	ep, err := s.EndpointURL()
	if err != nil {
		return "", "", err
	}
	root := "/" + s.Bucket
	u := &url.URL{Scheme: ep.Scheme, Host: ep.Host, Path: root + "/"}
	overrideQuery(u, s.Prefix, s.Mode)
	return u.String(), root, nil
}

func overrideQuery(u *url.URL, prefix, mode string) {
	q := u.Query()
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if mode != "" {
		q.Set("mode", mode)
	}
	u.RawQuery = q.Encode()
}

// TimeLocation returns the time zone timestamps are shown in.
func (s Settings) TimeLocation() (*time.Location, error) {
	if s.TZ == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", s.TZ, err)
	}
	return loc, nil
}
