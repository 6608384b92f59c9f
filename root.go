package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slmtnm/s3browse/internal/config"
	"github.com/slmtnm/s3browse/internal/listing"
	"github.com/slmtnm/s3browse/internal/location"
	"github.com/slmtnm/s3browse/internal/logger"
	"github.com/slmtnm/s3browse/internal/tui"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

var cfgFile string

func init() {
	cobra.MousetrapHelpText = ""

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&cfgFile, "config", "c", "", "config file path")
	config.AddFlags(persistent)

	rootCmd.AddCommand(listCmd, setupCmd)
}

var rootCmd = &cobra.Command{
	Use:   "s3browse [bucket]",
	Short: "Browse a public S3 bucket in the terminal",
	Long: `s3browse lists the folders and objects of a publicly listable S3
compatible bucket, either as a sortable table or as a lazily expanded
tree.

The bucket is given either as a positional argument, in which case the
endpoint and region come from the flags or from an s3cmd style .s3cfg
file, or as a full browse URL with --url:

  s3browse my-bucket --endpoint http://localhost:9000
  s3browse --url "https://bucket.s3.amazonaws.com/index.html?prefix=logs/&mode=tree"

Every flag can also be set in the environment, prefixed by "S3BROWSE_",
or in a .s3browse.{yaml,json,toml} file in the current or home
directory.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBrowser(cmd, args, true)
		if err != nil {
			return err
		}
		return tui.Run(b.options(cmd.Context()))
	},
}

// browser is everything a command needs to list the requested folder.
type browser struct {
	settings  config.Settings
	loc       *location.Location
	client    *listing.Client
	formatter viewmodel.Formatter
}

func (b *browser) options(ctx context.Context) tui.Options {
	title := b.settings.Bucket
	if title == "" {
		title = b.loc.Origin.Host
	}
	return tui.Options{
		Context:   ctx,
		Lister:    b.client,
		Location:  b.loc,
		Formatter: b.formatter,
		Logger:    logger.Log,
		Title:     title,
	}
}

// loadSettings merges flags, environment, config file and .s3cfg. When
// interactive is set and nothing names an endpoint, the user is offered
// the .s3cfg setup.
func loadSettings(cmd *cobra.Command, args []string, interactive bool) (config.Settings, error) {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return config.Settings{}, err
	}
	if err := config.ReadConfigFile(v, cfgFile); err != nil {
		return config.Settings{}, err
	}
	if len(args) == 1 {
		v.Set(config.KeyBucket, args[0])
	}
	settings := config.FromViper(v)

	if settings.URL == "" && (settings.Endpoint == "" || settings.Region == "") {
		s3cfg, err := config.LoadS3Config()
		switch {
		case errors.Is(err, config.ErrNotFound) && settings.Endpoint == "" && interactive:
			fmt.Fprintf(cmd.ErrOrStderr(), "No S3 configuration found: %s\n\n", err)
			s3cfg, err = config.InteractiveS3Setup(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return config.Settings{}, fmt.Errorf("setup cancelled or failed: %w", err)
			}
		case errors.Is(err, config.ErrNotFound):
		case err != nil:
			return config.Settings{}, err
		}
		settings.ApplyS3Config(s3cfg)
	}

	return settings, settings.Validate()
}

func openBrowser(cmd *cobra.Command, args []string, interactive bool) (*browser, error) {
	settings, err := loadSettings(cmd, args, interactive)
	if err != nil {
		return nil, err
	}
	logger.Setup(settings.LogLevel, settings.LogFile)

	rawURL, bucketRoot, err := settings.BrowseURL()
	if err != nil {
		return nil, err
	}
	loc, err := location.Resolve(rawURL, bucketRoot)
	if err != nil {
		return nil, err
	}

	tz, err := settings.TimeLocation()
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fetcher, err := newFetcher(ctx, settings, loc)
	if err != nil {
		return nil, err
	}

	client := listing.NewClient(fetcher, logger.Log)
	client.MaxKeys = settings.MaxKeys
	client.MaxPages = settings.MaxPages

	logger.Log.Info().
		Str("backend", settings.Backend).
		Str("origin", loc.ListingURL()).
		Str("prefix", loc.Prefix).
		Str("mode", loc.Mode.String()).
		Msg("browser configured")

	return &browser{
		settings:  settings,
		loc:       loc,
		client:    client,
		formatter: viewmodel.Formatter{Location: tz},
	}, nil
}

// newFetcher picks the listing backend. The xml backend talks to the
// page origin directly; the SDK backends address the bucket by name.
func newFetcher(ctx context.Context, s config.Settings, loc *location.Location) (listing.PageFetcher, error) {
	switch s.Backend {
	case config.BackendSDK:
		ep, err := s.EndpointURL()
		if err != nil {
			return nil, err
		}
		f, err := listing.NewSDKFetcher(ctx, ep.String(), s.Region, s.Bucket)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.BackendMinio:
		ep, err := s.EndpointURL()
		if err != nil {
			return nil, err
		}
		f, err := listing.NewMinioFetcher(ep.Host, s.Region, s.Bucket, ep.Scheme == "https")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return listing.NewHTTPFetcher(loc.ListingURL(), s.Timeout), nil
}
