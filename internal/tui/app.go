// Package tui renders the bucket browser in the terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/slmtnm/s3browse/internal/listing"
	"github.com/slmtnm/s3browse/internal/location"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// Lister lists one prefix to exhaustion.
type Lister interface {
	ListPrefix(ctx context.Context, prefix string) (*listing.Listing, error)
}

// Options configure the browser.
type Options struct {
	Context   context.Context
	Lister    Lister
	Location  *location.Location
	Formatter viewmodel.Formatter
	Logger    zerolog.Logger
	// Title labels the bucket in the header and the tree root.
	Title string
}

func (o Options) ctx() context.Context {
	if o.Context == nil {
		return context.Background()
	}
	return o.Context
}

// New returns the model for opts.Location.Mode. An unknown mode fails
// before anything is rendered.
func New(opts Options) (tea.Model, error) {
	if opts.Lister == nil || opts.Location == nil {
		return nil, errors.New("tui: lister and location are required")
	}
	if opts.Formatter.Location == nil {
		opts.Formatter = viewmodel.LocalFormatter()
	}

	switch opts.Location.Mode {
	case location.List:
		m, err := newListModel(opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	case location.Tree:
		return newTreeModel(opts), nil
	}
	return nil, fmt.Errorf("%w: %s", location.ErrInvalidMode, opts.Location.Mode)
}

// Run builds the browser and blocks until the user quits. The first
// listing starts in the background as soon as the program starts.
func Run(opts Options, programOpts ...tea.ProgramOption) error {
	model, err := New(opts)
	if err != nil {
		return err
	}

	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(opts.ctx())}, programOpts...)
	program := tea.NewProgram(model, programOpts...)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if f, ok := final.(interface{ Fatal() error }); ok && f.Fatal() != nil {
		return f.Fatal()
	}
	return nil
}

// center places content in the middle of a width x height screen.
func center(content string, width, height int) string {
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func fatalView(err error) string {
	return errorStyle.Render(fmt.Sprintf("Fatal: %s", err)) + "\n\n" + helpStyle.Render("q: quit")
}
