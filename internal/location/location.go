// Package location resolves the browse state encoded in a page URL: the
// bucket origin, the current prefix and the view mode.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/slmtnm/s3browse/internal/keypath"
)

// ErrInvalidMode is returned for an unknown mode query value.
var ErrInvalidMode = errors.New("location: invalid mode")

// Mode selects the renderer.
type Mode int

const (
	List Mode = iota
	Tree
)

func (m Mode) String() string {
	switch m {
	case List:
		return "list"
	case Tree:
		return "tree"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode query value to a Mode. The empty string is List.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "list":
		return List, nil
	case "tree":
		return Tree, nil
	}
	return List, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Location is the resolved browse state of a page URL.
type Location struct {
	// Origin is the bucket root, always ending in "/".
	Origin *url.URL
	// PagePath is the page path relative to the bucket root.
	PagePath string
	// PageKey is the key of the page itself.
	PageKey string
	// PagePrefix is the folder the page lives in.
	PagePrefix string
	// Prefix is the folder being browsed.
	Prefix string
	Mode   Mode
}

// Resolve parses rawURL. bucketRoot is the URL path of the bucket root
// for path-style endpoints (for example "/my-bucket") and empty for
// virtual-host style ones.
func Resolve(rawURL, bucketRoot string) (*Location, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute", rawURL)
	}

	bucketRoot = strings.TrimSuffix(bucketRoot, "/")
	if bucketRoot != "" && !strings.HasPrefix(bucketRoot, "/") {
		bucketRoot = "/" + bucketRoot
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if bucketRoot != "" {
		if path == bucketRoot {
			path = "/"
		} else if !strings.HasPrefix(path, bucketRoot+"/") {
			return nil, fmt.Errorf("url path %q is outside bucket root %q", path, bucketRoot)
		}
		path = strings.TrimPrefix(path, bucketRoot)
		if path == "" {
			path = "/"
		}
	}

	pageKey, err := keypath.PathToKey(path)
	if err != nil {
		return nil, err
	}
	pagePrefix, err := keypath.PathToKey(path[:strings.LastIndex(path, "/")+1])
	if err != nil {
		return nil, err
	}

	query := u.Query()
	mode, err := ParseMode(query.Get("mode"))
	if err != nil {
		return nil, err
	}

	prefix := query.Get("prefix")
	if prefix == "" {
		prefix = pagePrefix
	}
	if strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("%w: prefix %q has a leading slash", keypath.ErrContract, prefix)
	}

	origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: bucketRoot + "/"}

	return &Location{
		Origin:     origin,
		PagePath:   path,
		PageKey:    pageKey,
		PagePrefix: pagePrefix,
		Prefix:     prefix,
		Mode:       mode,
	}, nil
}

// WithPrefix returns a copy of l browsing prefix.
func (l *Location) WithPrefix(prefix string) *Location {
	c := *l
	c.Prefix = prefix
	return &c
}

// IgnoreKeys are keys never shown as rows: the page itself and the
// folder markers of the page folder and the browsed folder.
func (l *Location) IgnoreKeys() map[string]bool {
	return map[string]bool{
		l.PageKey:    true,
		l.PagePrefix: true,
		l.Prefix:     true,
	}
}

func (l *Location) pageURL(query url.Values) *url.URL {
	u := *l.Origin
	u.Path = strings.TrimSuffix(l.Origin.Path, "/") + l.PagePath
	if l.Mode != List {
		query.Set("mode", l.Mode.String())
	}
	u.RawQuery = query.Encode()
	return &u
}

// PageURL links to the page without a prefix override.
func (l *Location) PageURL() string {
	return l.pageURL(url.Values{}).String()
}

// PrefixURL links to the page browsing prefix.
func (l *Location) PrefixURL(prefix string) string {
	return l.pageURL(url.Values{"prefix": {prefix}}).String()
}

// ObjectURL links to the object named key.
func (l *Location) ObjectURL(key string) (string, error) {
	path, err := keypath.KeyToPath(key)
	if err != nil {
		return "", err
	}
	u := *l.Origin
	u.Path = strings.TrimSuffix(l.Origin.Path, "/") + path
	return u.String(), nil
}

// ListingURL is the origin the listing endpoint is queried at.
func (l *Location) ListingURL() string {
	return l.Origin.String()
}
