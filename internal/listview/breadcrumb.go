package listview

import (
	"fmt"
	"strings"

	"github.com/slmtnm/s3browse/internal/keypath"
	"github.com/slmtnm/s3browse/internal/location"
)

// CrumbKind tells how a breadcrumb entry links.
type CrumbKind int

const (
	// CrumbText is an ancestor above the page folder and is not a link.
	CrumbText CrumbKind = iota
	// CrumbPage links back to the page without a prefix.
	CrumbPage
	// CrumbPrefix links to the page browsing that ancestor.
	CrumbPrefix
)

// Crumb is one breadcrumb entry.
type Crumb struct {
	Name   string
	Kind   CrumbKind
	Prefix string
	Href   string
}

// Breadcrumb returns the entries from the bucket root to loc.Prefix.
func Breadcrumb(loc *location.Location) ([]Crumb, error) {
	if !strings.HasPrefix(loc.Prefix, loc.PagePrefix) {
		return nil, fmt.Errorf("%w: prefix %q is outside page folder %q", keypath.ErrContract, loc.Prefix, loc.PagePrefix)
	}

	thisPath, err := keypath.KeyToPath(loc.Prefix)
	if err != nil {
		return nil, err
	}
	pagePath, err := keypath.KeyToPath(loc.PagePrefix)
	if err != nil {
		return nil, err
	}
	thisSegs, err := keypath.Segments(thisPath)
	if err != nil {
		return nil, err
	}
	pageSegs, err := keypath.Segments(pagePath)
	if err != nil {
		return nil, err
	}

	crumbs := make([]Crumb, 0, len(thisSegs))
	for i, seg := range thisSegs {
		c := Crumb{Name: seg.Name, Prefix: seg.Key()}
		switch {
		case i < len(pageSegs)-1:
			c.Kind = CrumbText
		case i == len(pageSegs)-1:
			c.Kind = CrumbPage
			c.Href = loc.PageURL()
		default:
			c.Kind = CrumbPrefix
			c.Href = loc.PrefixURL(c.Prefix)
		}
		crumbs = append(crumbs, c)
	}
	return crumbs, nil
}

// Parent returns the prefix one level above loc.Prefix, or false when
// loc.Prefix is already the page folder.
func Parent(loc *location.Location) (string, bool) {
	if loc.Prefix == loc.PagePrefix || loc.Prefix == "" {
		return "", false
	}
	path := keypath.Dirname(keypath.MustKeyToPath(loc.Prefix))
	if path == "/" {
		return "", true
	}
	return keypath.MustPathToKey(path) + "/", true
}
