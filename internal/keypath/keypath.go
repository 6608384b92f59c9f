// Package keypath converts between URL paths and object store keys.
//
// A path always starts with "/" and a key never does. Keys ending in "/"
// name folders (common prefixes), any other key names an object.
package keypath

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrContract is returned when a caller passes a malformed path or key.
var ErrContract = errors.New("keypath: contract violation")

var (
	basenameRe = regexp.MustCompile(`([^/]+)/*$`)
	dirnameRe  = regexp.MustCompile(`^(.*[^/])/+[^/]+/*`)
	doubleRe   = regexp.MustCompile(`^//[^/]`)
)

// Segment is one step of a breadcrumb.
type Segment struct {
	Path string
	Name string
}

// Key returns the object store key of the segment.
func (s Segment) Key() string {
	return strings.TrimPrefix(s.Path, "/")
}

// PathToKey strips the leading slash of path.
func PathToKey(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: path %q has no leading slash", ErrContract, path)
	}
	return path[1:], nil
}

// KeyToPath prepends a slash to key.
func KeyToPath(key string) (string, error) {
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: key %q has a leading slash", ErrContract, key)
	}
	return "/" + key, nil
}

// MustPathToKey is like PathToKey but panics on a contract violation.
func MustPathToKey(path string) string {
	key, err := PathToKey(path)
	if err != nil {
		panic(err)
	}
	return key
}

// MustKeyToPath is like KeyToPath but panics on a contract violation.
func MustKeyToPath(key string) string {
	path, err := KeyToPath(key)
	if err != nil {
		panic(err)
	}
	return path
}

// Basename returns the last non-empty component of path.
func Basename(path string) string {
	if m := basenameRe.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	switch {
	case path == "//":
		return "//"
	case strings.HasPrefix(path, "/"):
		return "/"
	default:
		return "."
	}
}

// Dirname returns path without its last component.
func Dirname(path string) string {
	if m := dirnameRe.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	switch {
	case doubleRe.MatchString(path) || path == "//":
		return "//"
	case strings.HasPrefix(path, "/"):
		return "/"
	default:
		return "."
	}
}

// Segments returns the ancestor chain of path, root first. The root "/"
// has no segments. Every segment except possibly the last ends in "/".
func Segments(path string) ([]Segment, error) {
	var segs []Segment
	for path != "/" {
		segs = append(segs, Segment{Path: path, Name: Basename(path)})
		parent := Dirname(path)
		if parent == "//" || parent == "." {
			return nil, fmt.Errorf("%w: cannot split %q (parent %q)", ErrContract, path, parent)
		}
		if parent == "/" {
			break
		}
		path = parent + "/"
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs, nil
}

// IsFolder reports whether key names a folder.
func IsFolder(key string) bool {
	return strings.HasSuffix(key, "/")
}
