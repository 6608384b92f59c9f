package viewmodel

import (
	"errors"
	"time"

	"github.com/slmtnm/s3browse/internal/keypath"
	"github.com/slmtnm/s3browse/internal/listing"
)

// SortKeys are the synthetic per-column sort keys of a row.
type SortKeys struct {
	// Type is "0:<name>" for folders and "1:<name>" for files.
	Type string
	// MTime is -1 for folders, else epoch milliseconds.
	MTime int64
	// Size is -1 for folders, else the byte count.
	Size int64
}

// Row is one display item. Rows are never modified once built.
type Row struct {
	Key          string
	DisplayName  string
	Kind         Kind
	Icon         Icon
	LastModified *time.Time
	SizeBytes    *int64
	ETag         string
	StorageClass string
	Sort         SortKeys
}

// IsFolder reports whether the row is a folder.
func (r Row) IsFolder() bool {
	return r.Kind == Folder
}

// SizeText is the formatted size, empty for folders.
func (r Row) SizeText() string {
	if r.SizeBytes == nil {
		return ""
	}
	return FormatSize(*r.SizeBytes)
}

// ModifiedText is the formatted modification time, empty for folders.
func (r Row) ModifiedText(f Formatter) string {
	if r.LastModified == nil {
		return ""
	}
	return f.FormatTimestamp(*r.LastModified)
}

func newRow(key string) Row {
	c := Classify(key)
	r := Row{
		Key:         key,
		DisplayName: c.DisplayName,
		Kind:        c.Kind,
		Icon:        c.Icon,
	}
	if r.Kind == Folder {
		r.Sort = SortKeys{Type: "0:" + r.DisplayName, MTime: -1, Size: -1}
	} else {
		r.Sort = SortKeys{Type: "1:" + r.DisplayName}
	}
	return r
}

// FromObject builds the row of a listed object. Objects whose key ends
// in "/" are folder markers and become folder rows.
func FromObject(obj listing.Object) Row {
	r := newRow(obj.Key)
	r.ETag = obj.ETag
	r.StorageClass = obj.StorageClass
	if r.Kind == Folder {
		return r
	}
	modified := obj.LastModified
	size := obj.Size
	r.LastModified = &modified
	r.SizeBytes = &size
	r.Sort.MTime = modified.UnixMilli()
	r.Sort.Size = size
	return r
}

// FromPrefix builds the row of a common prefix.
func FromPrefix(prefix string) Row {
	return newRow(prefix)
}

// Build returns a row for every object and common prefix of l, objects
// first, skipping keys present in ignore.
func Build(l *listing.Listing, ignore map[string]bool) []Row {
	rows := make([]Row, 0, len(l.Contents)+len(l.CommonPrefixes))
	for _, obj := range l.Contents {
		if ignore[obj.Key] {
			continue
		}
		rows = append(rows, FromObject(obj))
	}
	for _, p := range l.CommonPrefixes {
		if ignore[p] {
			continue
		}
		rows = append(rows, FromPrefix(p))
	}
	return rows
}

// TryBuild is Build for listings from the network: a key that breaks the
// key/path contract is returned as an error instead of a panic.
func TryBuild(l *listing.Listing, ignore map[string]bool) (rows []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, keypath.ErrContract) {
				rows, err = nil, e
				return
			}
			panic(r)
		}
	}()
	return Build(l, ignore), nil
}
