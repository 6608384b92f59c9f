// Package viewmodel turns listing results into display rows.
package viewmodel

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/slmtnm/s3browse/internal/keypath"
)

// Kind tells folders from files.
type Kind int

const (
	File Kind = iota
	Folder
)

func (k Kind) String() string {
	if k == Folder {
		return "folder"
	}
	return "file"
}

// Icon classifies a row for display.
type Icon int

const (
	IconFile Icon = iota
	IconFolder
	IconImage
	IconVideo
)

func (i Icon) String() string {
	switch i {
	case IconFolder:
		return "folder"
	case IconImage:
		return "image"
	case IconVideo:
		return "video"
	}
	return "file"
}

type iconRule struct {
	re   *regexp.Regexp
	icon Icon
}

// First match wins.
var iconRules = []iconRule{
	{regexp.MustCompile(`/$`), IconFolder},
	{regexp.MustCompile(`(?i)\.(gif|jpeg|jpg|jpe|png)$`), IconImage},
	{regexp.MustCompile(`(?i)\.(mp4|mp4v|mpg4)$`), IconVideo},
}

// Classification is the display identity of a key.
type Classification struct {
	Kind        Kind
	Icon        Icon
	DisplayName string
}

// Classify returns the kind, icon and display name of key. It panics
// with a keypath.ErrContract error if key has a leading slash.
func Classify(key string) Classification {
	c := Classification{
		Kind:        File,
		Icon:        IconFile,
		DisplayName: keypath.Basename(keypath.MustKeyToPath(key)),
	}
	if keypath.IsFolder(key) {
		c.Kind = Folder
	}
	for _, rule := range iconRules {
		if rule.re.MatchString(key) {
			c.Icon = rule.icon
			break
		}
	}
	return c
}

var sizeUnits = []string{"", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// FormatSize renders a byte count with binary units, for example
// "1023", "1 KiB", "1.5 KiB" or "100 KiB". Zero and negative sizes
// render as an empty string.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return ""
	}

	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	var num string
	if v >= 100 || math.Abs(v-math.Round(v)) < 0.05 {
		num = fmt.Sprintf("%.0f", v)
	} else {
		num = fmt.Sprintf("%.1f", v)
	}
	if i == 0 {
		return num
	}
	return num + " " + sizeUnits[i]
}

// TimestampLayout is the fixed layout of FormatTimestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Formatter renders timestamps in a fixed location.
type Formatter struct {
	Location *time.Location
}

// LocalFormatter renders timestamps in the local time zone.
func LocalFormatter() Formatter {
	return Formatter{Location: time.Local}
}

// FormatTimestamp renders t as "YYYY-MM-DD HH:MM:SS". The zero time
// renders as an empty string.
func (f Formatter) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}
