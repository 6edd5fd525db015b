// Package comments implements the screen-scoped annotation overlay: loading,
// pin placement, submission and deletion of comments, with every remote
// failure degrading to the local key-value store.
package comments

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// TimestampLayout is the ISO-8601 UTC form used for comment timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// PreviewLength is the number of characters shown when hovering a pin.
const PreviewLength = 60

// Comment is a note left on a screen. Timestamp identifies it within the screen.
type Comment struct {
	ScreenName string `json:"screenname"`
	Text       string `json:"text"`
	Author     string `json:"author"`
	Timestamp  string `json:"timestamp"`
	ID         string `json:"id,omitempty"`
	PinX       *int   `json:"pinX,omitempty"`
	PinY       *int   `json:"pinY,omitempty"`
}

// Pin is a screen coordinate a comment is anchored to.
type Pin struct {
	X int
	Y int
}

// Pin returns the comment's anchor, if it has one.
func (c Comment) Pin() (Pin, bool) {
	if c.PinX == nil || c.PinY == nil {
		return Pin{}, false
	}
	return Pin{X: *c.PinX, Y: *c.PinY}, true
}

// WithPin returns a copy of c anchored at p.
func (c Comment) WithPin(p Pin) Comment {
	x, y := p.X, p.Y
	c.PinX, c.PinY = &x, &y
	return c
}

// Time parses the timestamp. The zero time is returned for malformed values.
func (c Comment) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, c.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Remote is the shared comment store.
type Remote interface {
	List(ctx context.Context, screen string) ([]Comment, error)
	Create(ctx context.Context, c Comment) (Comment, error)
	Delete(ctx context.Context, screen, timestamp string) error
}

// SortNewestFirst orders comments by timestamp, newest first.
func SortNewestFirst(list []Comment) {
	slices.SortStableFunc(list, func(a, b Comment) int {
		return b.Time().Compare(a.Time())
	})
}

// Preview returns the first PreviewLength characters of the text.
func Preview(c Comment) string {
	if utf8.RuneCountInString(c.Text) <= PreviewLength {
		return c.Text
	}
	runes := []rune(c.Text)
	return string(runes[:PreviewLength]) + "..."
}

// FormatTimestamp renders a timestamp for display in loc. Unparseable values
// are returned unchanged.
func FormatTimestamp(ts string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("1/2/2006, 3:04:05 PM")
}

// FormatTime renders t in the comment timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
