package comments

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/kv"
)

// DefaultAuthor is recorded on comments when no author is configured.
const DefaultAuthor = "User"

// Controller owns the comments of one screen.
//
// Remote failures never reach the caller. Each one is logged and replaced by
// the equivalent operation on the local store.
type Controller struct {
	screen string
	remote Remote
	local  kv.Store
	author string
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	comments  []Comment
	pinMode   bool
	pending   *Pin
	expanded  string
	showPins  bool
	lastStamp time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithAuthor sets the author recorded on new comments.
func WithAuthor(author string) Option {
	return func(c *Controller) {
		if author != "" {
			c.author = author
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController returns a controller for screen. remote may be nil, in which
// case every operation uses local storage directly.
func NewController(screen string, remote Remote, local kv.Store, opts ...Option) *Controller {
	c := &Controller{
		screen:   screen,
		remote:   remote,
		local:    local,
		author:   DefaultAuthor,
		now:      time.Now,
		logger:   slog.Default(),
		showPins: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("screen", screen)
	c.showPins = c.loadShowPins(context.Background())
	return c
}

// Screen returns the screen the controller is scoped to.
func (c *Controller) Screen() string { return c.screen }

// Comments returns the current list, newest first.
func (c *Controller) Comments() []Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.comments)
}

// Load fetches the screen's comments from the remote store, falling back to
// the local store on any failure. The result is ordered newest first.
func (c *Controller) Load(ctx context.Context) []Comment {
	list := c.fetch(ctx)
	c.mu.Lock()
	c.comments = list
	c.mu.Unlock()
	return slices.Clone(list)
}

// Refresh reloads the list and reports whether it changed. The TUI polls it
// to pick up comments created elsewhere.
func (c *Controller) Refresh(ctx context.Context) ([]Comment, bool) {
	list := c.fetch(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := !slices.EqualFunc(list, c.comments, sameComment)
	c.comments = list
	return slices.Clone(list), changed
}

func (c *Controller) fetch(ctx context.Context) []Comment {
	if c.remote != nil {
		list, err := c.remote.List(ctx, c.screen)
		if err == nil {
			list = slices.DeleteFunc(list, func(cm Comment) bool { return cm.ScreenName != c.screen })
			SortNewestFirst(list)
			return list
		}
		c.remoteFailed("comments load failed, using local store", "load", err)
	}
	return c.loadLocal(ctx)
}

// remoteFailed logs a remote call the controller is about to replace with
// local storage. An unreachable endpoint is expected offline; anything else
// is logged as an error.
func (c *Controller) remoteFailed(msg, op string, err error) {
	attrs := []any{"op", op, "error", err}
	if re, ok := errors.AsRemoteError(err); ok {
		attrs = append(attrs, "remote_op", re.Op)
		if re.Status != 0 {
			attrs = append(attrs, "status", re.Status)
		}
	}
	if errors.IsUnavailable(err) {
		c.logger.Warn(msg, attrs...)
		return
	}
	c.logger.Error(msg, attrs...)
}

func (c *Controller) loadLocal(ctx context.Context) []Comment {
	list, _, err := kv.GetJSON[[]Comment](ctx, c.local, kv.ScreenKey(c.screen))
	if err != nil {
		c.logger.Warn("local comments unreadable", "op", "load", "error", err)
		return []Comment{}
	}
	if list == nil {
		list = []Comment{}
	}
	SortNewestFirst(list)
	return list
}

func (c *Controller) persistLocked(ctx context.Context) {
	if err := kv.PutJSON(ctx, c.local, kv.ScreenKey(c.screen), c.comments); err != nil {
		c.logger.Warn("local comments not saved", "op", "persist", "error", err)
	}
}

// EnterPinMode arms the next click to place a pin.
func (c *Controller) EnterPinMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinMode = true
}

// ExitPinMode disarms pin placement without touching a pending pin.
func (c *Controller) ExitPinMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinMode = false
}

// PinMode reports whether the next click places a pin.
func (c *Controller) PinMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinMode
}

// Click handles a click at (x, y). In pin mode, a click outside the overlay's
// own controls records a pending pin, leaves pin mode and returns true so the
// caller can open the composer there.
func (c *Controller) Click(x, y int, onControls bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pinMode || onControls {
		return false
	}
	c.pending = &Pin{X: x, Y: y}
	c.pinMode = false
	return true
}

// PendingPin returns the pin awaiting a comment, if any.
func (c *Controller) PendingPin() (Pin, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Pin{}, false
	}
	return *c.pending, true
}

// DiscardPending closes the composer without saving.
func (c *Controller) DiscardPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Submit creates a comment with the given text, anchored at pin when non-nil.
// Blank text returns an ErrInvalid error and changes nothing. Otherwise the
// comment is created remotely or, if that fails, saved locally; either way it
// is returned and added to the top of the list.
func (c *Controller) Submit(ctx context.Context, text string, pin *Pin) (Comment, error) {
	if blank(text) {
		return Comment{}, errors.Invalidf("comment text cannot be empty")
	}

	c.mu.Lock()
	stamp := c.nextStampLocked()
	c.mu.Unlock()

	cm := Comment{
		ScreenName: c.screen,
		Text:       text,
		Author:     c.author,
		Timestamp:  FormatTime(stamp),
	}
	if pin != nil {
		cm = cm.WithPin(*pin)
	}

	if c.remote != nil {
		created, err := c.remote.Create(ctx, cm)
		if err == nil {
			if created.Timestamp == "" {
				created = cm
			}
			c.mu.Lock()
			c.comments = prepend(c.comments, created)
			c.pending = nil
			c.mu.Unlock()
			return created, nil
		}
		c.remoteFailed("comment create failed, saving locally", "create", err)
	}

	cm.ID = strconv.FormatInt(stamp.UnixMilli(), 10)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments = prepend(c.comments, cm)
	c.pending = nil
	c.persistLocked(ctx)
	return cm, nil
}

// Delete removes cm. Comments not in the current list are ignored. A failed
// remote delete removes the comment locally and persists the remainder.
func (c *Controller) Delete(ctx context.Context, cm Comment) {
	c.mu.Lock()
	if !slices.ContainsFunc(c.comments, func(x Comment) bool { return x.Timestamp == cm.Timestamp }) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	var remoteErr error
	if c.remote != nil {
		remoteErr = c.remote.Delete(ctx, c.screen, cm.Timestamp)
		if remoteErr != nil {
			c.remoteFailed("comment delete failed, removing locally", "delete", remoteErr)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments = slices.DeleteFunc(c.comments, func(x Comment) bool { return x.Timestamp == cm.Timestamp })
	if c.expanded == cm.Timestamp {
		c.expanded = ""
	}
	if c.remote == nil || remoteErr != nil {
		c.persistLocked(ctx)
	}
}

// ShowPins reports whether pins are rendered.
func (c *Controller) ShowPins() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showPins
}

// SetShowPins changes pin visibility for every screen. Hidden pins keep their data.
func (c *Controller) SetShowPins(ctx context.Context, show bool) {
	c.mu.Lock()
	c.showPins = show
	c.mu.Unlock()
	if err := kv.PutJSON(ctx, c.local, kv.ShowPinsKey, show); err != nil {
		c.logger.Warn("pin visibility not saved", "op", "show-pins", "error", err)
	}
}

// TogglePins flips pin visibility and returns the new value.
func (c *Controller) TogglePins(ctx context.Context) bool {
	show := !c.ShowPins()
	c.SetShowPins(ctx, show)
	return show
}

func (c *Controller) loadShowPins(ctx context.Context) bool {
	show, ok, err := kv.GetJSON[bool](ctx, c.local, kv.ShowPinsKey)
	if err != nil || !ok {
		return true
	}
	return show
}

// Toggle expands cm, or collapses it if it is already expanded. At most one
// comment is expanded at a time.
func (c *Controller) Toggle(cm Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded == cm.Timestamp {
		c.expanded = ""
		return
	}
	c.expanded = cm.Timestamp
}

// Expanded returns the expanded comment, if any.
func (c *Controller) Expanded() (Comment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded == "" {
		return Comment{}, false
	}
	for _, cm := range c.comments {
		if cm.Timestamp == c.expanded {
			return cm, true
		}
	}
	return Comment{}, false
}

// nextStampLocked returns the current time at millisecond precision, bumped
// past the previous stamp and any existing comment so timestamps stay unique.
func (c *Controller) nextStampLocked() time.Time {
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.lastStamp) {
		t = c.lastStamp.Add(time.Millisecond)
	}
	for slices.ContainsFunc(c.comments, func(x Comment) bool { return x.Timestamp == FormatTime(t) }) {
		t = t.Add(time.Millisecond)
	}
	c.lastStamp = t
	return t
}

func prepend(list []Comment, cm Comment) []Comment {
	out := make([]Comment, 0, len(list)+1)
	out = append(out, cm)
	return append(out, list...)
}

func sameComment(a, b Comment) bool {
	return a.Timestamp == b.Timestamp && a.Text == b.Text && a.Author == b.Author
}

// Updater is implemented by remotes that can edit a comment in place.
type Updater interface {
	Update(ctx context.Context, screen, timestamp, text string) (Comment, error)
}

// Edit replaces the text of cm. Blank text is rejected like Submit. When the
// remote cannot update, the edit is applied to the local list and persisted.
func (c *Controller) Edit(ctx context.Context, cm Comment, text string) (Comment, error) {
	if blank(text) {
		return Comment{}, errors.Invalidf("comment text cannot be empty")
	}

	c.mu.Lock()
	i := slices.IndexFunc(c.comments, func(x Comment) bool { return x.Timestamp == cm.Timestamp })
	c.mu.Unlock()
	if i < 0 {
		return Comment{}, fmt.Errorf("comment %s: %w", cm.Timestamp, errors.ErrNotFound)
	}

	updated := cm
	updated.Text = text
	persist := true
	if u, ok := c.remote.(Updater); ok {
		got, err := u.Update(ctx, c.screen, cm.Timestamp, text)
		if err == nil {
			persist = false
			if got.Timestamp != "" {
				updated = got
			}
		} else {
			c.remoteFailed("comment update failed, editing locally", "update", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i = slices.IndexFunc(c.comments, func(x Comment) bool { return x.Timestamp == cm.Timestamp }); i >= 0 {
		c.comments[i] = updated
	}
	if persist {
		c.persistLocked(ctx)
	}
	return updated, nil
}
