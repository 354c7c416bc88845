package reviews

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marcodive/divesite/internal/apperror"
	"github.com/marcodive/divesite/internal/model"
	"github.com/marcodive/divesite/internal/notify"
	"github.com/marcodive/divesite/internal/session"
)

// reloadTimeout bounds the reloads the controller starts on its own (the
// session-change path, which has no caller context to inherit).
const reloadTimeout = 10 * time.Second

// Store is the review store as the controller sees it: list everything
// newest-first, insert one row. The store assigns ID and InsertedAt.
type Store interface {
	ListAll(ctx context.Context) ([]model.Review, error)
	Insert(ctx context.Context, review *model.Review) error
}

// Feed delivers newly inserted rows. Subscribe is called exactly once per
// controller lifetime; cancel is called on Close.
type Feed interface {
	Subscribe() (<-chan model.Review, func())
}

// Notifier is the fire-and-forget webhook. *notify.Webhook implements it.
type Notifier interface {
	SendAsync(p notify.Payload)
}

// State is a consistent snapshot of everything a view needs to render.
type State struct {
	Reviews []model.Review
	Loading bool
	Err     string

	SignedIn  bool
	Name      string
	AvatarURL string

	// Form fields for the submission box.
	Stars   int
	Content string
}

// Controller owns one visitor's view of the reviews feature.
//
// Lifecycle: NewController, Start (resolves the session, loads the list,
// subscribes to the feed and to session changes), then any number of
// Reload/Submit/Logout/Snapshot calls, then Close.
//
// All state mutation happens under one mutex — the moral equivalent of the
// single UI event loop this logic is modeled on. A reload racing a live
// insert is tolerated: the list deduplicates by ID and every path restores
// sorted order, so the worst case is a brief omission healed by the next
// reload or feed event.
type Controller struct {
	store    Store
	feed     Feed
	tracker  session.Tracker
	notifier Notifier // may be nil: notifications disabled
	logger   *slog.Logger

	mu      sync.Mutex
	list    List
	loading bool
	errMsg  string
	sess    *session.Session
	stars   int
	content string

	cancelSession func()
	cancelFeed    func()
	feedDone      chan struct{}
	started       bool
}

// NewController wires the controller's collaborators. notifier may be nil.
func NewController(store Store, feed Feed, tracker session.Tracker, notifier Notifier, logger *slog.Logger) *Controller {
	return &Controller{
		store:    store,
		feed:     feed,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger,
		stars:    model.DefaultStars,
	}
}

// Start resolves the current session, performs the initial load, and
// establishes the two long-lived subscriptions: session changes (each one
// triggers a full reload) and the change feed (each event merges into the
// list). Call Close to release both.
func (c *Controller) Start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true

	sess, err := c.tracker.Current(ctx)
	if err != nil {
		// Auth trouble must never block rendering; treat as signed out.
		c.logger.Warn("reviews: resolving session failed, treating as signed out",
			slog.String("error", err.Error()),
		)
		sess = nil
	}
	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	c.Reload(ctx)

	c.cancelSession = c.tracker.OnChange(func(s *session.Session) {
		c.mu.Lock()
		c.sess = s
		c.mu.Unlock()

		// Visibility and authorship context may depend on the session, so
		// both login and logout re-fetch the list.
		rctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		c.Reload(rctx)
	})

	ch, cancelFeed := c.feed.Subscribe()
	c.cancelFeed = cancelFeed
	c.feedDone = make(chan struct{})
	go func() {
		defer close(c.feedDone)
		for review := range ch {
			c.applyInsert(review)
		}
	}()
}

// Reload fetches the full list and replaces local state. On failure the
// list is emptied and the error is surfaced for display — recoverable, not
// fatal; the next session change or page visit retries naturally.
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := c.store.ListAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.logger.Warn("reviews: reload failed", slog.String("error", err.Error()))
		c.list.Clear()
		c.errMsg = err.Error()
		return
	}

	c.list.Replace(items)
	c.errMsg = ""
}

// applyInsert merges one change-feed delivery into the list.
func (c *Controller) applyInsert(review model.Review) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.list.Insert(review) {
		// Already present — a reload and the feed overlapped. Harmless.
		c.logger.Debug("reviews: duplicate feed delivery ignored",
			slog.String("reviewID", review.ID),
		)
	}
}

// SetStars updates the form's rating selection.
func (c *Controller) SetStars(stars int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stars = stars
}

// SetContent updates the form's text body.
func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
}

// Submit validates the form and writes a new review on behalf of the
// current session.
//
// The guard rejects locally — no store call — when there is no session,
// the rating is out of range, or the text is blank. On success the form
// resets to defaults and the error flag clears; the new row reaches the
// list through the change feed, not a local append, so the list's content
// stays single-sourced from the store. On store failure the form is
// preserved for retry and the store's message is surfaced.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	sess := c.sess
	stars := c.stars
	content := strings.TrimSpace(c.content)
	c.mu.Unlock()

	if sess == nil {
		return c.fail(apperror.Unauthorized("you must be signed in to leave a review"))
	}
	if stars < 1 || stars > 5 || content == "" {
		return c.fail(apperror.ValidationFailed("review", "please select a rating and write your message"))
	}

	review := &model.Review{
		UserID:    sess.UserID,
		Name:      sess.DisplayName(),
		AvatarURL: sess.AvatarURL,
		Stars:     stars,
		Content:   content,
	}

	if err := c.store.Insert(ctx, review); err != nil {
		c.mu.Lock()
		c.errMsg = err.Error()
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.stars = model.DefaultStars
	c.content = ""
	c.errMsg = ""
	c.mu.Unlock()

	c.logger.Info("review submitted",
		slog.String("reviewID", review.ID),
		slog.String("userID", review.UserID),
		slog.Int("stars", review.Stars),
	)

	// Best-effort side notification. The review is already durable; this
	// runs detached and its failure is only ever logged.
	if c.notifier != nil {
		c.notifier.SendAsync(notify.Payload{
			Name:    review.Name,
			Content: review.Content,
			Stars:   review.Stars,
		})
	}

	return nil
}

// fail records a locally raised error for display and returns it.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.errMsg = err.Error()
	c.mu.Unlock()
	return err
}

// Logout ends the session at the identity provider. The provider's change
// notification clears local session state and triggers the reload, per the
// same path a provider-initiated logout takes.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.tracker.SignOut(ctx); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.sess = nil
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the renderable state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Reviews:   c.list.Items(),
		Loading:   c.loading,
		Err:       c.errMsg,
		SignedIn:  c.sess != nil,
		Name:      c.sess.DisplayName(),
		AvatarURL: c.avatarURL(),
		Stars:     c.stars,
		Content:   c.content,
	}
}

func (c *Controller) avatarURL() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.AvatarURL
}

// Close releases the session listener and the feed subscription and waits
// for the feed consumer to drain. Safe to call more than once.
func (c *Controller) Close() {
	if c.cancelSession != nil {
		c.cancelSession()
		c.cancelSession = nil
	}
	if c.cancelFeed != nil {
		c.cancelFeed()
		c.cancelFeed = nil
	}
	if c.feedDone != nil {
		<-c.feedDone
		c.feedDone = nil
	}
}
