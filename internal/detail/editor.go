package detail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/lehigh-university-libraries/contacts/internal/notify"
)

var (
	// ErrNotPersisted is returned by operations that need a saved contact
	ErrNotPersisted = errors.New("contact has no identifier")
	// ErrClosed is returned once the view has been dismissed
	ErrClosed = errors.New("detail view closed")
)

// Client is the slice of the contacts API the editor uses
type Client interface {
	Get(ctx context.Context, id string) (*models.Contact, error)
	Upsert(ctx context.Context, contact models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	UploadPhoto(ctx context.Context, id string, data []byte, filename string) error
}

// Refresher re-fetches the list view after a mutation
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Navigator moves the user back to the list view
type Navigator interface {
	ShowList()
}

// Option configures an Editor
type Option func(*Editor)

// WithLists sets the list view refreshed after every mutation
func WithLists(r Refresher) Option {
	return func(e *Editor) {
		e.lists = r
	}
}

// WithNavigator sets where the editor sends the user after save or delete
func WithNavigator(n Navigator) Option {
	return func(e *Editor) {
		e.nav = n
	}
}

// WithClock replaces time.Now for cache-busting tokens
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// Editor holds the editable state of a single contact
type Editor struct {
	client Client
	sink   notify.Sink
	lists  Refresher
	nav    Navigator
	now    func() time.Time

	life    context.Context
	dismiss context.CancelFunc

	mu        sync.Mutex
	contact   models.Contact
	loadSeq   uint64
	lastToken int64
	closed    bool
}

// New creates an Editor bound to a fresh view lifetime
func New(client Client, sink notify.Sink, opts ...Option) *Editor {
	if sink == nil {
		sink = notify.Discard
	}
	e := &Editor{
		client: client,
		sink:   sink,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.life, e.dismiss = context.WithCancel(context.Background())
	return e
}

// Contact returns a copy of the local state
func (e *Editor) Contact() models.Contact {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contact
}

// Close dismisses the view. In-flight calls are cancelled and any
// completion arriving afterwards leaves the editor untouched.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.dismiss()
}

// bind derives a call context that ends with either ctx or the view
func (e *Editor) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (e *Editor) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// fail reports err unless it was caused by the view going away
func (e *Editor) fail(err error) error {
	if e.isClosed() || contacts.IsCanceled(err) {
		return err
	}
	e.sink.Failure(contacts.Message(err))
	return err
}

// succeed reports a completed mutation unless the view has gone away
func (e *Editor) succeed(message string) {
	if e.isClosed() {
		slog.Debug("Mutation finished after the view was closed", "outcome", message)
		return
	}
	e.sink.Success(message)
}

// Load fetches a contact and replaces the local state. Only the most
// recently started load may apply its result.
func (e *Editor) Load(ctx context.Context, id string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.loadSeq++
	seq := e.loadSeq
	e.mu.Unlock()

	ctx, cancel := e.bind(ctx)
	defer cancel()

	contact, err := e.client.Get(ctx, id)

	e.mu.Lock()
	stale := e.closed || seq != e.loadSeq
	if err == nil && !stale {
		e.contact = *contact
	}
	e.mu.Unlock()

	if stale {
		slog.Debug("Discarding stale contact load", "id", id, "seq", seq)
		return err
	}
	if err != nil {
		return e.fail(err)
	}
	return nil
}

// UpdateField changes one field locally
func (e *Editor) UpdateField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contact.SetField(name, value)
}

// Submit saves the local state, refreshes the list, reloads the contact to
// pick up server-side values and returns the user to the list. A failed save
// keeps the local edits and stays on the detail view.
func (e *Editor) Submit(ctx context.Context) error {
	if e.isClosed() {
		return ErrClosed
	}
	contact := e.Contact()
	if !contact.Persisted() {
		return e.fail(ErrNotPersisted)
	}

	bound, cancel := e.bind(ctx)
	saved, err := e.client.Upsert(bound, contact)
	cancel()
	if err != nil {
		return e.fail(err)
	}
	slog.Info("Contact updated", "id", saved.ID)

	e.refreshList(ctx)
	e.succeed("Contact Updated")

	if err := e.Load(ctx, saved.ID); err != nil {
		slog.Warn("Reload after save failed", "id", saved.ID, "err", err)
	}
	e.navigate()
	return nil
}

// ChangePhoto uploads a new photo and points the local photo reference at
// a fresh cache-busting URL so the next render refetches the image
func (e *Editor) ChangePhoto(ctx context.Context, data []byte, filename string) error {
	if e.isClosed() {
		return ErrClosed
	}
	current := e.Contact()
	if !current.Persisted() {
		return e.fail(ErrNotPersisted)
	}
	id := current.ID

	bound, cancel := e.bind(ctx)
	defer cancel()
	if err := e.client.UploadPhoto(bound, id, data, filename); err != nil {
		return e.fail(err)
	}

	// The stored name may change with the file extension, and a contact
	// without a photo has no reference yet. Only the photo field is taken
	// from the server so unsaved edits survive.
	photoURL := e.Contact().PhotoURL
	if fresh, err := e.client.Get(bound, id); err == nil && fresh.PhotoURL != "" {
		photoURL = fresh.PhotoURL
	} else if err != nil {
		slog.Warn("Unable to fetch new photo reference", "id", id, "err", err)
	}

	e.mu.Lock()
	if !e.closed && e.contact.ID == id {
		token := e.now().UnixMilli()
		if token <= e.lastToken {
			token = e.lastToken + 1
		}
		e.lastToken = token
		e.contact.PhotoURL = models.BustCache(photoURL, token)
	}
	e.mu.Unlock()

	slog.Info("Photo updated", "id", id)
	e.refreshList(ctx)
	e.succeed("Photo Updated")
	return nil
}

// Delete removes the contact, refreshes the list and returns the user to it
func (e *Editor) Delete(ctx context.Context) error {
	if e.isClosed() {
		return ErrClosed
	}
	current := e.Contact()
	if !current.Persisted() {
		return e.fail(ErrNotPersisted)
	}
	id := current.ID

	bound, cancel := e.bind(ctx)
	err := e.client.Delete(bound, id)
	cancel()
	if err != nil {
		return e.fail(err)
	}
	slog.Info("Contact deleted", "id", id)

	e.refreshList(ctx)
	e.succeed("Contact Deleted")
	e.navigate()
	return nil
}

// refreshList runs on the caller's context: the list outlives this view
func (e *Editor) refreshList(ctx context.Context) {
	if e.lists == nil {
		return
	}
	if err := e.lists.Refresh(ctx); err != nil {
		slog.Warn("List refresh after mutation failed", "err", err)
	}
}

func (e *Editor) navigate() {
	if e.nav == nil || e.isClosed() {
		return
	}
	e.nav.ShowList()
}
