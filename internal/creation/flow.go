package creation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/lehigh-university-libraries/contacts/internal/notify"
)

// State is a step of the two-phase creation commit
type State int

const (
	Idle State = iota
	Submitting
	AttachingPhoto
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case AttachingPhoto:
		return "attaching-photo"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrBusy is returned when Submit is called while a submit is running
	ErrBusy = errors.New("creation already in progress")
	// ErrClosed is returned when the creation surface is not open
	ErrClosed = errors.New("creation form is closed")
	// ErrIncomplete is returned when required fields are empty
	ErrIncomplete = errors.New("required fields are missing")
)

// Client is the slice of the contacts API the flow uses
type Client interface {
	Upsert(ctx context.Context, contact models.Contact) (*models.Contact, error)
	UploadPhoto(ctx context.Context, id string, data []byte, filename string) error
	Delete(ctx context.Context, id string) error
}

// Refresher re-fetches the list view after a contact is created
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Option configures a Flow
type Option func(*Flow)

// WithLists sets the list view refreshed after a successful create
func WithLists(r Refresher) Option {
	return func(f *Flow) {
		f.lists = r
	}
}

// RequirePhoto makes a selected photo a required field
func RequirePhoto(required bool) Option {
	return func(f *Flow) {
		f.requirePhoto = required
	}
}

// RollbackOrphans deletes the record created in phase one when the photo
// upload fails. Without it the record is kept and the next Submit reuses it.
func RollbackOrphans(rollback bool) Option {
	return func(f *Flow) {
		f.rollback = rollback
	}
}

// Flow drives the new-contact form: a draft, an optional photo and the
// create-then-attach commit
type Flow struct {
	client       Client
	sink         notify.Sink
	lists        Refresher
	requirePhoto bool
	rollback     bool

	mu        sync.Mutex
	draft     models.Draft
	state     State
	open      bool
	pendingID string
	err       error
	life      context.Context
	dismiss   context.CancelFunc
}

// New creates a closed creation flow
func New(client Client, sink notify.Sink, opts ...Option) *Flow {
	if sink == nil {
		sink = notify.Discard
	}
	f := &Flow{
		client: client,
		sink:   sink,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open shows the creation surface with an empty draft
func (f *Flow) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open {
		return
	}
	f.open = true
	f.state = Idle
	f.err = nil
	f.life, f.dismiss = context.WithCancel(context.Background())
}

// Close cancels the form: the draft is discarded and in-flight calls are
// abandoned
func (f *Flow) Close() {
	f.mu.Lock()
	if f.pendingID != "" {
		slog.Warn("Creation cancelled with a saved contact lacking its photo", "id", f.pendingID)
	}
	f.closeLocked()
	f.mu.Unlock()
}

func (f *Flow) closeLocked() {
	f.open = false
	f.draft = models.Draft{}
	f.pendingID = ""
	if f.dismiss != nil {
		f.dismiss()
	}
}

// IsOpen reports whether the creation surface is shown
func (f *Flow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// State returns the current commit step
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error of the last failed submit
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// PendingID is the id of a record saved by a submit whose photo upload failed
func (f *Flow) PendingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingID
}

// Draft returns a copy of the form state
func (f *Flow) Draft() models.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.draft
	if d.Photo != nil {
		p := *d.Photo
		d.Photo = &p
	}
	return d
}

// SetField changes one field of the draft
func (f *Flow) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	return f.draft.Contact.SetField(name, value)
}

// SelectPhoto sets the file to attach once the contact exists
func (f *Flow) SelectPhoto(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	f.draft.Photo = &models.Photo{Name: name, Data: data}
	return nil
}

// Submit commits the draft in two phases: save the record, then attach the
// photo to the new id. Success clears the draft, closes the form and
// refreshes the list. Failure in either phase keeps the draft and the form.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.state == Submitting || f.state == AttachingPhoto {
		f.mu.Unlock()
		return ErrBusy
	}
	draft := f.draft
	pendingID := f.pendingID
	life := f.life
	f.state = Submitting
	f.err = nil
	f.mu.Unlock()

	if err := f.validate(draft); err != nil {
		return f.failed(life, err)
	}

	bound, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(life, cancel)
	defer stop()

	// Phase 1: a retry after a failed photo upload updates the record it
	// already created instead of creating another one
	contact := draft.Contact
	contact.ID = pendingID
	contact.PhotoURL = ""
	saved, err := f.client.Upsert(bound, contact)
	if err != nil {
		return f.failed(life, err)
	}
	slog.Info("Contact created", "id", saved.ID, "retry", pendingID != "")

	// Phase 2
	if draft.HasPhoto() {
		if !f.advance(life, AttachingPhoto, saved.ID) {
			f.refreshList(ctx)
			return ErrClosed
		}
		if err := f.client.UploadPhoto(bound, saved.ID, draft.Photo.Data, draft.Photo.Name); err != nil {
			f.handleOrphan(bound, life, saved.ID)
			return f.failed(life, err)
		}
	}

	f.mu.Lock()
	current := f.life == life && f.open
	if current {
		f.state = Done
		f.closeLocked()
	}
	f.mu.Unlock()

	f.refreshList(ctx)
	if !current {
		slog.Debug("Creation finished after the form was closed", "id", saved.ID)
		return nil
	}
	f.sink.Success("Contact Saved")
	return nil
}

// refreshList runs on the caller's context: the list outlives the form
func (f *Flow) refreshList(ctx context.Context) {
	if f.lists == nil {
		return
	}
	if err := f.lists.Refresh(ctx); err != nil {
		slog.Warn("List refresh after create failed", "err", err)
	}
}

func (f *Flow) validate(draft models.Draft) error {
	missing := draft.Contact.Missing()
	if f.requirePhoto && !draft.HasPhoto() {
		missing = append(missing, "photo")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// advance moves to the next state and records the phase-one id, unless the
// form was closed in the meantime
func (f *Flow) advance(life context.Context, next State, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.life != life || !f.open {
		return false
	}
	f.state = next
	f.pendingID = id
	return true
}

// handleOrphan applies the rollback policy to a record whose photo failed
func (f *Flow) handleOrphan(ctx, life context.Context, id string) {
	if !f.rollback {
		slog.Warn("Contact saved without its photo; next submit will retry the upload", "id", id)
		return
	}
	if err := f.client.Delete(ctx, id); err != nil {
		slog.Error("Failed to roll back contact after photo upload failure", "id", id, "err", err)
		return
	}
	slog.Info("Rolled back contact after photo upload failure", "id", id)
	f.mu.Lock()
	if f.life == life {
		f.pendingID = ""
	}
	f.mu.Unlock()
}

// failed records err as the outcome of the submit that started under life
func (f *Flow) failed(life context.Context, err error) error {
	f.mu.Lock()
	current := f.life == life && f.open
	if current {
		f.state = Failed
		f.err = err
	}
	f.mu.Unlock()

	if current && !contacts.IsCanceled(err) {
		f.sink.Failure(contacts.Message(err))
	}
	return err
}
