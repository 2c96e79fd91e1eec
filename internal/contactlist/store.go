package contactlist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/lehigh-university-libraries/contacts/internal/notify"
)

// Lister fetches one page of contacts
type Lister interface {
	List(ctx context.Context, page, size int) (*models.Page, error)
}

// Store holds the page of contacts currently shown in the list view
type Store struct {
	client   Lister
	sink     notify.Sink
	pageSize int

	mu      sync.Mutex
	page    models.Page
	current int
	issued  uint64
	applied uint64
}

// New creates a Store. pageSize <= 0 falls back to contacts.DefaultPageSize.
func New(client Lister, sink notify.Sink, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = contacts.DefaultPageSize
	}
	if sink == nil {
		sink = notify.Discard
	}
	return &Store{
		client:   client,
		sink:     sink,
		pageSize: pageSize,
	}
}

// Refresh re-fetches the page most recently displayed
func (s *Store) Refresh(ctx context.Context) error {
	return s.Fetch(ctx, s.CurrentPage(), s.pageSize)
}

// Show fetches the given page at the default page size
func (s *Store) Show(ctx context.Context, page int) error {
	return s.Fetch(ctx, page, s.pageSize)
}

// Fetch loads a page and replaces the held one wholesale. On failure the
// previous page stays in place. When several fetches overlap, a response is
// dropped if a later-issued fetch has already been applied.
func (s *Store) Fetch(ctx context.Context, page, size int) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	result, err := s.client.List(ctx, page, size)
	if err != nil {
		slog.Debug("Contact list fetch failed", "page", page, "size", size, "err", err)
		if !contacts.IsCanceled(err) {
			s.sink.Failure(contacts.Message(err))
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		slog.Debug("Dropping superseded contact list", "page", page, "seq", seq, "applied", s.applied)
		return nil
	}
	s.applied = seq
	s.page = *result
	s.current = page
	return nil
}

// Page returns a copy of the held page
func (s *Store) Page() models.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page
	p.Content = append([]models.Contact(nil), s.page.Content...)
	return p
}

// CurrentPage is the index of the page most recently displayed
func (s *Store) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// PageSize is the default page size used by Refresh and Show
func (s *Store) PageSize() int {
	return s.pageSize
}
