package detail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/contacts/internal/contactlist"
	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/handlers"
	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/lehigh-university-libraries/contacts/internal/notify"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{2}, 16)...)

type navigator struct {
	mu    sync.Mutex
	count int
}

func (n *navigator) ShowList() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *navigator) visits() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

type fixture struct {
	client *contacts.Client
	lists  *contactlist.Store
	sink   *notify.Recorder
	nav    *navigator
	editor *Editor
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	srv := httptest.NewServer(handlers.NewRouter(handlers.New(handlers.WithPhotoDir(t.TempDir()))))
	t.Cleanup(srv.Close)

	f := &fixture{
		client: contacts.NewClient(srv.URL+"/contacts", contacts.WithHTTPClient(srv.Client())),
		sink:   &notify.Recorder{},
		nav:    &navigator{},
	}
	f.lists = contactlist.New(f.client, f.sink, 5)
	opts = append([]Option{WithLists(f.lists), WithNavigator(f.nav)}, opts...)
	f.editor = New(f.client, f.sink, opts...)
	return f
}

func (f *fixture) create(t *testing.T, name string) models.Contact {
	t.Helper()
	saved, err := f.client.Upsert(context.Background(), models.Contact{
		Name: name, Title: "Engineer", Email: name + "@example.com",
		Phone: "555-0100", Address: "1 Main St", Status: "Active",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	return *saved
}

func TestSubmitRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "ada")

	if err := f.editor.Load(ctx, created.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := f.editor.UpdateField("title", "Countess"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if err := f.editor.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := f.editor.Load(ctx, created.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := f.editor.Contact().Title; got != "Countess" {
		t.Errorf("Expected updated title, got %s", got)
	}
	if f.nav.visits() != 1 {
		t.Errorf("Expected one navigation, got %d", f.nav.visits())
	}
	if !f.lists.Page().Contains(created.ID) {
		t.Error("Expected list to be refreshed with the contact")
	}
	if got := f.sink.Successes(); len(got) != 1 || got[0] != "Contact Updated" {
		t.Errorf("Unexpected notifications %v", f.sink.Entries())
	}
}

func TestSubmitFailureKeepsEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "ada")

	if err := f.editor.Load(ctx, created.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// The backend rejects contacts without a name
	if err := f.editor.UpdateField("name", ""); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if err := f.editor.UpdateField("phone", "555-0199"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}

	err := f.editor.Submit(ctx)
	if !errors.Is(err, contacts.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if got := f.editor.Contact().Phone; got != "555-0199" {
		t.Errorf("Expected local edit to survive, got %s", got)
	}
	if f.nav.visits() != 0 {
		t.Error("Expected no navigation after a failed save")
	}
	if len(f.sink.Failures()) != 1 {
		t.Errorf("Expected one failure, got %v", f.sink.Entries())
	}
}

func TestLoadNotFoundKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "grace")

	if err := f.editor.Load(ctx, created.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	err := f.editor.Load(ctx, "nonexistent")
	if !errors.Is(err, contacts.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if f.editor.Contact() != created {
		t.Errorf("Expected previous state %+v, got %+v", created, f.editor.Contact())
	}
	if f.nav.visits() != 0 {
		t.Error("Expected no navigation")
	}
	if got := f.sink.Failures(); len(got) != 1 || got[0] != "Contact not found" {
		t.Errorf("Unexpected notifications %v", f.sink.Entries())
	}
}

func TestChangePhotoBustsCacheEachTime(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	f := newFixture(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()
	created := f.create(t, "linus")

	if err := f.editor.Load(ctx, created.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := f.editor.UpdateField("status", "Away"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}

	if err := f.editor.ChangePhoto(ctx, pngBytes, "linus.png"); err != nil {
		t.Fatalf("ChangePhoto failed: %v", err)
	}
	first := f.editor.Contact().PhotoURL

	if err := f.editor.ChangePhoto(ctx, pngBytes, "linus.png"); err != nil {
		t.Fatalf("ChangePhoto failed: %v", err)
	}
	second := f.editor.Contact().PhotoURL

	if first == "" || second == "" {
		t.Fatalf("Expected photo references, got %q and %q", first, second)
	}
	if first == second {
		t.Errorf("Expected different references for identical uploads, both %s", first)
	}
	if !strings.Contains(second, models.CacheBustParam+"=") || strings.Count(second, "?") != 1 {
		t.Errorf("Expected a single cache-busting parameter, got %s", second)
	}
	if models.StripCacheBust(first) != models.StripCacheBust(second) {
		t.Errorf("Expected the same underlying photo, got %s and %s", first, second)
	}
	if got := f.editor.Contact().Status; got != "Away" {
		t.Errorf("Expected unsaved edit to survive the photo change, got %s", got)
	}
}

func TestChangePhotoFailureKeepsReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "linus")

	if err := f.editor.Load(ctx, created.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := f.editor.ChangePhoto(ctx, pngBytes, "linus.png"); err != nil {
		t.Fatalf("ChangePhoto failed: %v", err)
	}
	before := f.editor.Contact().PhotoURL

	err := f.editor.ChangePhoto(ctx, []byte("not an image"), "notes.txt")
	if !errors.Is(err, contacts.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if got := f.editor.Contact().PhotoURL; got != before {
		t.Errorf("Expected photo reference %s to stay, got %s", before, got)
	}
}

func TestOperationsRequireIdentifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.editor.UpdateField("name", "nobody"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if err := f.editor.Submit(ctx); !errors.Is(err, ErrNotPersisted) {
		t.Errorf("Expected ErrNotPersisted from Submit, got %v", err)
	}
	page, err := f.client.List(ctx, 0, 5)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.TotalElements != 0 {
		t.Errorf("Expected Submit without a loaded contact to create nothing, got %d", page.TotalElements)
	}
	if err := f.editor.ChangePhoto(ctx, pngBytes, "x.png"); !errors.Is(err, ErrNotPersisted) {
		t.Errorf("Expected ErrNotPersisted from ChangePhoto, got %v", err)
	}
	if err := f.editor.Delete(ctx); !errors.Is(err, ErrNotPersisted) {
		t.Errorf("Expected ErrNotPersisted from Delete, got %v", err)
	}
}

func TestDeleteRefreshesAndNavigates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.create(t, "keep")
	gone := f.create(t, "gone")

	if err := f.lists.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !f.lists.Page().Contains(gone.ID) {
		t.Fatal("Expected contact on the list before delete")
	}

	if err := f.editor.Load(ctx, gone.ID); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := f.editor.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if f.lists.Page().Contains(gone.ID) {
		t.Error("Expected deleted contact to be gone from the list")
	}
	if !f.lists.Page().Contains(keep.ID) {
		t.Error("Expected other contact to remain")
	}
	if f.nav.visits() != 1 {
		t.Errorf("Expected one navigation, got %d", f.nav.visits())
	}

	page, err := f.client.List(ctx, 0, 5)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Contains(gone.ID) {
		t.Error("Expected server list to exclude the deleted contact")
	}
}

// gatedClient holds Get calls until the test releases them
type gatedClient struct {
	Client
	gates map[string]chan struct{}
	ready chan string
}

func (g *gatedClient) Get(ctx context.Context, id string) (*models.Contact, error) {
	g.ready <- id
	select {
	case <-g.gates[id]:
	case <-ctx.Done():
		return nil, fmt.Errorf("get: %w", ctx.Err())
	}
	return &models.Contact{ID: id, Name: "name-" + id}, nil
}

func TestStaleLoadDoesNotOverwrite(t *testing.T) {
	client := &gatedClient{
		gates: map[string]chan struct{}{"slow": make(chan struct{}), "fast": make(chan struct{})},
		ready: make(chan string),
	}
	sink := &notify.Recorder{}
	editor := New(client, sink)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = editor.Load(ctx, "slow")
	}()
	<-client.ready
	go func() {
		defer wg.Done()
		_ = editor.Load(ctx, "fast")
	}()
	<-client.ready

	close(client.gates["fast"])
	close(client.gates["slow"])
	wg.Wait()

	if got := editor.Contact().ID; got != "fast" {
		t.Errorf("Expected the newer load to win, got %s", got)
	}
	if len(sink.Entries()) != 0 {
		t.Errorf("Expected no notifications, got %v", sink.Entries())
	}
}

func TestCloseDiscardsInFlightLoad(t *testing.T) {
	client := &gatedClient{
		gates: map[string]chan struct{}{"a": make(chan struct{})},
		ready: make(chan string),
	}
	sink := &notify.Recorder{}
	editor := New(client, sink)

	done := make(chan error, 1)
	go func() {
		done <- editor.Load(context.Background(), "a")
	}()
	<-client.ready
	editor.Close()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancelled load, got %v", err)
	}
	if editor.Contact().ID != "" {
		t.Errorf("Expected no state change after close, got %+v", editor.Contact())
	}
	if len(sink.Entries()) != 0 {
		t.Errorf("Expected no notifications after close, got %v", sink.Entries())
	}
	if err := editor.Load(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

// lateClient completes each mutation only when released, ignoring cancellation
type lateClient struct {
	entered chan struct{}
	release chan struct{}
}

func (l *lateClient) wait() {
	l.entered <- struct{}{}
	<-l.release
}

func (l *lateClient) Get(_ context.Context, id string) (*models.Contact, error) {
	return &models.Contact{ID: id, Name: "name-" + id, PhotoURL: "http://x/contacts/image/" + id + ".png"}, nil
}

func (l *lateClient) Upsert(_ context.Context, c models.Contact) (*models.Contact, error) {
	l.wait()
	return &c, nil
}

func (l *lateClient) Delete(context.Context, string) error {
	l.wait()
	return nil
}

func (l *lateClient) UploadPhoto(context.Context, string, []byte, string) error {
	l.wait()
	return nil
}

func TestMutationFinishingAfterCloseIsSilent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(context.Context, *Editor) error
	}{
		{name: "submit", mutate: func(ctx context.Context, e *Editor) error { return e.Submit(ctx) }},
		{name: "change photo", mutate: func(ctx context.Context, e *Editor) error { return e.ChangePhoto(ctx, pngBytes, "a.png") }},
		{name: "delete", mutate: func(ctx context.Context, e *Editor) error { return e.Delete(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &lateClient{entered: make(chan struct{}), release: make(chan struct{})}
			sink := &notify.Recorder{}
			nav := &navigator{}
			editor := New(client, sink, WithNavigator(nav))
			ctx := context.Background()
			if err := editor.Load(ctx, "a"); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			before := editor.Contact()

			done := make(chan error, 1)
			go func() { done <- tt.mutate(ctx, editor) }()
			<-client.entered
			editor.Close()
			close(client.release)

			if err := <-done; err != nil {
				t.Errorf("Expected the completed mutation to return nil, got %v", err)
			}
			if len(sink.Entries()) != 0 {
				t.Errorf("Expected no notifications after close, got %v", sink.Entries())
			}
			if nav.visits() != 0 {
				t.Error("Expected no navigation after close")
			}
			if editor.Contact() != before {
				t.Errorf("Expected state %+v to stay, got %+v", before, editor.Contact())
			}
		})
	}
}
