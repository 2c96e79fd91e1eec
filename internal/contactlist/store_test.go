package contactlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/lehigh-university-libraries/contacts/internal/notify"
)

type call struct {
	page, size int
	release    chan struct{}
	result     *models.Page
	err        error
}

// fakeLister answers List calls in the order the test releases them
type fakeLister struct {
	mu    sync.Mutex
	calls []*call
	ready chan *call
	block bool
	pages map[int]*models.Page
	err   error
}

func (f *fakeLister) List(ctx context.Context, page, size int) (*models.Page, error) {
	c := &call{page: page, size: size, release: make(chan struct{})}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	c.result, c.err = f.pages[page], f.err
	f.mu.Unlock()

	if f.block {
		f.ready <- c
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func pageOf(names ...string) *models.Page {
	p := &models.Page{TotalElements: 12, TotalPages: 3}
	for _, n := range names {
		p.Content = append(p.Content, models.Contact{ID: n, Name: n})
	}
	p.NumberOfElements = len(p.Content)
	return p
}

func TestFetchReplacesPage(t *testing.T) {
	lister := &fakeLister{pages: map[int]*models.Page{
		0: pageOf("a", "b", "c", "d", "e"),
		2: pageOf("k", "l"),
	}}
	store := New(lister, nil, 5)
	ctx := context.Background()

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := store.Page().NumberOfElements; got != 5 {
		t.Errorf("Expected 5 contacts, got %d", got)
	}

	if err := store.Show(ctx, 2); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if store.CurrentPage() != 2 {
		t.Errorf("Expected current page 2, got %d", store.CurrentPage())
	}
	if got := store.Page().NumberOfElements; got != 2 {
		t.Errorf("Expected 2 contacts, got %d", got)
	}

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	last := lister.calls[len(lister.calls)-1]
	if last.page != 2 || last.size != 5 {
		t.Errorf("Expected refresh of page 2 size 5, got page %d size %d", last.page, last.size)
	}
}

func TestFetchFailureKeepsPreviousPage(t *testing.T) {
	lister := &fakeLister{pages: map[int]*models.Page{0: pageOf("a", "b")}}
	sink := &notify.Recorder{}
	store := New(lister, sink, 5)
	ctx := context.Background()

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	lister.err = fmt.Errorf("list: %w", contacts.ErrServer)
	err := store.Show(ctx, 1)
	if !errors.Is(err, contacts.ErrServer) {
		t.Fatalf("Expected server error, got %v", err)
	}
	if store.CurrentPage() != 0 {
		t.Errorf("Expected current page to stay 0, got %d", store.CurrentPage())
	}
	if !store.Page().Contains("a") {
		t.Error("Expected previous page to stay in place")
	}
	if len(sink.Failures()) != 1 {
		t.Errorf("Expected one failure notification, got %v", sink.Entries())
	}
}

func TestSlowerEarlierFetchDoesNotOverwrite(t *testing.T) {
	lister := &fakeLister{
		block: true,
		ready: make(chan *call),
		pages: map[int]*models.Page{
			0: pageOf("old"),
			1: pageOf("new"),
		},
	}
	store := New(lister, nil, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = store.Show(ctx, 0)
	}()
	first := <-lister.ready

	go func() {
		defer wg.Done()
		_ = store.Show(ctx, 1)
	}()
	second := <-lister.ready

	// The later request resolves first, then the earlier one straggles in
	close(second.release)
	close(first.release)
	wg.Wait()

	if !store.Page().Contains("new") {
		t.Errorf("Expected the later request to win, got %+v", store.Page().Content)
	}
	if store.CurrentPage() != 1 {
		t.Errorf("Expected current page 1, got %d", store.CurrentPage())
	}
}

func TestInOrderFetchesBothApply(t *testing.T) {
	lister := &fakeLister{
		block: true,
		ready: make(chan *call),
		pages: map[int]*models.Page{
			0: pageOf("old"),
			1: pageOf("new"),
		},
	}
	store := New(lister, nil, 5)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_ = store.Show(ctx, 0)
		done <- struct{}{}
	}()
	first := <-lister.ready
	go func() {
		_ = store.Show(ctx, 1)
		done <- struct{}{}
	}()
	second := <-lister.ready

	close(first.release)
	<-done
	if !store.Page().Contains("old") {
		t.Errorf("Expected first response applied, got %+v", store.Page().Content)
	}
	close(second.release)
	<-done
	if !store.Page().Contains("new") {
		t.Errorf("Expected second response applied, got %+v", store.Page().Content)
	}
}

func TestPageReturnsCopy(t *testing.T) {
	lister := &fakeLister{pages: map[int]*models.Page{0: pageOf("a")}}
	store := New(lister, nil, 0)
	if store.PageSize() != contacts.DefaultPageSize {
		t.Errorf("Expected default page size %d, got %d", contacts.DefaultPageSize, store.PageSize())
	}
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	p := store.Page()
	p.Content[0].Name = "mutated"
	if store.Page().Content[0].Name != "a" {
		t.Error("Expected Page to return an independent copy")
	}
}
