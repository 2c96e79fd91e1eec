package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/contacts/internal/models"
)

// ContactStore keeps contacts in memory for the development backend
type ContactStore struct {
	contacts map[string]models.Contact
	mu       sync.RWMutex
}

func New() *ContactStore {
	return &ContactStore{
		contacts: make(map[string]models.Contact),
	}
}

func (s *ContactStore) Get(id string) (models.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contact, exists := s.contacts[id]
	return contact, exists
}

func (s *ContactStore) Set(contact models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.ID] = contact
}

// Update applies fn to the stored contact under the write lock
func (s *ContactStore) Update(id string, fn func(*models.Contact)) (models.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, exists := s.contacts[id]
	if !exists {
		return models.Contact{}, false
	}
	fn(&contact)
	s.contacts[id] = contact
	return contact, true
}

func (s *ContactStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.contacts[id]
	delete(s.contacts, id)
	return exists
}

func (s *ContactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts)
}

// Page returns one page of contacts ordered by name, then id
func (s *ContactStore) Page(page, size int) models.Page {
	s.mu.RLock()
	all := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		all = append(all, c)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := strings.ToLower(all[i].Name), strings.ToLower(all[j].Name)
		if a != b {
			return a < b
		}
		return all[i].ID < all[j].ID
	})

	result := models.Page{
		TotalElements: len(all),
		Content:       []models.Contact{},
	}
	if size > 0 {
		result.TotalPages = (len(all) + size - 1) / size
	}

	start := page * size
	if size <= 0 || page < 0 || start >= len(all) {
		return result
	}
	end := min(start+size, len(all))
	result.Content = append(result.Content, all[start:end]...)
	result.NumberOfElements = len(result.Content)
	return result
}
