package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
		check   func(Contact) string
	}{
		{
			name:  "sets name",
			field: "name",
			value: "Ada Lovelace",
			check: func(c Contact) string { return c.Name },
		},
		{
			name:  "field names are case insensitive",
			field: "Email",
			value: "ada@example.com",
			check: func(c Contact) string { return c.Email },
		},
		{
			name:  "accepts any string",
			field: "status",
			value: "  ",
			check: func(c Contact) string { return c.Status },
		},
		{
			name:    "rejects id",
			field:   "id",
			value:   "123",
			wantErr: true,
		},
		{
			name:    "rejects photo reference",
			field:   "photoUrl",
			value:   "http://example.com/a.png",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Contact{ID: "fixed"}
			err := c.SetField(tt.field, tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownField) {
					t.Fatalf("Expected ErrUnknownField, got %v", err)
				}
				if c.ID != "fixed" {
					t.Errorf("Expected id to stay fixed, got %s", c.ID)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := tt.check(c); got != tt.value {
				t.Errorf("Expected %q, got %q", tt.value, got)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	c := Contact{Name: "Ada", Email: "ada@example.com", Phone: " "}
	want := []string{"title", "phone", "address", "status"}
	if got := c.Missing(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	full := Contact{Name: "a", Email: "b", Title: "c", Phone: "d", Address: "e", Status: "f"}
	if got := full.Missing(); len(got) != 0 {
		t.Errorf("Expected no missing fields, got %v", got)
	}
}

func TestPageValidate(t *testing.T) {
	tests := []struct {
		name    string
		page    Page
		wantErr bool
	}{
		{
			name:    "empty page",
			page:    Page{},
			wantErr: false,
		},
		{
			name: "consistent page",
			page: Page{
				TotalElements:    12,
				TotalPages:       3,
				Content:          []Contact{{ID: "1"}, {ID: "2"}},
				NumberOfElements: 2,
			},
			wantErr: false,
		},
		{
			name: "count does not match content",
			page: Page{
				TotalElements:    12,
				Content:          []Contact{{ID: "1"}},
				NumberOfElements: 2,
			},
			wantErr: true,
		},
		{
			name: "more elements than total",
			page: Page{
				TotalElements:    1,
				Content:          []Contact{{ID: "1"}, {ID: "2"}},
				NumberOfElements: 2,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBustCache(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		token    int64
		expected string
	}{
		{
			name:     "adds token",
			url:      "http://localhost:8080/contacts/image/abc.png",
			token:    42,
			expected: "http://localhost:8080/contacts/image/abc.png?updated_at=42",
		},
		{
			name:     "replaces previous token",
			url:      "http://localhost:8080/contacts/image/abc.png?updated_at=41",
			token:    42,
			expected: "http://localhost:8080/contacts/image/abc.png?updated_at=42",
		},
		{
			name:     "keeps other parameters",
			url:      "http://cdn.example.com/p.png?size=large",
			token:    7,
			expected: "http://cdn.example.com/p.png?size=large&updated_at=7",
		},
		{
			name:     "empty reference stays empty",
			url:      "",
			token:    7,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BustCache(tt.url, tt.token); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestStripCacheBust(t *testing.T) {
	busted := BustCache("http://localhost:8080/contacts/image/abc.png", 99)
	if got := StripCacheBust(busted); got != "http://localhost:8080/contacts/image/abc.png" {
		t.Errorf("Expected stable url, got %s", got)
	}
}
