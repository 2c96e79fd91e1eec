package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a field name does not name an editable contact field
var ErrUnknownField = errors.New("unknown contact field")

// Contact represents a single address book entry
type Contact struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty" parquet:"id,optional"`
	Name     string `json:"name" yaml:"name" parquet:"name"`
	Title    string `json:"title" yaml:"title" parquet:"title"`
	Email    string `json:"email" yaml:"email" parquet:"email"`
	Phone    string `json:"phone" yaml:"phone" parquet:"phone"`
	Address  string `json:"address" yaml:"address" parquet:"address"`
	Status   string `json:"status" yaml:"status" parquet:"status"`
	PhotoURL string `json:"photoUrl,omitempty" yaml:"photo_url,omitempty" parquet:"photo_url,optional"`
}

// EditableFields lists the contact fields a user may change, in form order
var EditableFields = []string{"name", "email", "title", "phone", "address", "status"}

// Persisted reports whether the server has assigned an identifier
func (c Contact) Persisted() bool {
	return c.ID != ""
}

// Field returns the value of an editable field by its wire name
func (c Contact) Field(name string) (string, error) {
	switch strings.ToLower(name) {
	case "name":
		return c.Name, nil
	case "title":
		return c.Title, nil
	case "email":
		return c.Email, nil
	case "phone":
		return c.Phone, nil
	case "address":
		return c.Address, nil
	case "status":
		return c.Status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// SetField sets an editable field by its wire name. The identifier and
// photo reference are owned by the server and cannot be set this way.
func (c *Contact) SetField(name, value string) error {
	switch strings.ToLower(name) {
	case "name":
		c.Name = value
	case "title":
		c.Title = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	case "address":
		c.Address = value
	case "status":
		c.Status = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Missing returns the editable fields that are empty
func (c Contact) Missing() []string {
	var missing []string
	for _, name := range EditableFields {
		value, _ := c.Field(name)
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Page is one slice of the full contact list plus pagination metadata
type Page struct {
	TotalElements    int       `json:"totalElements" yaml:"total_elements"`
	TotalPages       int       `json:"totalPages" yaml:"total_pages"`
	Content          []Contact `json:"content" yaml:"content"`
	NumberOfElements int       `json:"numberOfElements" yaml:"number_of_elements"`
}

// Validate checks the page's internal consistency
func (p Page) Validate() error {
	if p.NumberOfElements != len(p.Content) {
		return fmt.Errorf("page reports %d elements but carries %d", p.NumberOfElements, len(p.Content))
	}
	if p.NumberOfElements > p.TotalElements {
		return fmt.Errorf("page carries %d elements but total is %d", p.NumberOfElements, p.TotalElements)
	}
	return nil
}

// Contains reports whether a contact with the given id is on the page
func (p Page) Contains(id string) bool {
	for _, c := range p.Content {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Photo is a file selected for upload
type Photo struct {
	Name string
	Data []byte
}

// Draft is the unsaved state of the new-contact form
type Draft struct {
	Contact Contact
	Photo   *Photo
}

// HasPhoto reports whether a file was selected
func (d Draft) HasPhoto() bool {
	return d.Photo != nil && len(d.Photo.Data) > 0
}
