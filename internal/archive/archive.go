package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Format is an archive file encoding
type Format string

const (
	JSONL   Format = "jsonl"
	YAML    Format = "yaml"
	Parquet Format = "parquet"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl", ".json":
		return JSONL, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".parquet":
		return Parquet, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .jsonl, .yaml, .parquet)", ext)
	}
}

// document is the YAML layout of an export
type document struct {
	Contacts []models.Contact `yaml:"contacts"`
}

// Write encodes contacts to w
func Write(w io.Writer, format Format, records []models.Contact) error {
	switch format {
	case JSONL:
		enc := json.NewEncoder(w)
		for _, c := range records {
			if err := enc.Encode(c); err != nil {
				return fmt.Errorf("failed to encode contact %s: %w", c.ID, err)
			}
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{Contacts: records}); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case Parquet:
		if err := parquet.Write(w, records); err != nil {
			return fmt.Errorf("failed to write parquet: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Read decodes contacts from r
func Read(r io.Reader, format Format) ([]models.Contact, error) {
	switch format {
	case JSONL:
		return readJSONL(r)
	case YAML:
		var doc document
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return doc.Contacts, nil
	case Parquet:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet: %w", err)
		}
		records, err := parquet.Read[models.Contact](bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet: %w", err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func readJSONL(r io.Reader) ([]models.Contact, error) {
	var records []models.Contact
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var c models.Contact
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading archive: %w", err)
	}
	return records, nil
}

// ReadFile decodes the archive at path, choosing the format by extension
func ReadFile(path string) ([]models.Contact, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	slog.Debug("Reading archive", "path", path, "format", format)
	return Read(f, format)
}

// WriteFile encodes contacts to path, choosing the format by extension
func WriteFile(path string, records []models.Contact) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := Write(f, format, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Lister pages through the contacts on the server
type Lister interface {
	List(ctx context.Context, page, size int) (*models.Page, error)
}

// Collect walks every page and returns all contacts in server order
func Collect(ctx context.Context, lister Lister, size int) ([]models.Contact, error) {
	var all []models.Contact
	for page := 0; ; page++ {
		p, err := lister.List(ctx, page, size)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		all = append(all, p.Content...)
		slog.Debug("Fetched page", "page", page, "contacts", p.NumberOfElements, "total", p.TotalElements)
		if page+1 >= p.TotalPages || p.NumberOfElements == 0 {
			return all, nil
		}
	}
}

// Saver looks up and saves contacts on the server
type Saver interface {
	Get(ctx context.Context, id string) (*models.Contact, error)
	Upsert(ctx context.Context, contact models.Contact) (*models.Contact, error)
}

// Summary counts the outcome of an import
type Summary struct {
	Created int
	Updated int
	Failed  int
}

// Import saves each record. Without keepIDs every record is created anew.
// With it a record updates the contact with its id, or is inserted under
// that id when the server has no such contact. A failed record does not
// stop the import; all failures are returned together.
func Import(ctx context.Context, saver Saver, records []models.Contact, keepIDs bool) (Summary, error) {
	var summary Summary
	var errs []error
	for i, c := range records {
		if err := ctx.Err(); err != nil {
			return summary, errors.Join(append(errs, err)...)
		}
		if !keepIDs {
			c.ID = ""
		}
		c.PhotoURL = ""
		if missing := c.Missing(); len(missing) > 0 {
			summary.Failed++
			errs = append(errs, fmt.Errorf("record %d: missing %s", i+1, strings.Join(missing, ", ")))
			continue
		}

		exists, err := existing(ctx, saver, c.ID)
		if err != nil {
			summary.Failed++
			errs = append(errs, fmt.Errorf("record %d (%s): %w", i+1, c.Name, err))
			continue
		}
		saved, err := saver.Upsert(ctx, c)
		if err != nil {
			summary.Failed++
			errs = append(errs, fmt.Errorf("record %d (%s): %w", i+1, c.Name, err))
			continue
		}
		if exists {
			summary.Updated++
		} else {
			summary.Created++
		}
		slog.Debug("Imported contact", "id", saved.ID, "name", saved.Name, "updated", exists)
	}
	return summary, errors.Join(errs...)
}

// existing reports whether the server already holds a contact with id
func existing(ctx context.Context, saver Saver, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := saver.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, contacts.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
