package contactcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/contacts/internal/models"
	"gopkg.in/yaml.v3"
)

func validFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

// pageView is a page together with its index, as shown to the user
type pageView struct {
	models.Page `yaml:",inline"`
	Number      int `json:"number" yaml:"number"`
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	}

	switch t := v.(type) {
	case pageView:
		return printPage(w, t)
	case models.Contact:
		return printContact(w, t)
	default:
		return fmt.Errorf("cannot render %T as a table", v)
	}
}

func printPage(w io.Writer, p pageView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTITLE\tEMAIL\tSTATUS")
	for _, c := range p.Content {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Title, c.Email, c.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	pages := max(p.TotalPages, 1)
	_, err := fmt.Fprintf(w, "Page %d of %d (%d contacts)\n", p.Number+1, pages, p.TotalElements)
	return err
}

func printContact(w io.Writer, c models.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", c.ID)
	for _, name := range models.EditableFields {
		value, _ := c.Field(name)
		fmt.Fprintf(tw, "%s:\t%s\n", name, value)
	}
	photo := c.PhotoURL
	if photo == "" {
		photo = "-"
	}
	fmt.Fprintf(tw, "photo:\t%s\n", photo)
	return tw.Flush()
}
