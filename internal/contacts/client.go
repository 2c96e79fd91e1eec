package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/contacts/internal/models"
)

// DefaultPageSize is the page size used when a caller does not pick one
const DefaultPageSize = 5

// maxErrorBody caps how much of an error response is kept for messages
const maxErrorBody = 4096

// Client talks to the contacts REST API rooted at BaseURL (e.g. http://localhost:8080/contacts)
type Client struct {
	BaseURL    string
	PageSize   int
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithPageSize sets the page size used when List is called with size <= 0
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.PageSize = size
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new contacts API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		PageSize: DefaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches one page of contacts
func (c *Client) List(ctx context.Context, page, size int) (*models.Page, error) {
	const op = "list contacts"
	if page < 0 {
		return nil, newError(op, ErrValidation, 0, "page must not be negative", nil)
	}
	if size <= 0 {
		size = c.PageSize
	}

	listURL := fmt.Sprintf("%s?page=%d&size=%d", c.BaseURL, page, size)
	var result models.Page
	if err := c.do(ctx, op, http.MethodGet, listURL, nil, "", &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, newError(op, ErrServer, 0, "inconsistent page", err)
	}

	slog.Debug("Listed contacts", "page", page, "size", size, "count", result.NumberOfElements, "total", result.TotalElements)
	return &result, nil
}

// Get fetches a single contact by id
func (c *Client) Get(ctx context.Context, id string) (*models.Contact, error) {
	const op = "get contact"
	if id == "" {
		return nil, newError(op, ErrValidation, 0, "id is required", nil)
	}

	var contact models.Contact
	if err := c.do(ctx, op, http.MethodGet, c.BaseURL+"/"+url.PathEscape(id), nil, "", &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Upsert creates the contact when it has no id and updates it otherwise.
// The returned contact always carries the server-assigned id.
func (c *Client) Upsert(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	const op = "save contact"
	body, err := json.Marshal(contact)
	if err != nil {
		return nil, newError(op, ErrValidation, 0, "failed to encode contact", err)
	}

	var saved models.Contact
	if err := c.do(ctx, op, http.MethodPost, c.BaseURL, bytes.NewReader(body), "application/json", &saved); err != nil {
		return nil, err
	}
	if saved.ID == "" {
		return nil, newError(op, ErrServer, 0, "response carries no id", nil)
	}
	if contact.ID != "" && saved.ID != contact.ID {
		return nil, newError(op, ErrServer, 0, fmt.Sprintf("server changed id %s to %s", contact.ID, saved.ID), nil)
	}
	return &saved, nil
}

// Delete removes a contact. Deleting a contact that no longer exists succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	const op = "delete contact"
	if id == "" {
		return newError(op, ErrValidation, 0, "id is required", nil)
	}

	err := c.do(ctx, op, http.MethodDelete, c.BaseURL+"/"+url.PathEscape(id), nil, "", nil)
	if errors.Is(err, ErrNotFound) {
		slog.Debug("Contact already deleted", "id", id)
		return nil
	}
	return err
}

// UploadPhoto attaches a photo to an existing contact
func (c *Client) UploadPhoto(ctx context.Context, id string, data []byte, filename string) error {
	const op = "upload photo"
	if id == "" {
		return newError(op, ErrValidation, 0, "photo upload requires a saved contact", nil)
	}
	if len(data) == 0 {
		return newError(op, ErrValidation, 0, "photo is empty", nil)
	}
	if filename == "" {
		filename = "photo"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return newError(op, ErrValidation, 0, "failed to build form", err)
	}
	if _, err := part.Write(data); err != nil {
		return newError(op, ErrValidation, 0, "failed to build form", err)
	}
	if err := writer.WriteField("id", id); err != nil {
		return newError(op, ErrValidation, 0, "failed to build form", err)
	}
	if err := writer.Close(); err != nil {
		return newError(op, ErrValidation, 0, "failed to build form", err)
	}

	return c.do(ctx, op, http.MethodPut, c.BaseURL+"/photo", &body, writer.FormDataContentType(), nil)
}

// do sends one request and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return newError(op, ErrValidation, 0, "failed to create request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return newError(op, ErrNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	slog.Debug("Contacts API call", "method", method, "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newError(op, kindForStatus(resp.StatusCode), resp.StatusCode, errorMessage(raw), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newError(op, ErrServer, resp.StatusCode, "failed to decode response", err)
	}
	return nil
}

// errorMessage pulls a readable message out of an error body, which may be
// plain text or a JSON object carrying "message" or "error"
func errorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(raw)
}
