package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gitcms/pkg/models"
)

// ContentStore is the contract for the remote document store. The sync
// layer depends on this, not on the HTTP client, so tests can run
// against an in-memory store.
type ContentStore interface {
	// CheckAccess probes the repository with a read-only request. Used
	// to validate credentials before a session is created.
	CheckAccess(ctx context.Context) error

	// ReadDocument fetches a document body and its revision token.
	// Returns ErrNotFound when the path does not exist.
	ReadDocument(ctx context.Context, path string) (json.RawMessage, string, error)

	// WriteDocument stores body at path. expectedRevision must be the
	// token from the last read or write of the path; empty is valid
	// only for first-ever creation. Returns the new revision token, or
	// ErrConflict when the store's current revision differs.
	WriteDocument(ctx context.Context, path string, body []byte, expectedRevision, message string) (string, error)

	// ListDirectory lists the files under dir. A missing directory is
	// an empty listing, not an error.
	ListDirectory(ctx context.Context, dir string) ([]models.ImageAsset, error)

	// DeleteDocument removes the document at path. expectedRevision
	// follows the same rule as WriteDocument.
	DeleteDocument(ctx context.Context, path, expectedRevision, message string) error
}

const defaultBaseURL = "https://api.github.com"

// Client implements ContentStore over the hosting platform's contents
// API. One client per session; it carries the session's credentials.
type Client struct {
	baseURL    string
	creds      models.Credentials
	httpClient *http.Client
}

// New creates a client bound to the given credentials.
func New(creds models.Credentials) *Client {
	return NewWithBaseURL(creds, defaultBaseURL)
}

// NewWithBaseURL creates a client against a non-default API host.
// Tests point this at a local server.
func NewWithBaseURL(creds models.Credentials, baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{},
	}
}

func (c *Client) repoURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.baseURL, c.creds.Account, c.creds.Repository, path)
}

func (c *Client) contentsURL(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return c.repoURL("/contents/"+escaped) + "?ref=" + url.QueryEscape(c.creds.Branch)
}

func (c *Client) do(ctx context.Context, method, rawURL string, reqBody, respBody interface{}) error {
	if !c.creds.Complete() {
		return fmt.Errorf("%w: incomplete credentials", ErrUnauthenticated)
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return &TransportError{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
		}
	}
	return nil
}

// CheckAccess verifies the credentials can read the repository.
func (c *Client) CheckAccess(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, c.repoURL(""), nil, nil); err != nil {
		return fmt.Errorf("check repository access: %w", err)
	}
	return nil
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// ReadDocument fetches path and decodes its base64 content.
func (c *Client) ReadDocument(ctx context.Context, path string) (json.RawMessage, string, error) {
	var resp contentsResponse
	if err := c.do(ctx, http.MethodGet, c.contentsURL(path), nil, &resp); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	// The platform wraps base64 content with embedded newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, "", &TransportError{Message: fmt.Sprintf("decode content of %s: %v", path, err)}
	}
	return raw, resp.SHA, nil
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

type writeResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// WriteDocument stores body at path and returns the new revision token.
func (c *Client) WriteDocument(ctx context.Context, path string, body []byte, expectedRevision, message string) (string, error) {
	req := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(body),
		SHA:     expectedRevision,
		Branch:  c.creds.Branch,
	}
	var resp writeResponse
	if err := c.do(ctx, http.MethodPut, c.contentsURL(path), req, &resp); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return resp.Content.SHA, nil
}

// ListDirectory lists dir. A 404 means the directory has not been
// created yet and yields an empty listing.
func (c *Client) ListDirectory(ctx context.Context, dir string) ([]models.ImageAsset, error) {
	var entries []models.ImageAsset
	if err := c.do(ctx, http.MethodGet, c.contentsURL(dir), nil, &entries); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.ImageAsset{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if entries == nil {
		entries = []models.ImageAsset{}
	}
	return entries, nil
}

type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// DeleteDocument removes path at the expected revision.
func (c *Client) DeleteDocument(ctx context.Context, path, expectedRevision, message string) error {
	req := deleteRequest{Message: message, SHA: expectedRevision, Branch: c.creds.Branch}
	if err := c.do(ctx, http.MethodDelete, c.contentsURL(path), req, nil); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
