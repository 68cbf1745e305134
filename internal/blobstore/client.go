// Package blobstore is an HTTP client for the object-storage service that
// holds source documents, converted Markdown, and chunk objects.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RetryableError marks a transient storage failure worth retrying: network
// errors and 5xx responses. Everything else (4xx, decode failures) is
// permanent.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Client communicates with the blob storage HTTP API. Objects live under
// per-tenant containers at /blobs/{container}/{path}.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) objectURL(container, path string) string {
	return c.baseURL + "/blobs/" + url.PathEscape(container) + "/" + path
}

// Put writes an object, overwriting any existing one at the same path.
func (c *Client) Put(ctx context.Context, container, path string, data []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(container, path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Op: "put " + path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put", path, resp)
	}
	return nil
}

// Get reads an object's bytes.
func (c *Client) Get(ctx context.Context, container, path string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(container, path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RetryableError{Op: "get " + path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get", path, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Op: "read " + path, Err: err}
	}
	return data, nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (c *Client) Delete(ctx context.Context, container, path string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(container, path), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Op: "delete " + path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return statusError("delete", path, resp)
	}
	return nil
}

func statusError(op, path string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("%s %s: status %d: %s", op, path, resp.StatusCode, string(respBody))
	if resp.StatusCode >= 500 {
		return &RetryableError{Op: op + " " + path, Err: err}
	}
	return err
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// ContainerStore binds a client to one container, exposing the narrow
// Get/Put surface the windowing code consumes.
type ContainerStore struct {
	client    *Client
	container string
}

func NewContainerStore(client *Client, container string) *ContainerStore {
	return &ContainerStore{client: client, container: container}
}

func (s *ContainerStore) Get(ctx context.Context, path string) ([]byte, error) {
	return s.client.Get(ctx, s.container, path)
}

func (s *ContainerStore) Put(ctx context.Context, path string, data []byte) error {
	return s.client.Put(ctx, s.container, path, data)
}
