// Package vectorstore provides a client for the Pinecone vector index.
// Each call is a stateless request/response; writes are last-write-wins
// per key and there is no retry or compensation logic.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Metadata is the denormalized payload stored alongside a vector. Every
// stored vector must carry a "type" discriminator ("candidate" | "job") so
// queries can be scoped to the opposite type.
type Metadata map[string]any

// Match is a single nearest-neighbor result. Score is cosine similarity;
// vectors are unit-normalized so it equals the dot product.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// NotFoundError indicates no vector is stored under the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("vector not found: %s", e.ID)
}

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Pinecone client.
type Config struct {
	// Host is the index host URL (required), e.g.
	// https://candidate-index-xxxxxxx.svc.us-east-1.pinecone.io
	Host string

	// APIKey is the Pinecone API key (required).
	APIKey string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Client talks to a single Pinecone index over its REST API.
type Client struct {
	http   *http.Client
	host   string
	apiKey string
}

// New creates a new Pinecone index client.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("pinecone: host is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		host:   strings.TrimSuffix(cfg.Host, "/"),
		apiKey: cfg.APIKey,
	}, nil
}

type upsertRequest struct {
	Vectors []vectorRecord `json:"vectors"`
}

type vectorRecord struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

type fetchResponse struct {
	Vectors map[string]vectorRecord `json:"vectors"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// Upsert writes a vector under the given id, overwriting any prior vector
// and metadata for that key.
func (c *Client) Upsert(ctx context.Context, id string, values []float32, metadata Metadata) error {
	if id == "" {
		return fmt.Errorf("pinecone: upsert id is empty")
	}
	if len(values) == 0 {
		return fmt.Errorf("pinecone: upsert vector is empty")
	}

	req := upsertRequest{Vectors: []vectorRecord{{ID: id, Values: values, Metadata: metadata}}}
	return c.post(ctx, "/vectors/upsert", req, nil)
}

// Fetch returns the stored vector for id, or a NotFoundError.
func (c *Client) Fetch(ctx context.Context, id string) ([]float32, error) {
	endpoint := c.host + "/vectors/fetch?ids=" + url.QueryEscape(id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("pinecone: create request: %w", err)
	}
	c.setHeaders(httpReq)

	var resp fetchResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}

	record, ok := resp.Vectors[id]
	if !ok || len(record.Values) == 0 {
		return nil, &NotFoundError{ID: id}
	}
	return record.Values, nil
}

// Query returns the topK stored vectors nearest to the given vector whose
// metadata type equals typeFilter, ranked by descending similarity.
func (c *Client) Query(ctx context.Context, vector []float32, typeFilter string, topK int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("pinecone: query vector is empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("pinecone: topK must be positive")
	}

	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}
	if typeFilter != "" {
		req.Filter = map[string]any{"type": map[string]any{"$eq": typeFilter}}
	}

	var resp queryResponse
	if err := c.post(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Delete removes the vector stored under id. Deleting a missing id is not
// an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("pinecone: delete id is empty")
	}
	return c.post(ctx, "/vectors/delete", deleteRequest{IDs: []string{id}}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("pinecone: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("pinecone: create request: %w", err)
	}
	c.setHeaders(httpReq)

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pinecone: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone: %s returned status %d: %s", req.URL.Path, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("pinecone: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
