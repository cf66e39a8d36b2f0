package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultEndpoint is the hosted analysis service.
const DefaultEndpoint = "https://customer-insights-api.onrender.com"

const maxResponseBytes = 64 << 20

// Client talks to the remote segmentation service. Header discovery and
// analysis go to the same endpoint and differ only by payload shape.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient returns a client for endpoint. A non-positive httpTimeout leaves
// requests bounded only by the caller's context.
func NewClient(endpoint string, httpTimeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := &http.Client{}
	if httpTimeout > 0 {
		hc.Timeout = httpTimeout
	}
	return &Client{httpClient: hc, endpoint: endpoint}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

type requestIDKey struct{}

// WithRequestID attaches id to ctx; requests made with ctx send it as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

type headersResponse struct {
	Headers []string `json:"headers"`
}

// DiscoverHeaders uploads file and returns the spreadsheet's column names.
func (c *Client) DiscoverHeaders(ctx context.Context, file segment.UploadedFile) ([]string, error) {
	const op = "discover headers"
	body, contentType, err := encodeMultipart(nil, &file)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	raw, err := c.post(ctx, op, body, contentType)
	if err != nil {
		return nil, err
	}
	doc, ok := raw.doc.(map[string]any)
	if ok {
		if _, has := doc["headers"]; !has {
			if msg, isStr := doc["error"].(string); isStr {
				return nil, raw.serviceError(msg)
			}
		}
	}
	var out headersResponse
	if err := raw.decode(op, headersSchema, &out); err != nil {
		return nil, err
	}
	return out.Headers, nil
}

// Analyze submits cfg (and file, when cfg does not use the default dataset).
func (c *Client) Analyze(ctx context.Context, cfg segment.AnalysisConfig, file *segment.UploadedFile) (*segment.Result, error) {
	const op = "analyze"
	if cfg.UseDefault {
		file = nil
	} else if file == nil {
		return nil, segment.ErrNoFile
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	body, contentType, err := encodeMultipart(payload, file)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	raw, err := c.post(ctx, op, body, contentType)
	if err != nil {
		return nil, err
	}
	if doc, ok := raw.doc.(map[string]any); ok {
		if msg, isStr := doc["error"].(string); isStr && msg != "" {
			return nil, raw.serviceError(msg)
		}
	}
	var out segment.Result
	if err := raw.decode(op, analysisSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health queries <endpoint>/health and returns the reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	const op = "health"
	url := strings.TrimRight(c.endpoint, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-Id", requestIDFrom(ctx))
	raw, err := c.do(op, req)
	if err != nil {
		return "", err
	}
	var out healthResponse
	if err := raw.decode(op, healthSchema, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) post(ctx context.Context, op string, body []byte, contentType string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestIDFrom(ctx))
	return c.do(op, req)
}

// rawResponse is a completed exchange whose body parsed as JSON.
type rawResponse struct {
	status    int
	requestID string
	body      []byte
	doc       any
}

func (c *Client) do(op string, req *http.Request) (*rawResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	rid := extractRequestID(resp)
	if rid == "" {
		rid = req.Header.Get("X-Request-Id")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &TransportError{Op: op, Err: &APIError{StatusCode: resp.StatusCode, RequestID: rid, Body: snippet(body)}}
		}
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &rawResponse{status: resp.StatusCode, requestID: rid, body: body, doc: doc}, nil
}

func (r *rawResponse) serviceError(msg string) *ServiceError {
	return &ServiceError{Message: msg, StatusCode: r.status, RequestID: r.requestID}
}

// decode validates the parsed body against sch and unmarshals it into out.
// Non-2xx statuses without a service error are reported as APIError.
func (r *rawResponse) decode(op string, sch *jsonschema.Schema, out any) error {
	if r.status < 200 || r.status >= 300 {
		return &TransportError{Op: op, Err: &APIError{StatusCode: r.status, RequestID: r.requestID, Body: snippet(r.body)}}
	}
	if err := sch.Validate(r.doc); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected response shape: %w", err)}
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// encodeMultipart builds the form body: an optional "config" JSON field and an
// optional "file" part carrying the raw spreadsheet.
func encodeMultipart(config []byte, file *segment.UploadedFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if config != nil {
		if err := w.WriteField("config", string(config)); err != nil {
			return nil, "", fmt.Errorf("write config field: %w", err)
		}
	}
	if file != nil {
		if file.Name == "" {
			return nil, "", errors.New("file name is empty")
		}
		part, err := w.CreateFormFile("file", file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "X-Render-Request-Id", "Cf-Ray"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func snippet(b []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
