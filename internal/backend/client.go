package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vujjini/bm-assist/internal/domain"
)

// Config holds client settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

// Client is a typed wrapper over the backend's REST contract. Each call is
// fire-once: no retries and no caching. Retry policy, if any, belongs to
// the caller.
type Client struct {
	baseURL string
	http    *http.Client
	uploads *http.Client
	log     *zap.Logger
}

// NewClient creates a backend client. Uploads get their own HTTP client so
// large payloads are not cut off by the standard request timeout.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		uploads: &http.Client{Timeout: cfg.UploadTimeout},
		log:     logger,
	}
}

// Health probes backend liveness. The result beyond success/failure is
// discarded.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, body)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if payload.Status != "healthy" && payload.Status != "ok" {
		return fmt.Errorf("backend reported status %q", payload.Status)
	}
	return nil
}

// Chat sends a question and returns the answer with its source citations.
func (c *Client) Chat(ctx context.Context, question string) (*domain.ChatResponse, error) {
	reqBody, err := json.Marshal(domain.ChatRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var chatResp domain.ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &chatResp, nil
}

// UploadSingle uploads one file to the single-file endpoint.
func (c *Client) UploadSingle(ctx context.Context, f File) (domain.UploadResult, error) {
	return c.upload(ctx, "/api/upload", "file", []File{f})
}

// UploadBatch uploads a set of files to the folder endpoint.
func (c *Client) UploadBatch(ctx context.Context, files []File) (domain.UploadResult, error) {
	return c.upload(ctx, "/api/upload_folder", "files", files)
}

// UploadZip uploads a ZIP archive to be expanded and processed server-side.
func (c *Client) UploadZip(ctx context.Context, f File) (domain.UploadResult, error) {
	return c.upload(ctx, "/api/upload_zip_folder", "file", []File{f})
}

// UploadManual uploads a PDF to the manual extraction endpoint.
func (c *Client) UploadManual(ctx context.Context, f File) (domain.UploadResult, error) {
	return c.upload(ctx, "/api/upload_manual", "file", []File{f})
}

// FetchFile downloads raw bytes from the backend's file endpoint, used to
// embed PDF previews.
func (c *Client) FetchFile(ctx context.Context, path string) ([]byte, error) {
	escaped := url.PathEscape(strings.TrimLeft(path, "/"))
	// Keep path separators so nested preview paths resolve.
	escaped = strings.ReplaceAll(escaped, "%2F", "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/"+escaped, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build file request: %w", err)
	}

	resp, err := c.uploads.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// upload packages files as a multipart body, posts them and classifies the
// response shape.
func (c *Client) upload(ctx context.Context, path, fieldName string, files []File) (domain.UploadResult, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	for _, f := range files {
		part, err := writer.CreateFormFile(fieldName, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		src, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if c.log != nil {
		c.log.Debug("uploading",
			zap.String("path", path),
			zap.Int("files", len(files)),
		)
	}

	resp, err := c.uploads.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	return classifyUploadResult(respBody)
}

// classifyUploadResult reconstructs the upload result union from field
// presence. The backend decides the shape by which endpoint actually ran,
// independent of the mode the UI had selected, so classification happens
// here at the boundary and nowhere else.
func classifyUploadResult(body []byte) (domain.UploadResult, error) {
	var probe struct {
		ExtractionMethod    *string          `json:"extraction_method"`
		TotalFilesProcessed *int             `json:"total_files_processed"`
		FileResults         *json.RawMessage `json:"file_results"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	switch {
	case probe.ExtractionMethod != nil:
		var r domain.ManualPdfResult
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("failed to decode manual result: %w", err)
		}
		return &r, nil
	case probe.TotalFilesProcessed != nil || probe.FileResults != nil:
		var r domain.FolderResult
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("failed to decode folder result: %w", err)
		}
		return &r, nil
	default:
		var r domain.SingleFileResult
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("failed to decode single file result: %w", err)
		}
		return &r, nil
	}
}
