package logs_ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var ErrLogSourceEmpty = errors.New("log source returned an empty body")

// LogSourceClient downloads the raw newline-delimited log blob.
type LogSourceClient struct {
	client       *http.Client
	url          string
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewLogSourceClient(client *http.Client, url string, maxBodyBytes int64, logger *slog.Logger) *LogSourceClient {
	return &LogSourceClient{
		client:       client,
		url:          url,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// FetchLogs returns the blob as text. Network errors, non-2xx statuses and
// oversized bodies are returned as errors; an empty body is ErrLogSourceEmpty.
func (c *LogSourceClient) FetchLogs(ctx context.Context) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create log fetch request: %w", err)
	}
	request.Header.Set("Accept", "text/plain")

	response, err := c.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to fetch logs: %w", err)
	}

	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			c.logger.Error("failed to close log source response body", "error", closeErr)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("log source returned status %d", response.StatusCode)
	}

	body, err := c.readBody(response)
	if err != nil {
		return "", err
	}

	if len(body) == 0 {
		return "", ErrLogSourceEmpty
	}

	return string(body), nil
}

func (c *LogSourceClient) readBody(response *http.Response) ([]byte, error) {
	var reader io.Reader = response.Body

	// the transport only decompresses bodies it negotiated itself
	if isGzipPayload(response) {
		gzipReader, err := gzip.NewReader(response.Body)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to open gzip log blob: %w", err)
		}
		defer gzipReader.Close()

		reader = gzipReader
	}

	if c.maxBodyBytes > 0 {
		reader = io.LimitReader(reader, c.maxBodyBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read log blob: %w", err)
	}

	if c.maxBodyBytes > 0 && int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("log blob exceeds %d bytes", c.maxBodyBytes)
	}

	return body, nil
}

func isGzipPayload(response *http.Response) bool {
	if strings.EqualFold(response.Header.Get("Content-Encoding"), "gzip") && !response.Uncompressed {
		return true
	}

	contentType := strings.ToLower(response.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "application/gzip") || strings.HasPrefix(contentType, "application/x-gzip")
}
