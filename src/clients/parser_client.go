package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/models"
)

// ErrParseFailed wraps any failure of the parser service. Parsing fails
// or succeeds as a whole; there is no per-transaction parse error.
var ErrParseFailed = errors.New("statement parsing failed")

// ParserClient talks to the PDF statement parser microservice.
type ParserClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewParserClient(baseURL string, timeout time.Duration) *ParserClient {
	return &ParserClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ParseStatement uploads one PDF and returns the parsed candidate
// transactions plus run metadata. bankHint is optional; the parser
// detects the bank itself when it is empty.
func (c *ParserClient) ParseStatement(ctx context.Context, file io.Reader, filename, bankHint string) (*models.ParseOutcome, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: creating form file: %v", ErrParseFailed, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%w: copying file contents: %v", ErrParseFailed, err)
	}
	if bankHint != "" {
		if err := writer.WriteField("bank", bankHint); err != nil {
			return nil, fmt.Errorf("%w: writing bank field: %v", ErrParseFailed, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing multipart writer: %v", ErrParseFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrorMessage(resp.Body)
		logger.L.Warn("Parser service returned error", "status", resp.StatusCode, "message", msg)
		return nil, fmt.Errorf("%w: parser service returned %d: %s", ErrParseFailed, resp.StatusCode, msg)
	}

	var outcome models.ParseOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return nil, fmt.Errorf("%w: decoding parser response: %v", ErrParseFailed, err)
	}

	logger.L.Info("Statement parsed",
		"filename", filename, "detectedBank", outcome.DetectedBank,
		"transactions", len(outcome.Transactions), "duration", time.Since(start))
	return &outcome, nil
}

// readErrorMessage extracts an {"error": "..."} body, falling back to
// the raw text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(raw)
}
