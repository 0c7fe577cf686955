// Package assist talks to the local helper service that verifies claim
// photos and answers questions. The service is an opaque JSON API.
package assist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrUnavailable = errors.New("assistance service is unavailable, please try again later")
	ErrEmptyImage  = errors.New("an image is required for verification")
	ErrEmptyPrompt = errors.New("a question is required")
)

const maxResponseBytes = 1 << 20

type Verification struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Verify uploads an image as the multipart field "image".
func (c *Client) Verify(ctx context.Context, filename string, image io.Reader) (*Verification, error) {
	if image == nil {
		return nil, ErrEmptyImage
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("error creating form file: %w", err)
	}
	n, err := io.Copy(part, image)
	if err != nil {
		return nil, fmt.Errorf("error reading image: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyImage
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("error closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", &body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var v Verification
	if err := c.do(req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyPrompt
	}

	payload, err := json.Marshal(chatRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("error encoding question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp chatResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// do sends req and decodes a JSON body into out. Every failure wraps
// ErrUnavailable so callers can show one message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code: %d - status: %s", ErrUnavailable, resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: error decoding resp.Body: %v", ErrUnavailable, err)
	}
	return nil
}
