package play

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// APIError is a non-2xx reply from the quiz API. It unwraps to
// placequiz.ErrNotFound for 404 and placequiz.ErrMismatch for 422.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quiz api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return placequiz.ErrNotFound
	case http.StatusUnprocessableEntity:
		return placequiz.ErrMismatch
	}
	return nil
}

// Next is a reply from the next-question endpoint. When Completed is set
// Current is the number of answered questions, otherwise the 1-based
// position of the question.
type Next struct {
	Completed  bool   `json:"completed"`
	QuestionID int64  `json:"question_id"`
	Name       string `json:"name"`
	Difficulty *int   `json:"difficulty"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
}

// Verdict is a reply from the answer endpoint.
type Verdict struct {
	Completed      bool   `json:"completed"`
	Correct        bool   `json:"correct"`
	CorrectReading string `json:"correct_reading"`
	Current        int    `json:"current"`
	Total          int    `json:"total"`
}

type Summary struct {
	SessionID      string  `json:"session_id"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}

type NewSession struct {
	SessionID string `json:"session_id"`
	Total     int    `json:"total"`
}

// API is the server surface the Driver needs.
type API interface {
	StartSession(ctx context.Context, total int) (NewSession, error)
	NextQuestion(ctx context.Context, sessionID string) (Next, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionID int64, answer string) (Verdict, error)
	Result(ctx context.Context, sessionID string) (Summary, error)
}

// Client talks to the /api/v1 endpoints over HTTP.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// http://localhost:8080.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/") + "/api/v1",
		http: httpClient,
	}
}

var _ API = (*Client)(nil)

func (c *Client) StartSession(ctx context.Context, total int) (NewSession, error) {
	var out NewSession
	err := c.do(ctx, http.MethodPost, "/sessions", map[string]int{"total": total}, &out)
	return out, err
}

func (c *Client) NextQuestion(ctx context.Context, sessionID string) (Next, error) {
	var out Next
	err := c.do(ctx, http.MethodGet, "/questions/next?session_id="+url.QueryEscape(sessionID), nil, &out)
	return out, err
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, questionID int64, answer string) (Verdict, error) {
	var out Verdict
	body := map[string]string{"session_id": sessionID, "answer": answer}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/answer", questionID), body, &out)
	return out, err
}

func (c *Client) Result(ctx context.Context, sessionID string) (Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodGet, "/results/"+url.PathEscape(sessionID), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
