// Package client is the Go side of the browser contract: a typed HTTP client
// for the task API plus the board synchronizer and recycle-bin controller
// that keep a local view consistent with the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/skhapre/dashboard-app/database"
)

// TaskAPI is the slice of the REST surface the synchronizer and recycle bin
// need. *Client implements it over HTTP; tests substitute fakes.
type TaskAPI interface {
	FetchBoard(ctx context.Context) (database.Board, error)
	CreateTask(ctx context.Context, req database.CreateTaskRequest) (*database.Task, error)
	UpdateTask(ctx context.Context, id string, patch database.TaskPatch) (*database.Task, error)
	MoveTask(ctx context.Context, id string, column database.Column, index int) (*database.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListDeleted(ctx context.Context) ([]database.Task, error)
	RestoreTask(ctx context.Context, id string) (*database.Task, error)
	PurgeTask(ctx context.Context, id string) error
	PurgeAllTasks(ctx context.Context) error
}

// Client talks to the dashboard API with the {success, data, error} envelope.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return errors.New(msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}

func (c *Client) FetchBoard(ctx context.Context) (database.Board, error) {
	board := database.Board{}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &board); err != nil {
		return nil, err
	}
	return board, nil
}

func (c *Client) CreateTask(ctx context.Context, req database.CreateTaskRequest) (*database.Task, error) {
	var task database.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch database.TaskPatch) (*database.Task, error) {
	var task database.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) MoveTask(ctx context.Context, id string, column database.Column, index int) (*database.Task, error) {
	body := map[string]any{
		"column": column,
		"order":  index,
	}
	var task database.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id+"/move", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) ListDeleted(ctx context.Context) ([]database.Task, error) {
	var tasks []database.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/recyclebin", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) RestoreTask(ctx context.Context, id string) (*database.Task, error) {
	var task database.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id+"/restore", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) PurgeTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id+"/permanent", nil, nil)
}

func (c *Client) PurgeAllTasks(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/recyclebin/clear", nil, nil)
}
