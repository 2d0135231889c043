// Package remote is the network-backed counterpart of the local store:
// the same task operation set, proxied to a taskden server. The CLI and
// any future sync layer talk through it.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskden/internal/model"
	"taskden/internal/store"
)

// Client implements store.TaskService against the HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ store.TaskService = (*Client)(nil)

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string         { return c.token }

type apiError struct {
	Message string `json:"error"`
}

func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// --- auth ---

type sessionResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) SignUp(email, password string) (string, error) {
	var out sessionResponse
	err := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

func (c *Client) SignIn(email, password string) (string, error) {
	var out sessionResponse
	err := c.do(http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

func (c *Client) SignOut() error {
	err := c.do(http.MethodPost, "/api/auth/signout", nil, nil)
	if err == nil {
		c.token = ""
	}
	return err
}

// --- tasks (store.TaskService) ---

func (c *Client) FetchTasks() ([]model.Task, error) {
	var out []model.Task
	if err := c.do(http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddTask(t model.Task) (model.Task, error) {
	var out model.Task
	if err := c.do(http.MethodPost, "/api/tasks", t, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) UpdateTask(t model.Task) (model.Task, error) {
	var out model.Task
	if err := c.do(http.MethodPut, "/api/tasks/"+string(t.ID), t, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) ToggleTaskStatus(id model.TaskID) (model.Task, error) {
	var out model.Task
	if err := c.do(http.MethodPost, "/api/tasks/"+string(id)+"/toggle", nil, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) DeleteTask(id model.TaskID) error {
	return c.do(http.MethodDelete, "/api/tasks/"+string(id), nil, nil)
}

func (c *Client) DeleteAllTasks() error {
	return c.do(http.MethodDelete, "/api/tasks", nil, nil)
}

// --- projects ---

func (c *Client) Projects() ([]model.Project, error) {
	var out []model.Project
	if err := c.do(http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddProject(p model.Project) (model.Project, error) {
	var out model.Project
	if err := c.do(http.MethodPost, "/api/projects", p, &out); err != nil {
		return model.Project{}, err
	}
	return out, nil
}

func (c *Client) DeleteProject(id model.ProjectID) error {
	return c.do(http.MethodDelete, "/api/projects/"+string(id), nil, nil)
}

// --- capture ---

type CaptureResult struct {
	Tasks    []model.Task `json:"tasks"`
	Fallback bool         `json:"fallback"`
}

func (c *Client) Capture(text string) (CaptureResult, error) {
	var out CaptureResult
	err := c.do(http.MethodPost, "/api/capture", map[string]string{"text": text}, &out)
	return out, err
}
