// Package transport implements the backend command boundary over HTTP. Each
// command is one POST round trip; error codes in the response body map back
// to the backend sentinel errors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-call request id.
const RequestIDHeader = "X-Request-Id"

// Client is a backend.Backend that talks to the command server.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

var _ backend.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for a failed call whose error code has no sentinel.
type StatusError struct {
	Command string
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned %d", e.Command, e.Status)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Command, e.Message, e.Status)
}

// invoke runs one command. out may be nil when the result is not needed.
func (c *Client) invoke(ctx context.Context, cmd string, req backend.Request, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", cmd, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+cmd, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	id := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	defer resp.Body.Close()

	c.log.Debug("command",
		zap.String("command", cmd),
		zap.String("request_id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return decodeError(cmd, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cmd, err)
	}
	return nil
}

func decodeError(cmd string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e backend.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		return &StatusError{Command: cmd, Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if sentinel := backend.FromCode(e.Error); sentinel != nil {
		return fmt.Errorf("%s: %w", cmd, sentinel)
	}
	return &StatusError{Command: cmd, Status: resp.StatusCode, Code: e.Error, Message: e.Message}
}

func entryRequest(e models.Entry, masterpw string) backend.Request {
	return backend.Request{
		ID:       e.ID,
		Website:  e.Website,
		Username: e.Username,
		Password: e.Password,
		Notes:    e.Notes,
		MasterPW: masterpw,
	}
}

func (c *Client) Add(ctx context.Context, e models.Entry, masterpw string) (string, error) {
	req := entryRequest(e, masterpw)
	req.ID = ""
	var out backend.AddResponse
	if err := c.invoke(ctx, backend.CmdAdd, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Delete(ctx context.Context, id string, masterpw string) error {
	return c.invoke(ctx, backend.CmdDelete, backend.Request{ID: id, MasterPW: masterpw}, nil)
}

func (c *Client) Edit(ctx context.Context, id string, e models.Entry, masterpw string) error {
	req := entryRequest(e, masterpw)
	req.ID = id
	return c.invoke(ctx, backend.CmdEdit, req, nil)
}

func (c *Client) GetAll(ctx context.Context, masterpw string) (models.Rows, error) {
	var rows models.Rows
	err := c.invoke(ctx, backend.CmdGetAll, backend.Request{MasterPW: masterpw}, &rows)
	return rows, err
}

func (c *Client) GetOnly(ctx context.Context, filter string, ft models.FilterField, masterpw string) (models.Rows, error) {
	var rows models.Rows
	err := c.invoke(ctx, backend.CmdGetOnly, backend.Request{Filter: filter, FilterType: ft, MasterPW: masterpw}, &rows)
	return rows, err
}

func (c *Client) GetRow(ctx context.Context, id string, masterpw string) (models.Entry, error) {
	var e models.Entry
	err := c.invoke(ctx, backend.CmdGetRow, backend.Request{ID: id, MasterPW: masterpw}, &e)
	return e, err
}

func (c *Client) ChangeMasterPassword(ctx context.Context, oldpw, newpw string) error {
	return c.invoke(ctx, backend.CmdChangeMasterPassword, backend.Request{OldPassword: oldpw, Password: newpw}, nil)
}

func (c *Client) Print(ctx context.Context, msg string) error {
	return c.invoke(ctx, backend.CmdPrint, backend.Request{Msg: msg}, nil)
}

func (c *Client) Login(ctx context.Context, password, code string) (bool, error) {
	var out backend.LoginResponse
	if err := c.invoke(ctx, backend.CmdLogin, backend.Request{Password: password, Code: code}, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

func (c *Client) Register(ctx context.Context, password string) (models.Registration, error) {
	var out models.Registration
	err := c.invoke(ctx, backend.CmdRegister, backend.Request{Password: password}, &out)
	return out, err
}
