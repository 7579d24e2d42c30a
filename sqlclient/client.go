package sqlclient

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/tabdb/server/tabdbwire"
)

// Client is a synchronous client. Exec calls are safe for concurrent use
// but are serialised on the connection.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64

	// Optional per-request timeout (0 = no timeout).
	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(c), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// SetRWTimeout sets a per-Exec read/write deadline.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Exec sends one command and returns the server's rendered response. Command
// failures are part of the response ("[ERROR]: ..."); the error return is
// for transport failures only.
func (c *Client) Exec(sql string) (string, error) {
	return c.ExecContext(context.Background(), sql)
}

func (c *Client) ExecContext(ctx context.Context, sql string) (string, error) {
	if c == nil || c.conn == nil {
		return "", fmt.Errorf("sqlclient: nil client")
	}

	reqID := c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.applyDeadline(ctx); err != nil {
		return "", err
	}
	defer func() {
		// Clear deadline after request so idle connection doesn't expire.
		_ = c.conn.SetDeadline(time.Time{})
	}()

	req := tabdbwire.ExecuteRequest{ID: reqID, SQL: sql}
	if err := tabdbwire.WriteFrame(c.conn, req); err != nil {
		return "", fmt.Errorf("sqlclient: send: %w", err)
	}

	var resp tabdbwire.ExecuteResponse
	if err := tabdbwire.ReadFrame(c.conn, &resp); err != nil {
		return "", fmt.Errorf("sqlclient: receive: %w", err)
	}
	if resp.ID != reqID {
		return "", fmt.Errorf("sqlclient: response id mismatch: got=%d want=%d", resp.ID, reqID)
	}
	return resp.Response, nil
}

// IsError reports whether a rendered response is an error response.
func IsError(resp string) bool {
	return strings.HasPrefix(resp, "[ERROR]: ")
}

func (c *Client) applyDeadline(ctx context.Context) error {
	// Prefer context deadline if present; otherwise use rwTimeout.
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
