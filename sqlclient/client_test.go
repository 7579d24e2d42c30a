package sqlclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/tabdb/internal/sql/executor"
	"github.com/tuannm99/tabdb/internal/storage"
	"github.com/tuannm99/tabdb/server/tabdbwire"
)

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := tabdbwire.NewServer(executor.NewExecutor(storage.New(afero.NewMemMapFs(), nil), nil), nil)
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx, ln)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func TestClient_Exec(t *testing.T) {
	cli, err := Dial(startServer(t), time.Second)
	require.NoError(t, err)
	defer func() { _ = cli.Close() }()
	cli.SetRWTimeout(5 * time.Second)

	resp, err := cli.Exec("CREATE DATABASE d;")
	require.NoError(t, err)
	assert.Equal(t, "[OK]", resp)

	_, err = cli.Exec("CREATE TABLE t (name);")
	require.NoError(t, err)
	_, err = cli.Exec("INSERT INTO t VALUES ('Amy');")
	require.NoError(t, err)

	resp, err = cli.Exec("SELECT * FROM t;")
	require.NoError(t, err)
	assert.Equal(t, "[OK]\nid\tname\n1\tAmy\n", resp)

	resp, err = cli.Exec("DROP TABLE nope;")
	require.NoError(t, err)
	assert.True(t, IsError(resp), resp)
}

func TestClient_ContextDeadline(t *testing.T) {
	a, b := net.Pipe()
	defer func() { _ = b.Close() }()
	cli := NewClient(a)
	defer func() { _ = cli.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// nobody reads the other end
	_, err := cli.ExecContext(ctx, "USE d;")
	require.Error(t, err)
}

func TestClient_Nil(t *testing.T) {
	var c *Client
	_, err := c.Exec("USE d;")
	require.Error(t, err)
	assert.NoError(t, c.Close())
}
