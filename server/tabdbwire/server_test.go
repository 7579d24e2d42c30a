package tabdbwire

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
)

func newTestServer() *Server {
	ex := executor.NewExecutor(storage.New(afero.NewMemMapFs(), nil), nil)
	return NewServer(ex, nil)
}

func roundTrip(t *testing.T, conn net.Conn, id uint64, sql string) string {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, WriteFrame(conn, ExecuteRequest{ID: id, SQL: sql}))

	var resp ExecuteResponse
	require.NoError(t, ReadFrame(conn, &resp))
	assert.Equal(t, id, resp.ID)
	return resp.Response
}

func TestServeConn(t *testing.T) {
	s := newTestServer()
	client, server := net.Pipe()
	defer func() { _ = client.Close() }()

	done := make(chan struct{})
	go func() {
		s.ServeConn(context.Background(), server)
		close(done)
	}()

	assert.Equal(t, "[OK]", roundTrip(t, client, 1, "CREATE DATABASE d;"))
	assert.Equal(t, "[OK]", roundTrip(t, client, 2, "CREATE TABLE t (name);"))
	assert.Equal(t, "[OK]", roundTrip(t, client, 3, "INSERT INTO t VALUES ('Amy');"))
	assert.Equal(t, "[OK]\nid\tname\n1\tAmy\n", roundTrip(t, client, 4, "SELECT * FROM t;"))
	assert.Contains(t, roundTrip(t, client, 5, "SELECT * FROM nope;"), "[ERROR]: ")

	require.NoError(t, client.Close())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ServeConn did not return after client close")
	}
}

func TestServeConn_SessionsAreIsolated(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, aSrv := net.Pipe()
	b, bSrv := net.Pipe()
	go s.ServeConn(ctx, aSrv)
	go s.ServeConn(ctx, bSrv)

	assert.Equal(t, "[OK]", roundTrip(t, a, 1, "CREATE DATABASE d;"))
	assert.Equal(t, "[OK]", roundTrip(t, a, 2, "CREATE TABLE t;"))
	assert.Contains(t, roundTrip(t, b, 1, "SELECT * FROM t;"), "No database selected")
	assert.Equal(t, "[OK]", roundTrip(t, b, 2, "USE d;"))
	assert.Equal(t, "[OK]\nid\n", roundTrip(t, b, 3, "SELECT * FROM t;"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newTestServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	assert.Equal(t, "[OK]", roundTrip(t, conn, 1, "CREATE DATABASE d;"))

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
