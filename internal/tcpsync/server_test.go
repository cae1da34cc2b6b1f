package tcpsync

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub/pkg/models"
)

func TestServerBroadcastsEvents(t *testing.T) {
	events := make(chan models.ProgressUpdate, 1)
	srv := New("", events, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	events <- models.ProgressUpdate{Type: "purchase", UserID: "u1", Course: "go-101", Timestamp: 1}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var got models.ProgressUpdate
	require.NoError(t, json.Unmarshal(line, &got))
	assert.Equal(t, "purchase", got.Type)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "go-101", got.Course)

	require.NoError(t, srv.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
	assert.Equal(t, 0, srv.ClientCount())
}

func TestServerDropsDisconnectedClients(t *testing.T) {
	srv := New("", make(chan models.ProgressUpdate), zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServerSurvivesClientThatNeverReads(t *testing.T) {
	events := make(chan models.ProgressUpdate)
	srv := New("", events, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	stalled, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer stalled.Close()
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// far more than the socket buffers plus the per-client queue can hold
	course := strings.Repeat("x", 16*1024)
	for i := 0; i < 2000; i++ {
		select {
		case events <- models.ProgressUpdate{Type: "purchase", UserID: "u1", Course: course}:
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not accepted: broadcast loop is blocked", i)
		}
	}
	assert.Eventually(t, func() bool { return srv.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond,
		"client that stopped reading should be disconnected")

	closed := make(chan error, 1)
	go func() { closed <- srv.Close() }()
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked")
	}
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestCloseBeforeServe(t *testing.T) {
	events := make(chan models.ProgressUpdate)
	srv := New("", events, zap.NewNop())
	require.NoError(t, srv.Close())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve kept running after Close")
	}

	_, err = net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	assert.Error(t, err, "listener should be closed")

	// broadcast loop never started, so nothing drains the channel
	select {
	case events <- models.ProgressUpdate{Type: "progress"}:
		t.Fatal("event consumed after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastLoopStopsOnClose(t *testing.T) {
	events := make(chan models.ProgressUpdate)
	srv := New("", events, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()

	select {
	case events <- models.ProgressUpdate{Type: "progress"}:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast loop not running")
	}
	require.NoError(t, srv.Close())

	assert.Eventually(t, func() bool {
		select {
		case events <- models.ProgressUpdate{Type: "progress"}:
			return false
		case <-time.After(20 * time.Millisecond):
			return true
		}
	}, 2*time.Second, 10*time.Millisecond)
}
