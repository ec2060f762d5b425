package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/catinput/apiclient"
	"github.com/Alia5/catinput/apitypes"
)

// backend is a websocket endpoint that writes frames and records what it
// receives.
func backend(t *testing.T, frames []string, received chan<- string) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if received != nil {
				received <- string(data)
			}
		}
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestClient_StreamDecodesAndSkipsBadFrames(t *testing.T) {
	addr := backend(t, []string{
		`{"kind":"MousePress","value":"Left"}`,
		`garbage`,
		`{"kind":"MouseMove","value":{"x":1.5,"y":-2}}`,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := apiclient.Dial(ctx, addr, &apiclient.Config{})
	require.NoError(t, err)
	defer c.Close()

	var got []apitypes.DeviceEvent
	err = c.Stream(ctx, func(ev apitypes.DeviceEvent) error {
		got = append(got, ev)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 2)
	assert.Equal(t, apitypes.KindMousePress, got[0].Kind)
	assert.Equal(t, "Left", got[0].StringValue())
	pos, ok := got[1].PositionValue()
	require.True(t, ok)
	assert.Equal(t, -2.0, pos.Y)
	assert.False(t, c.Connected(), "connection is dropped when Stream returns")
}

func TestClient_Send(t *testing.T) {
	received := make(chan string, 1)
	addr := backend(t, nil, received)

	c := apiclient.New(addr, nil)
	assert.ErrorIs(t, c.Send(context.Background(), apitypes.Message{Kind: "x"}), apiclient.ErrNotConnected)

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Connect(context.Background()), "connect is idempotent")
	defer c.Close()

	require.NoError(t, c.Send(context.Background(), apitypes.Message{Kind: "SetMode", Value: "keyboard"}))
	select {
	case msg := <-received:
		assert.JSONEq(t, `{"kind":"SetMode","value":"keyboard"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("backend did not receive message")
	}
}

func TestClient_StreamWithoutConnection(t *testing.T) {
	c := apiclient.New("127.0.0.1:1", nil)
	err := c.Stream(context.Background(), func(apitypes.DeviceEvent) error { return nil })
	assert.ErrorIs(t, err, apiclient.ErrNotConnected)
}

func TestClient_CloseEndsStream(t *testing.T) {
	addr := backend(t, nil, nil)
	c, err := apiclient.Dial(context.Background(), addr, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- c.Stream(context.Background(), func(apitypes.DeviceEvent) error { return nil })
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after Close")
	}
	assert.NoError(t, c.Close(), "second close is a no-op")
}

func TestClient_DialFailure(t *testing.T) {
	_, err := apiclient.Dial(context.Background(), "127.0.0.1:1", &apiclient.Config{DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial ws://127.0.0.1:1/")
}

func TestClient_URL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:9527/", apiclient.New(apiclient.DefaultAddr, nil).URL())
	assert.Equal(t, "ws://host:1/events", apiclient.New("host:1", &apiclient.Config{Path: "/events"}).URL())
}
