package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/catinput/apiclient"
	"github.com/Alia5/catinput/apitypes"
	"github.com/Alia5/catinput/internal/log"
	"github.com/Alia5/catinput/internal/server/feed"
	itesting "github.com/Alia5/catinput/internal/testing"
)

func TestFeed_MissingInput(t *testing.T) {
	f := &Feed{Input: filepath.Join(t.TempDir(), "nope.jsonl")}
	assert.ErrorContains(t, f.StartFeed(context.Background(), slog.Default(), log.NewRaw(nil)), "open input")
}

func TestFeed_NoClientCancelled(t *testing.T) {
	f := &Feed{
		ServerConfig:  feed.ServerConfig{Addr: "127.0.0.1:0"},
		WaitForClient: true,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, f.StartFeed(ctx, slog.Default(), log.NewRaw(nil)))
}

func TestFeed_ForwardsFileToClient(t *testing.T) {
	input := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(input, []byte(
		`{"kind":"KeyboardPress","value":"KeyC"}`+"\n"+
			`{"kind":"KeyboardRelease","value":"KeyC"}`+"\n"), 0o644))

	// Reserve a port for the feed server to bind.
	probe := feed.New(feed.ServerConfig{Addr: "127.0.0.1:0"}, slog.Default(), nil)
	go func() { _ = probe.ListenAndServe() }()
	<-probe.Ready()
	addr := probe.Addr()
	require.NoError(t, probe.Close())

	f := &Feed{
		ServerConfig:  feed.ServerConfig{Addr: addr},
		Input:         input,
		WaitForClient: true,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.StartFeed(ctx, slog.Default(), log.NewRaw(nil)) }()

	var client *apiclient.Client
	require.Eventually(t, func() bool {
		c, err := apiclient.Dial(ctx, addr, &apiclient.Config{PingInterval: 0})
		if err != nil {
			return false
		}
		client = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer client.Close()

	var got []string
	err := client.Stream(ctx, func(ev apitypes.DeviceEvent) error {
		got = append(got, string(ev.Kind)+":"+ev.StringValue())
		return nil
	})
	assert.NoError(t, err, "server closes the socket normally after the input ends")
	assert.Equal(t, []string{"KeyboardPress:KeyC", "KeyboardRelease:KeyC"}, got)
	assert.NoError(t, <-done)
}

func TestFeed_CancelWhileReadingIdleInput(t *testing.T) {
	srv := itesting.StartFeedServer(t)
	addr := srv.Addr()
	require.NoError(t, srv.Close())

	r, w := io.Pipe()
	defer w.Close()
	f := &Feed{ServerConfig: feed.ServerConfig{Addr: addr}, In: r}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.StartFeed(ctx, slog.Default(), log.NewRaw(nil)) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}
