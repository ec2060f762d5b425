package testing

import (
	"log/slog"
	"testing"
	"time"

	"github.com/Alia5/catinput/internal/log"
	"github.com/Alia5/catinput/internal/server/feed"
)

// StartFeedServer starts a feed server on a free loopback port and stops it
// when the test ends.
func StartFeedServer(t *testing.T) *feed.Server {
	t.Helper()
	srv := feed.New(feed.ServerConfig{Addr: "127.0.0.1:0"}, slog.Default(), log.NewRaw(nil))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("feed server listen failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed server did not become ready")
	}

	t.Cleanup(func() {
		_ = srv.Close()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Error("feed server did not stop")
		}
	})
	return srv
}
