package apiclient_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/catinput/apiclient"
	"github.com/Alia5/catinput/apitypes"
)

func TestLineTransport_Stream(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	input := strings.Join([]string{
		`{"kind":"KeyboardPress","value":"KeyA"}`,
		``,
		`{"kind":`,
		`  {"kind":"KeyboardRelease","value":"KeyA"}  `,
	}, "\n")

	lt := apiclient.NewLineTransport(strings.NewReader(input), nil, logger)
	var kinds []apitypes.Kind
	err := lt.Stream(context.Background(), func(ev apitypes.DeviceEvent) error {
		kinds = append(kinds, ev.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []apitypes.Kind{apitypes.KindKeyboardPress, apitypes.KindKeyboardRelease}, kinds)
	assert.Contains(t, logs.String(), "skipping malformed event line")
	assert.Contains(t, logs.String(), "line=3")
}

func TestLineTransport_EmitErrorStops(t *testing.T) {
	input := `{"kind":"MousePress","value":"Left"}` + "\n" + `{"kind":"MousePress","value":"Right"}`
	lt := apiclient.NewLineTransport(strings.NewReader(input), nil, nil)

	stopErr := errors.New("stop")
	calls := 0
	err := lt.Stream(context.Background(), func(apitypes.DeviceEvent) error {
		calls++
		return stopErr
	})
	assert.ErrorIs(t, err, stopErr)
	assert.Equal(t, 1, calls)
}

func TestLineTransport_CancelWhileBlocked(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	lt := apiclient.NewLineTransport(r, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- lt.Stream(ctx, func(apitypes.DeviceEvent) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("stream did not return after cancel")
	}
}

func TestLineTransport_Send(t *testing.T) {
	var out bytes.Buffer
	lt := apiclient.NewLineTransport(strings.NewReader(""), &out, nil)
	require.NoError(t, lt.Send(context.Background(), apitypes.Message{Kind: "SetMode", Value: "standard"}))
	assert.Equal(t, `{"kind":"SetMode","value":"standard"}`+"\n", out.String())

	silent := apiclient.NewLineTransport(strings.NewReader(""), nil, nil)
	assert.NoError(t, silent.Send(context.Background(), apitypes.Message{Kind: "x"}))
}

func TestScanLines(t *testing.T) {
	var got []string
	var nums []int
	err := apiclient.ScanLines(context.Background(), strings.NewReader("a\n\n  b  \nc"), func(n int, line []byte) error {
		nums = append(nums, n)
		got = append(got, string(line))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []int{1, 3, 4}, nums)
}

func TestScanLines_CancelWhileIdle(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- apiclient.ScanLines(ctx, r, func(int, []byte) error { return nil })
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("ScanLines did not return after cancel")
	}
}
