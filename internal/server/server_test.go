package server_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumauth/internal/server"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("serves until context is cancelled and runs hooks", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		var order []string
		done := make(chan error, 1)
		go func() {
			done <- server.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "ok")
			}),
				server.WithListener(ln),
				server.WithShutdownHook(
					func(context.Context) error { order = append(order, "db"); return nil },
					func(context.Context) error { order = append(order, "redis"); return nil },
				),
			)
		}()

		resp, err := http.Get("http://" + ln.Addr().String())
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.Equal(t, "ok", string(body))

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
		require.Equal(t, []string{"db", "redis"}, order)
	})

	t.Run("hook errors are joined", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		boom := errors.New("boom")
		calledSecond := false
		err = server.Run(ctx, http.NotFoundHandler(),
			server.WithListener(ln),
			server.WithShutdownHook(
				func(context.Context) error { return boom },
				func(context.Context) error { calledSecond = true; return nil },
			),
		)
		require.ErrorIs(t, err, server.ErrShutdown)
		require.ErrorIs(t, err, boom)
		require.True(t, calledSecond)
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()

		err := server.Run(context.Background(), http.NotFoundHandler(), server.WithAddress("256.0.0.1:0"))
		require.ErrorIs(t, err, server.ErrListen)
	})
}
