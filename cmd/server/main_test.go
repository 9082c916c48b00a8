package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/audit"
)

func TestServeDrainsEventsFromInFlightRequests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := audit.NewPublisher(audit.NewInMemoryStore(10))
	worker := audit.NewWorker(sink, 10, logger)

	started := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{
		ReadHeaderTimeout: time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(started)
			<-release
			_ = worker.Emit(r.Context(), audit.Event{Action: audit.ActionUserDeleted, UserID: "user-1"})
			w.WriteHeader(http.StatusFound)
		}),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, srv, ln, worker, logger)
	}()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	responses := make(chan int, 1)
	go func() {
		resp, err := client.Get("http://" + ln.Addr().String() + "/users/user-1")
		if err != nil {
			responses <- 0
			return
		}
		_ = resp.Body.Close()
		responses <- resp.StatusCode
	}()

	<-started
	cancel()
	// Let shutdown begin while the request is still in flight.
	time.Sleep(50 * time.Millisecond)
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, http.StatusFound, <-responses)

	events, err := sink.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUserDeleted, events[0].Action)
}
