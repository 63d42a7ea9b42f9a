package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	xhttp "OrderFlow/pkg/http"
	applogger "OrderFlow/pkg/logger"
)

func TestApp_RunContextStopsOnCancel(t *testing.T) {
	srv := xhttp.NewServer(nil, xhttp.WithPort(0))
	app := New(applogger.Nop(), srv, nil, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
