package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnbBack/internal/models"
)

// dialHub serves a socket that subscribes to ad 7 with the given fallback document.
func dialHub(t *testing.T, hub *AvailabilityHub, fallback models.AvailabilityResponse) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.subscribe(availabilitySub{adID: 7, conn: conn, fallback: fallback})
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestHubLoadsFirstDocumentAfterRegistering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hub *AvailabilityHub
	registered := make(chan bool, 1)
	hub = NewAvailabilityHub(func(_ context.Context, adID int) (models.AvailabilityResponse, error) {
		// runs on the hub goroutine, so subs is safe to read here
		registered <- len(hub.subs[adID]) == 1
		return models.AvailabilityResponse{AdID: adID, NotAvailableDays: []string{"2030-01-01"}}, nil
	}, log.New(io.Discard, "", 0))
	go hub.Run(ctx)

	stale := models.AvailabilityResponse{AdID: 7, NotAvailableDays: []string{}}
	conn := dialHub(t, hub, stale)

	var doc models.AvailabilityResponse
	require.NoError(t, conn.ReadJSON(&doc))
	assert.Equal(t, []string{"2030-01-01"}, doc.NotAvailableDays)
	assert.True(t, <-registered)

	hub.PublishAvailability(7, []string{"2030-01-01", "2030-01-02"})
	require.NoError(t, conn.ReadJSON(&doc))
	assert.Equal(t, []string{"2030-01-01", "2030-01-02"}, doc.NotAvailableDays)
}

func TestHubFallsBackWhenLoadFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewAvailabilityHub(func(context.Context, int) (models.AvailabilityResponse, error) {
		return models.AvailabilityResponse{}, errors.New("db down")
	}, log.New(io.Discard, "", 0))
	go hub.Run(ctx)

	conn := dialHub(t, hub, models.AvailabilityResponse{AdID: 7, NotAvailableDays: []string{"2030-02-01"}})

	var doc models.AvailabilityResponse
	require.NoError(t, conn.ReadJSON(&doc))
	assert.Equal(t, 7, doc.AdID)
	assert.Equal(t, []string{"2030-02-01"}, doc.NotAvailableDays)
}
