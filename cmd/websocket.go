package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"bnbBack/internal/handlers"
	"bnbBack/internal/models"
)

const (
	readLimit     = 512
	readDeadline  = 60 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 25 * time.Second
	loadTimeout   = 5 * time.Second
)

type availabilitySub struct {
	adID     int
	conn     *websocket.Conn
	fallback models.AvailabilityResponse
}

// AvailabilityLoader reads the current availability document of an ad.
type AvailabilityLoader func(ctx context.Context, adID int) (models.AvailabilityResponse, error)

// AvailabilityHub fans availability changes out to the sockets watching an ad.
// Only the Run goroutine touches subs. A new subscriber's first document is loaded
// after it joins subs, so every change committed later reaches it as a publish.
type AvailabilityHub struct {
	load       AvailabilityLoader
	subs       map[int]map[*websocket.Conn]struct{}
	register   chan availabilitySub
	unregister chan availabilitySub
	publish    chan models.AvailabilityResponse
	done       chan struct{}
	errorLog   *log.Logger
}

func NewAvailabilityHub(load AvailabilityLoader, errorLog *log.Logger) *AvailabilityHub {
	return &AvailabilityHub{
		load:       load,
		subs:       make(map[int]map[*websocket.Conn]struct{}),
		register:   make(chan availabilitySub),
		unregister: make(chan availabilitySub),
		publish:    make(chan models.AvailabilityResponse, 64),
		done:       make(chan struct{}),
		errorLog:   errorLog,
	}
}

func (h *AvailabilityHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.subs {
				for conn := range conns {
					_ = writeClose(conn, websocket.CloseGoingAway, "server shutdown")
					_ = conn.Close()
				}
			}
			return

		case s := <-h.register:
			if h.subs[s.adID] == nil {
				h.subs[s.adID] = make(map[*websocket.Conn]struct{})
			}
			h.subs[s.adID][s.conn] = struct{}{}
			h.send(s.conn, h.current(ctx, s))

		case s := <-h.unregister:
			if conns, ok := h.subs[s.adID]; ok {
				if _, ok := conns[s.conn]; ok {
					delete(conns, s.conn)
					_ = s.conn.Close()
				}
				if len(conns) == 0 {
					delete(h.subs, s.adID)
				}
			}

		case doc := <-h.publish:
			for conn := range h.subs[doc.AdID] {
				h.send(conn, doc)
			}
		}
	}
}

func (h *AvailabilityHub) current(ctx context.Context, s availabilitySub) models.AvailabilityResponse {
	if h.load == nil {
		return s.fallback
	}
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	doc, err := h.load(ctx, s.adID)
	if err != nil {
		h.errorLog.Printf("availability load for ad=%d: %v", s.adID, err)
		return s.fallback
	}
	return doc
}

// send writes doc to conn and drops the subscription when the write fails.
func (h *AvailabilityHub) send(conn *websocket.Conn, doc models.AvailabilityResponse) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(doc); err != nil {
		h.errorLog.Printf("availability push to ad=%d: %v", doc.AdID, err)
		_ = conn.Close()
		delete(h.subs[doc.AdID], conn)
	}
}

// PublishAvailability never blocks the caller; updates are dropped when the hub is
// stopped or saturated.
func (h *AvailabilityHub) PublishAvailability(adID int, days []string) {
	doc := models.AvailabilityResponse{AdID: adID, NotAvailableDays: days}
	select {
	case h.publish <- doc:
	case <-h.done:
	default:
		h.errorLog.Printf("availability update for ad=%d dropped", adID)
	}
}

func (h *AvailabilityHub) subscribe(s availabilitySub) bool {
	select {
	case h.register <- s:
		return true
	case <-h.done:
		return false
	}
}

func (h *AvailabilityHub) unsubscribe(s availabilitySub) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// availabilitySocket sends the current availability of an ad on connect and every
// change afterwards. Client frames are read only to notice disconnects.
func (app *application) availabilitySocket(w http.ResponseWriter, r *http.Request) {
	adID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || adID < 1 {
		app.clientError(w, http.StatusBadRequest, "invalid ad id")
		return
	}
	current, err := app.adService.NotAvailableDays(r.Context(), adID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("websocket upgrade: %v", err)
		return
	}
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	sub := availabilitySub{adID: adID, conn: conn, fallback: current}
	if !app.hub.subscribe(sub) {
		_ = writeClose(conn, websocket.CloseGoingAway, "server shutdown")
		_ = conn.Close()
		return
	}

	stop := make(chan struct{})
	go pingLoop(conn, stop)
	go func() {
		defer func() {
			close(stop)
			app.hub.unsubscribe(sub)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
