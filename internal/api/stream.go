// Websocket state stream for renderers. Each client gets the same frame
// the /state endpoint serves, pushed on a fixed cadence.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/campus-city/internal/engine"
)

const (
	maxStreamConns = 8
	streamInterval = 500 * time.Millisecond
	writeTimeout   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	// The frame is read-only world state; origin policy stays with CORS
	// on the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamConns counts live websocket clients.
var streamConns int32

// Frame is the push payload for renderers.
type Frame struct {
	Env            engine.Environment                `json:"environment"`
	Settings       engine.Settings                   `json:"settings"`
	Scenario       engine.Scenario                   `json:"scenario"`
	Buildings      any                               `json:"buildings"`
	People         any                               `json:"people"`
	Departments    any                               `json:"departments"`
	News           []engine.NewsItem                 `json:"news"`
	Flashes        []engine.FlashEvent               `json:"flashes"`
	Interactions   []engine.InteractionEvent         `json:"interactions"`
	BuildingEvents map[string][]engine.BuildingEvent `json:"buildingEvents"`
	Metrics        engine.Metrics                    `json:"metrics"`
}

// buildFrame projects the state into the renderer payload. Must run
// under the store lock.
func buildFrame(st *engine.State) Frame {
	return Frame{
		Env:            st.Env,
		Settings:       st.Settings,
		Scenario:       st.Scenario,
		Buildings:      st.Buildings,
		People:         st.People,
		Departments:    st.Departments,
		News:           st.News,
		Flashes:        st.Flashes,
		Interactions:   st.Interactions,
		BuildingEvents: st.BuildingEvents,
		Metrics:        st.Metrics,
	}
}

// handleStream upgrades to a websocket and pushes frames until the
// client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&streamConns) >= maxStreamConns {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	atomic.AddInt32(&streamConns, 1)
	slog.Info("stream client connected", "remote", conn.RemoteAddr())

	defer func() {
		conn.Close()
		atomic.AddInt32(&streamConns, -1)
		slog.Info("stream client disconnected", "remote", conn.RemoteAddr())
	}()

	// Drain client messages so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// Marshal under the lock; the frame holds live pointers.
			var raw []byte
			s.Store.View(func(st *engine.State) {
				raw, _ = json.Marshal(buildFrame(st))
			})
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
	}
}
