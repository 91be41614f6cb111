package events

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"tastytreasures/rdx"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	TypeRecipeCreated  = "recipe.created"
	TypeRecipeUnlocked = "recipe.unlocked"
	TypeRecipeReacted  = "recipe.reacted"
)

type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	RecipeID string    `json:"recipeId"`
	Email    string    `json:"email,omitempty"`
	At       time.Time `json:"at"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Hub fans recipe activity out to connected websocket clients and, when Redis
// is configured, to the "activity" pub/sub channel.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// Publish stamps and broadcasts an event. Dead connections are dropped.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	evt.ID = uuid.NewString()
	evt.At = time.Now().UTC()

	h.mu.Lock()
	for conn := range h.conns {
		if err := conn.WriteJSON(evt); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
	h.mu.Unlock()

	if rdx.Conn != nil {
		if payload, err := json.Marshal(evt); err == nil {
			rdx.Conn.Publish(context.Background(), "activity", payload)
		}
	}
	if evt.Type == TypeRecipeUnlocked {
		rdx.BumpTrending(context.Background(), evt.RecipeID)
	}
}

// HandleWS upgrades the request and keeps the connection registered until the
// peer goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
