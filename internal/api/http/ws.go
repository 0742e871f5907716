package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sourpow/tbucks-server/internal/api/http/middleware"
	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
	"github.com/sourpow/tbucks-server/internal/realtime"
	"github.com/sourpow/tbucks-server/internal/unlock"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// clientMessage is one inbound websocket frame.
type clientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic,omitempty"`
	Key    string `json:"key,omitempty"`
}

// WSHandler upgrades authenticated clients to a realtime connection. A
// client subscribes to topics, receives the current snapshot right away
// and a fresh one after every change. Keystrokes are streamed to a
// per-connection detector for the hidden admin unlock.
type WSHandler struct {
	hub          *realtime.Hub
	store        StoreService
	orders       OrderService
	users        UserService
	unlockPhrase string
	logger       *logger.Logger
	upgrader     websocket.Upgrader
}

func NewWSHandler(
	hub *realtime.Hub,
	store StoreService,
	orders OrderService,
	users UserService,
	unlockPhrase string,
	logger *logger.Logger,
) *WSHandler {
	return &WSHandler{
		hub:          hub,
		store:        store,
		orders:       orders,
		users:        users,
		unlockPhrase: unlockPhrase,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err.Error())
		return
	}

	sub := h.hub.NewSubscriber()
	replies := make(chan model.Event, 8)
	done := make(chan struct{})

	go h.writePump(conn, sub, replies, done)

	h.readPump(r.Context(), conn, identity, sub, replies)

	sub.Close()
	close(done)
	conn.Close()
}

// writePump is the single writer for the connection. It forwards hub
// events and direct replies, and keeps the connection alive with pings.
func (h *WSHandler) writePump(conn *websocket.Conn, sub *realtime.Subscriber, replies <-chan model.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				// Closed on teardown or evicted as a slow consumer.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				conn.Close()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				conn.Close()
				return
			}
		case event := <-replies:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

func (h *WSHandler) readPump(ctx context.Context, conn *websocket.Conn, identity model.Identity, sub *realtime.Subscriber, replies chan<- model.Event) {
	detector := unlock.NewDetector(h.unlockPhrase)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Action {
		case "subscribe":
			h.subscribe(ctx, identity, sub, replies, msg.Topic)
		case "unsubscribe":
			sub.Leave(msg.Topic)
		case "keystroke":
			if detector.Feed(msg.Key, time.Now()) {
				reply(replies, model.Event{Type: model.EventUnlock})
			}
		default:
			reply(replies, model.Event{Type: model.EventError, Data: "unknown action"})
		}
	}
}

// subscribe authorizes the topic, joins it and pushes the current
// snapshot so the client renders without waiting for the next change.
func (h *WSHandler) subscribe(ctx context.Context, identity model.Identity, sub *realtime.Subscriber, replies chan<- model.Event, topic string) {
	if !topicAllowed(identity, topic) {
		reply(replies, model.Event{Topic: topic, Type: model.EventError, Data: "forbidden"})
		return
	}

	data, err := h.snapshot(ctx, topic)
	if err != nil {
		h.logger.Error("failed to load subscribe snapshot", "topic", topic, "error", err.Error())
		reply(replies, model.Event{Topic: topic, Type: model.EventError, Data: "failed to load snapshot"})
		return
	}

	sub.Join(topic)
	reply(replies, model.Event{Topic: topic, Type: model.EventSnapshot, Data: data})
}

// reply never blocks the read loop; if the writer has stopped draining,
// the dropped frame is recovered by the snapshot on the next change.
func reply(replies chan<- model.Event, event model.Event) {
	select {
	case replies <- event:
	default:
	}
}

// topicAllowed enforces topic visibility: the catalog is public to any
// authenticated user, full collections are admin only, and per-user
// topics are visible to their owner or an admin.
func topicAllowed(identity model.Identity, topic string) bool {
	switch topic {
	case model.TopicItems:
		return true
	case model.TopicOrders, model.TopicUsers:
		return identity.IsAdmin
	}

	base, id, ok := splitTopic(topic)
	if !ok {
		return false
	}
	if base != model.TopicOrders && base != model.TopicUsers {
		return false
	}
	return identity.IsAdmin || id == identity.UserID
}

func (h *WSHandler) snapshot(ctx context.Context, topic string) (any, error) {
	switch topic {
	case model.TopicItems:
		return h.store.ListItems(ctx)
	case model.TopicOrders:
		return h.orders.ListAll(ctx)
	case model.TopicUsers:
		return h.users.List(ctx)
	}

	base, id, ok := splitTopic(topic)
	if !ok {
		return nil, model.ErrNotFound
	}
	switch base {
	case model.TopicOrders:
		return h.orders.ListForUser(ctx, id)
	case model.TopicUsers:
		return h.users.Get(ctx, id)
	}
	return nil, model.ErrNotFound
}

func splitTopic(topic string) (base string, id uuid.UUID, ok bool) {
	parts := strings.SplitN(topic, "/", 2)
	if len(parts) != 2 {
		return "", uuid.Nil, false
	}
	parsed, err := uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, false
	}
	return parts[0], parsed, true
}
