// Package ws maintains websocket connections and the room registry.
//
// A room is either a conversation id or a user id (the personal room every
// connection joins on authentication). The hub goroutine owns all membership
// state; other goroutines interact with it only through channels.
package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/internal/realtime"
	"github.com/Neeraj110/chatApp/pkg/logger"
	"github.com/Neeraj110/chatApp/pkg/metrics"
)

type membership struct {
	client *Client
	room   string
}

// EventSource delivers envelopes from the event bridge. *realtime.Broadcaster
// satisfies it.
type EventSource interface {
	Subscribe(fn func(realtime.Envelope)) (func(), error)
}

// Hub routes events arriving from the broadcaster to locally connected
// clients by room.
type Hub struct {
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	deliver    chan realtime.Envelope

	events EventSource
	logger *logger.Logger
}

// NewHub creates a hub wired to the broadcaster.
func NewHub(events EventSource, log *logger.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		deliver:    make(chan realtime.Envelope, 256),
		events:     events,
		logger:     log,
	}
}

// Run subscribes to the event bridge and processes hub traffic until ctx is
// cancelled. It must run in its own goroutine before clients connect.
func (h *Hub) Run(ctx context.Context) error {
	unsubscribe, err := h.events.Subscribe(func(env realtime.Envelope) {
		select {
		case h.deliver <- env:
		default:
			h.logger.Warn("dropping event, hub delivery queue full",
				zap.String("event", string(env.Event)), zap.String("room", env.Room))
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.addToRoom(c, c.userID)
			metrics.WSConnectionsActive.Inc()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				for room := range c.rooms {
					h.removeFromRoom(c, room)
				}
				close(c.send)
				metrics.WSConnectionsActive.Dec()
			}

		case m := <-h.join:
			if _, ok := h.clients[m.client]; ok {
				h.addToRoom(m.client, m.room)
			}

		case m := <-h.leave:
			h.removeFromRoom(m.client, m.room)

		case env := <-h.deliver:
			h.fanOut(env)
		}
	}
}

func (h *Hub) addToRoom(c *Client, room string) {
	if room == "" {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) removeFromRoom(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) fanOut(env realtime.Envelope) {
	frame, err := json.Marshal(model.Event{Event: env.Event, Data: env.Data})
	if err != nil {
		h.logger.Error("failed to marshal event frame", zap.Error(err))
		return
	}

	targets := h.clients
	if env.Room != "" {
		targets = h.rooms[env.Room]
	}
	for c := range targets {
		select {
		case c.send <- frame:
		default:
			// Slow consumer. Drop the connection rather than block the hub.
			delete(h.clients, c)
			for room := range c.rooms {
				h.removeFromRoom(c, room)
			}
			close(c.send)
			metrics.WSConnectionsActive.Dec()
		}
	}
}
