// Package realtime bridges mutation events between API instances over NATS.
// Services publish after commit; each instance's socket hub subscribes and
// fans out to locally connected clients.
package realtime

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/model"
	natsclient "github.com/Neeraj110/chatApp/internal/nats"
	"github.com/Neeraj110/chatApp/pkg/logger"
	"github.com/Neeraj110/chatApp/pkg/metrics"
)

const (
	// RoomSubjectPrefix prefixes per-room subjects; the room name follows.
	RoomSubjectPrefix = "chat.room."
	// RoomSubjectWildcard subscribes to every room subject.
	RoomSubjectWildcard = "chat.room.>"
	// AllSubject carries events addressed to every connected client.
	AllSubject = "chat.all"
)

// Envelope is the wire frame carried on NATS subjects. Room is empty on the
// broadcast subject.
type Envelope struct {
	Room  string          `json:"room,omitempty"`
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Broadcaster publishes room events to NATS. Publishing is fire-and-forget; a
// failed publish is logged, never surfaced to the caller.
type Broadcaster struct {
	nc     *natsclient.Client
	logger *logger.Logger
}

// NewBroadcaster returns a broadcaster over an established NATS connection.
func NewBroadcaster(nc *natsclient.Client, log *logger.Logger) *Broadcaster {
	return &Broadcaster{nc: nc, logger: log}
}

// Emit publishes the event to one room's subject.
func (b *Broadcaster) Emit(room string, event model.EventType, data any) {
	b.publish(RoomSubjectPrefix+room, Envelope{Room: room, Event: event, Data: marshal(data)})
	metrics.RecordEvent(string(event))
}

// EmitAll publishes the event to the broadcast subject.
func (b *Broadcaster) EmitAll(event model.EventType, data any) {
	b.publish(AllSubject, Envelope{Event: event, Data: marshal(data)})
	metrics.RecordEvent(string(event))
}

func (b *Broadcaster) publish(subject string, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		b.logger.Error("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := b.nc.Conn().Publish(subject, payload); err != nil {
		b.logger.Error("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// Subscribe delivers every envelope published on the room and broadcast
// subjects to fn. The returned function unsubscribes.
func (b *Broadcaster) Subscribe(fn func(Envelope)) (func(), error) {
	handler := func(msg *nats.Msg) {
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			b.logger.Warn("dropping malformed event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		fn(env)
	}

	roomSub, err := b.nc.Conn().Subscribe(RoomSubjectWildcard, handler)
	if err != nil {
		return nil, err
	}
	allSub, err := b.nc.Conn().Subscribe(AllSubject, handler)
	if err != nil {
		roomSub.Unsubscribe()
		return nil, err
	}

	return func() {
		roomSub.Unsubscribe()
		allSub.Unsubscribe()
	}, nil
}

func marshal(data any) json.RawMessage {
	raw, err := json.Marshal(data)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}
