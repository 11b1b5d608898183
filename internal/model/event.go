package model

// EventType names a realtime notification emitted after a committed mutation.
type EventType string

const (
	EventNewMessage          EventType = "newMessage"
	EventNewConversation     EventType = "newConversation"
	EventConversationDeleted EventType = "conversationDeleted"
	EventNewGroup            EventType = "newGroup"
	EventGroupUpdated        EventType = "groupUpdated"
	EventGroupDeleted        EventType = "groupDeleted"
	EventAddedToGroup        EventType = "addedToGroup"
	EventRemovedFromGroup    EventType = "removedFromGroup"
	EventOnlineUsers         EventType = "onlineUsers"
)

// Event is the frame delivered to websocket clients.
type Event struct {
	Event EventType `json:"event"`
	Data  any       `json:"data"`
}

// ClientEventJoinConversation and friends are the frames clients send upward.
const (
	ClientEventUserJoin          = "user-join"
	ClientEventJoinConversation  = "joinConversation"
	ClientEventLeaveConversation = "leaveConversation"
)

// ClientEvent is a frame received from a websocket client.
type ClientEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}
