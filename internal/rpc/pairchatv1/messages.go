package pairchatv1

import (
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/presence"
)

type EnsureLogRequest struct {
	ConversationID string `json:"conversationId"`
}

type EnsureLogResponse struct{}

type AppendRequest struct {
	ConversationID string               `json:"conversationId"`
	Message        conversation.Message `json:"message"`
}

type AppendResponse struct {
	Message conversation.Message `json:"message"`
}

type GetLogRequest struct {
	ConversationID string `json:"conversationId"`
}

type GetLogResponse struct {
	Messages []conversation.Message `json:"messages"`
}

type WatchLogRequest struct {
	ConversationID string `json:"conversationId"`
}

// LogSnapshot is the whole log of a conversation after a change.
type LogSnapshot struct {
	ConversationID string                 `json:"conversationId"`
	Messages       []conversation.Message `json:"messages"`
}

// SetTypingRequest writes the caller's own flag.
type SetTypingRequest struct {
	ConversationID string `json:"conversationId"`
	Typing         bool   `json:"typing"`
}

type SetTypingResponse struct{}

type GetTypingRequest struct {
	ConversationID string `json:"conversationId"`
}

type GetTypingResponse struct {
	State conversation.TypingState `json:"state"`
}

type WatchTypingRequest struct {
	ConversationID string `json:"conversationId"`
}

// TypingSnapshot is the whole typing document of a conversation.
type TypingSnapshot struct {
	ConversationID string                   `json:"conversationId"`
	State          conversation.TypingState `json:"state"`
}

// Contact is a profile together with its presence.
type Contact struct {
	Profile  conversation.Profile `json:"profile"`
	Presence presence.Status      `json:"presence"`
}

type ListContactsRequest struct {
	Query string `json:"query,omitempty"`
}

type ListContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

// GetProfileRequest reads one profile; an empty id means the caller.
type GetProfileRequest struct {
	ParticipantID string `json:"participantId,omitempty"`
}

type GetProfileResponse struct {
	Contact Contact `json:"contact"`
}

type SetProfileImageRequest struct {
	URL string `json:"url"`
}

type SetProfileImageResponse struct {
	Profile conversation.Profile `json:"profile"`
}

type AttachRequest struct{}

// WatchPresenceRequest filters presence events; no ids means everyone.
type WatchPresenceRequest struct {
	ParticipantIDs []string `json:"participantIds,omitempty"`
}

type PresenceEvent struct {
	EventID string          `json:"eventId"`
	Status  presence.Status `json:"status"`
}

type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type RegisterResponse struct {
	Profile conversation.Profile `json:"profile"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string               `json:"token"`
	Profile conversation.Profile `json:"profile"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	State         string `json:"state"`
	StatusMessage string `json:"statusMessage,omitempty"`
	UptimeMs      int64  `json:"uptimeMs"`
	LogCount      int64  `json:"logCount"`
	MessageCount  int64  `json:"messageCount"`
	ProfileCount  int64  `json:"profileCount"`
	Connected     int    `json:"connected"`
	StorageURL    string `json:"storageUrl"`
}
