package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoDeviceToken means the user has no registered device to push to.
var ErrNoDeviceToken = errors.New("no FCM token found")

// SendInput is a push request addressed by user rather than device.
type SendInput struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Data   map[string]string
}

// SendResult carries the provider's raw response for the forwarder surface.
type SendResult struct {
	FCMResult map[string]any
}

// Pusher relays one message to a device token. Implemented by the FCM client.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) (map[string]any, error)
}

// Service resolves the recipient's device token and forwards the message.
// Best effort: one attempt, no retry owed to the caller.
type Service interface {
	Send(ctx context.Context, input SendInput) (*SendResult, error)
}
