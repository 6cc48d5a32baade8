// Package push adapts the FCM client to the notifications Pusher port.
package push

import (
	"context"

	"github.com/societyos/laundry-api/internal/clients/http/fcm"
	"github.com/societyos/laundry-api/internal/domains/notifications/ports"
)

var _ ports.Pusher = (*FCM)(nil)

// FCM relays pushes through the FCM send API.
type FCM struct {
	client *fcm.Client
}

// NewFCM wires the adapter around an FCM client.
func NewFCM(client *fcm.Client) *FCM {
	return &FCM{client: client}
}

// Push sends one message to the given device token.
func (p *FCM) Push(ctx context.Context, token, title, body string, data map[string]string) (map[string]any, error) {
	return p.client.Send(ctx, fcm.Message{
		To:           token,
		Notification: fcm.Notification{Title: title, Body: body},
		Data:         data,
	})
}
