// Package application implements the notification forwarder: resolve the
// recipient's device token, relay the message, report the provider result.
package application

import (
	"context"
	"fmt"
	"log/slog"

	identityports "github.com/societyos/laundry-api/internal/domains/identity/ports"
	"github.com/societyos/laundry-api/internal/domains/notifications/ports"
)

var _ ports.Service = (*Service)(nil)

// Service implements the notifications port.
type Service struct {
	identity identityports.Service
	pusher   ports.Pusher
	logger   *slog.Logger
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService wires the notifications application service.
func NewService(identity identityports.Service, pusher ports.Pusher, opts ...Option) *Service {
	s := &Service{identity: identity, pusher: pusher, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Send forwards one message to the user's most recent device. A missing
// token fails with ErrNoDeviceToken; a provider failure is returned as-is.
// Exactly one delivery attempt is made.
func (s *Service) Send(ctx context.Context, input ports.SendInput) (*ports.SendResult, error) {
	token, err := s.identity.DeviceToken(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("%w: user %s", ports.ErrNoDeviceToken, input.UserID)
	}
	result, err := s.pusher.Push(ctx, token, input.Title, input.Body, input.Data)
	if err != nil {
		return nil, fmt.Errorf("push to user %s: %w", input.UserID, err)
	}
	s.logger.InfoContext(ctx, "notification forwarded",
		slog.String("user_id", input.UserID.String()), slog.String("title", input.Title))
	return &ports.SendResult{FCMResult: result}, nil
}
