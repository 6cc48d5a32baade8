// Package notifications bundles the Temporal activities that relay push
// messages through the notifications service.
package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/societyos/laundry-api/internal/domains/notifications/ports"
	notifworkflows "github.com/societyos/laundry-api/internal/durable/temporal/workflows/notifications"
)

// Activities groups activities that operate on the notifications context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the notifications service into the activity bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// Forward performs the single FCM relay attempt for a send workflow.
func (a *Activities) Forward(ctx context.Context, input notifworkflows.SendWorkflowInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("forward activity not initialized", "userId", input.UserID.String())
		return errors.New("forward activity not initialized")
	}
	logger.Info("Forward activity started", "userId", input.UserID.String())
	_, err := a.service.Send(ctx, ports.SendInput{
		UserID: input.UserID,
		Title:  input.Title,
		Body:   input.Body,
		Data:   input.Data,
	})
	if err != nil {
		logger.Error("Forward activity failed", "userId", input.UserID.String(), "error", err)
		return err
	}
	logger.Info("Forward activity completed", "userId", input.UserID.String())
	return nil
}
