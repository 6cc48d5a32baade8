// Package notify bridges committed order transitions to push notifications.
// Both variants are best effort: the orders service already isolates them
// from the mutation path.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/client"

	notifports "github.com/societyos/laundry-api/internal/domains/notifications/ports"
	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
	notifworkflows "github.com/societyos/laundry-api/internal/durable/temporal/workflows/notifications"
)

var (
	_ ports.Notifier = (*InlineNotifier)(nil)
	_ ports.Notifier = (*TemporalNotifier)(nil)
)

// message builds the resident-facing text for one transition.
func message(change ports.StatusChange) (title, body string) {
	title = fmt.Sprintf("Order %s update", change.OrderNumber)
	switch change.To {
	case domain.StatusCountApprovalPending:
		body = "Your vendor has counted the items. Please review and approve."
	case domain.StatusOutForDelivery:
		body = "Your laundry is out for delivery."
	case domain.StatusDelivered:
		body = "Your laundry has been delivered."
	case domain.StatusCompleted:
		body = "Your order is complete. Thank you!"
	case domain.StatusCancelled:
		body = "Your order has been cancelled."
	default:
		body = fmt.Sprintf("Your order is now %s.", change.To)
	}
	if change.ServiceID != nil {
		body = fmt.Sprintf("Service %d: %s", *change.ServiceID, body)
	}
	return title, body
}

func data(change ports.StatusChange) map[string]string {
	payload := map[string]string{
		"order_id":     change.OrderID.String(),
		"order_number": change.OrderNumber,
		"status":       string(change.To),
	}
	if change.ServiceID != nil {
		payload["service_id"] = fmt.Sprintf("%d", *change.ServiceID)
	}
	return payload
}

// InlineNotifier forwards directly through the notifications service,
// useful for tests or dev runs without a Temporal cluster.
type InlineNotifier struct {
	notifications notifports.Service
}

// NewInlineNotifier wraps the notifications service for synchronous dispatch.
func NewInlineNotifier(notifications notifports.Service) *InlineNotifier {
	return &InlineNotifier{notifications: notifications}
}

// StatusChanged relays the transition to the resident's device.
func (n *InlineNotifier) StatusChanged(ctx context.Context, change ports.StatusChange) error {
	if n == nil || n.notifications == nil {
		return errors.New("inline notifier not configured")
	}
	title, body := message(change)
	_, err := n.notifications.Send(ctx, notifports.SendInput{
		UserID: change.ResidentID,
		Title:  title,
		Body:   body,
		Data:   data(change),
	})
	return err
}

// TemporalNotifier hands delivery to the durable send workflow.
type TemporalNotifier struct {
	client    client.Client
	taskQueue string
}

// NewTemporalNotifier wires a Temporal client into the notifier.
func NewTemporalNotifier(c client.Client) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: notifworkflows.SendTaskQueue}
}

// StatusChanged starts one send workflow per committed transition. The
// workflow ID is keyed on order and target status, so a duplicate dispatch
// of the same transition cannot double-send.
func (n *TemporalNotifier) StatusChanged(ctx context.Context, change ports.StatusChange) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	workflowID := fmt.Sprintf("order-notify-%s-%s", change.OrderID, change.To)
	if change.ServiceID != nil {
		workflowID = fmt.Sprintf("%s-svc%d", workflowID, *change.ServiceID)
	}
	title, body := message(change)
	_, err := n.client.ExecuteWorkflow(ctx,
		client.StartWorkflowOptions{ID: workflowID, TaskQueue: n.taskQueue},
		notifworkflows.SendWorkflowName,
		notifworkflows.SendWorkflowInput{
			UserID: change.ResidentID,
			Title:  title,
			Body:   body,
			Data:   data(change),
		},
	)
	return err
}
