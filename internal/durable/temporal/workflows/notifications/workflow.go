// Package notifications holds the durable push-delivery workflow. The one
// delivery attempt runs inside Temporal so an API crash between commit and
// dispatch cannot silently drop the message.
package notifications

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/google/uuid"
)

const (
	// SendWorkflowName is the public identifier for registering the workflow.
	SendWorkflowName = "notifications.workflows.Send"
	// SendTaskQueue is the queue consumed by the notifications worker.
	SendTaskQueue = "ORDER_NOTIFICATIONS"
	// ForwardActivityName is the activity that performs the FCM relay.
	ForwardActivityName = "notifications.activities.Forward"
)

// SendWorkflowInput addresses one push message to a platform user.
type SendWorkflowInput struct {
	UserID  uuid.UUID
	Title   string
	Body    string
	Data    map[string]string
	TraceID string
}

// SendWorkflow relays one push message. Delivery is best effort with a
// single attempt; a missing token or provider rejection ends the workflow
// without retries.
func SendWorkflow(ctx workflow.Context, input SendWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("SendWorkflow started", withTraceID(input.TraceID, "userId", input.UserID.String())...)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	if err := workflow.ExecuteActivity(ctx, ForwardActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("SendWorkflow delivery failed", withTraceID(input.TraceID, "userId", input.UserID.String(), "error", err)...)
		return err
	}
	logger.Info("SendWorkflow completed", withTraceID(input.TraceID, "userId", input.UserID.String())...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
