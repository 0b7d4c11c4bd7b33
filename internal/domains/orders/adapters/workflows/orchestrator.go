package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/b2b-ordering-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/b2b-ordering-api/internal/platform/temporal/workflows/orders"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order placement workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.PlacementTaskQueue}
}

// PlaceOrder runs the placement workflow for the caller on ctx and waits for
// its result. Without a client-supplied key the workflow ID becomes the
// idempotency key, so activity retries never place the order twice.
func (o *TemporalOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	input.AccountID = caller.AccountID
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPlacementWorkflowID(input, traceComponent)
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = workflowID
	}
	order, err := o.execute(ctx, workflowID, input, traceComponent)
	if err == nil {
		return order, nil
	}
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if !errors.As(err, &alreadyStarted) {
		return nil, orderactivities.DecodeError(err)
	}
	// A run with the same key is in flight. Wait for it, then start again so
	// the service either replays its order or reports a conflicting payload.
	if waitErr := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId).Get(ctx, nil); waitErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	order, err = o.execute(ctx, workflowID, input, traceComponent)
	if err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return order, nil
}

func (o *TemporalOrderWorkflows) execute(ctx context.Context, workflowID string, input ordertypes.CreateOrderInput, traceID string) (*domain.Order, error) {
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,

		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflowName,
		orderworkflows.PlacementWorkflowInput{Command: input, TraceID: traceID},
	)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// InlineOrderWorkflows executes placement directly without Temporal, useful for tests or dev fallbacks.
type InlineOrderWorkflows struct {
	service       ports.Service
	replenishment inventoryports.Replenishment
	logger        *slog.Logger
}

// NewInlineOrderWorkflows wraps the order service for synchronous execution.
// replenishment may be nil.
func NewInlineOrderWorkflows(service ports.Service, replenishment inventoryports.Replenishment, logger *slog.Logger) *InlineOrderWorkflows {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineOrderWorkflows{service: service, replenishment: replenishment, logger: logger}
}

// PlaceOrder delegates to the application service, then checks the ordered
// items against their replenishment thresholds.
func (o *InlineOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	order, err := o.service.CreateOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	if o.replenishment == nil {
		return order, nil
	}
	itemIDs := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	if _, err := o.replenishment.CheckItems(context.WithoutCancel(ctx), itemIDs); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "replenishment check failed after placement",
			slog.String("order.id", order.ID),
			slog.String("error", err.Error()))
	}
	return order, nil
}

func buildPlacementWorkflowID(input ordertypes.CreateOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(input.AccountID+":"+key))
	}
	return fmt.Sprintf("order-placement-%s-%s", input.AccountID, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
