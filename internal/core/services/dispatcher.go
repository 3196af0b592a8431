package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// Dispatcher is the single choke point between "a business fact occurred"
// and its effects on the real-time layer. Durable notification writes
// happen synchronously inside Announce so callers get read-after-write;
// push delivery runs on a dispatch queue drained by Run, so a slow or
// dying connection never blocks a business mutation, and push failures
// are logged instead of vanishing.
type Dispatcher struct {
	notifications ports.NotificationRepository
	registry      ports.SessionRegistry
	bridge        ports.EventBridge // nil when running single-instance
	instanceID    string

	pushQueue chan pushTask
	quit      chan struct{}
	done      chan struct{}
	logger    *slog.Logger
}

// pushTask is one queued fan-out: deliver event to every live session of
// every recipient, then relay it to sibling instances.
type pushTask struct {
	recipientIDs []uuid.UUID
	event        domain.Event
}

var _ ports.EventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. bridge may be nil, in which case
// events stay process-local.
func NewDispatcher(
	notifications ports.NotificationRepository,
	registry ports.SessionRegistry,
	bridge ports.EventBridge,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		registry:      registry,
		bridge:        bridge,
		instanceID:    uuid.NewString(),
		pushQueue:     make(chan pushTask, 256),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		logger:        logger.With("component", "event_dispatcher"),
	}
}

// InstanceID identifies this process on the event bridge.
func (d *Dispatcher) InstanceID() string {
	return d.instanceID
}

// Run drains the push queue. It MUST be run as a goroutine; the queue is
// FIFO, so two events announced in sequence for the same recipient are
// pushed in that same sequence.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for {
		select {
		case task := <-d.pushQueue:
			d.deliver(task)
		case <-d.quit:
			// Flush whatever is already queued before exiting.
			for {
				select {
				case task := <-d.pushQueue:
					d.deliver(task)
				default:
					return
				}
			}
		}
	}
}

// Close stops the dispatch loop after flushing queued pushes.
func (d *Dispatcher) Close() {
	close(d.quit)
	<-d.done
}

// Announce persists one notification row per recipient and queues a
// notification push for each. The write for a recipient completes before
// its push is queued, and recipients are processed in the order given.
// The caller passes an already-deduplicated recipient list.
//
// An error is returned only when a durable write fails; the caller's
// mutation should log it and carry on, since a missing notification is
// degraded UX, not data corruption. Push problems never surface here.
func (d *Dispatcher) Announce(ctx context.Context, ann ports.Announcement) error {
	for _, recipientID := range ann.RecipientIDs {
		notification := &domain.Notification{
			RecipientID: recipientID,
			Title:       ann.Title,
			Message:     ann.Message,
			Type:        ann.Type,
			Link:        ann.Link,
		}

		stored, err := d.notifications.Create(ctx, notification)
		if err != nil {
			return fmt.Errorf("persist notification for %s: %w", recipientID, err)
		}

		d.enqueue(pushTask{
			recipientIDs: []uuid.UUID{recipientID},
			event:        domain.Event{Type: domain.EventNotification, Payload: stored},
		})
	}
	return nil
}

// Push fans an ephemeral event out to the recipients' live sessions. No
// durable trace is written; recipients that are offline simply miss it
// and recover state through their next authoritative fetch.
func (d *Dispatcher) Push(ctx context.Context, eventType domain.EventType, recipientIDs []uuid.UUID, payload interface{}) {
	if len(recipientIDs) == 0 {
		return
	}
	d.enqueue(pushTask{
		recipientIDs: recipientIDs,
		event:        domain.Event{Type: eventType, Payload: payload},
	})
}

func (d *Dispatcher) enqueue(task pushTask) {
	select {
	case d.pushQueue <- task:
	default:
		// Queue saturated. Dropping is safe: durable rows are already
		// written and clients reconcile on reconnect.
		d.logger.Warn("push queue full, dropping event",
			"event_type", task.event.Type,
			"recipients", len(task.recipientIDs),
		)
	}
}

// deliver pushes one task to every live session of every recipient, then
// relays it across the bridge.
func (d *Dispatcher) deliver(task pushTask) {
	for _, recipientID := range task.recipientIDs {
		sessions := d.registry.SessionsFor(recipientID)
		for _, session := range sessions {
			if err := session.Enqueue(task.event); err != nil {
				// The connection closed or stalled between lookup and
				// push. Harmless: the durable row is already safe.
				d.logger.Debug("push to session failed",
					"user_id", recipientID,
					"event_type", task.event.Type,
					"error", err,
				)
			}
		}
	}

	if d.bridge == nil {
		return
	}

	envelope := domain.EventEnvelope{
		Origin:       d.instanceID,
		Type:         task.event.Type,
		RecipientIDs: task.recipientIDs,
		Payload:      task.event.Payload,
	}
	if err := d.bridge.Publish(context.Background(), envelope); err != nil {
		d.logger.Warn("bridge publish failed",
			"event_type", task.event.Type,
			"error", err,
		)
	}
}
