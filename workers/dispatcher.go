package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"roomsizes/models"
)

// EventStore is the slice of storage the dispatcher needs.
type EventStore interface {
	InsertAnalyticsEvent(ctx context.Context, e *models.AnalyticsEvent) error
}

// Dispatcher decouples analytics writes from request handling. Delivery is
// at-most-effort: Publish never blocks, a full queue drops the event, and a
// failed insert is logged once and never retried.
type Dispatcher struct {
	store         EventStore
	queue         chan *models.AnalyticsEvent
	insertTimeout time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
}

func NewDispatcher(store EventStore, queueSize int, insertTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		store:         store,
		queue:         make(chan *models.AnalyticsEvent, queueSize),
		insertTimeout: insertTimeout,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Run drains the queue until Close is called. Start it as a goroutine.
func (d *Dispatcher) Run() {
	defer close(d.doneCh)

	for {
		select {
		case e := <-d.queue:
			d.insert(e)
		case <-d.stopCh:
			// Flush whatever is already queued, then stop.
			for {
				select {
				case e := <-d.queue:
					d.insert(e)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) insert(e *models.AnalyticsEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.insertTimeout)
	defer cancel()

	if err := d.store.InsertAnalyticsEvent(ctx, e); err != nil {
		log.Printf("Analytics: dropped %s event: %v", e.EventType, err)
	}
}

// Publish enqueues an event without blocking the caller. Events beyond the
// queue capacity are dropped.
func (d *Dispatcher) Publish(e *models.AnalyticsEvent) {
	select {
	case d.queue <- e:
	default:
		log.Printf("Analytics: queue full, dropped %s event", e.EventType)
	}
}

// PublishPayload wraps a typed payload into an event row and enqueues it.
func (d *Dispatcher) PublishPayload(p models.EventPayload, pageURL, userAgent *string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("Analytics: marshal %s event: %v", p.EventType(), err)
		return
	}
	d.Publish(&models.AnalyticsEvent{
		EventType: p.EventType(),
		EventData: data,
		PageURL:   pageURL,
		UserAgent: userAgent,
	})
}

// Close stops the run loop after flushing queued events, bounded by timeout.
func (d *Dispatcher) Close(timeout time.Duration) {
	close(d.stopCh)
	select {
	case <-d.doneCh:
	case <-time.After(timeout):
		log.Println("Analytics: shutdown timeout, events may be lost")
	}
}
