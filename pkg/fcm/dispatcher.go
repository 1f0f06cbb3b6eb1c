package fcm

import (
	"context"
	"log"
	"time"
)

const DefaultInterval = time.Minute

// Dispatcher periodically sends due outbox entries.
type Dispatcher struct {
	outbox   *Outbox
	sender   Sender
	interval time.Duration
	now      func() time.Time
}

func NewDispatcher(outbox *Outbox, sender Sender, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Dispatcher{
		outbox:   outbox,
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}
}

// Run dispatches immediately and then on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("[FCM] Starting dispatcher (interval: %s)", d.interval)

	d.Dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Dispatch(ctx)
		case <-ctx.Done():
			log.Println("[FCM] Dispatcher stopped")
			return
		}
	}
}

// Dispatch sends every due entry once. Entries leave the outbox whether or
// not the send succeeded, so a failing message is never retried.
func (d *Dispatcher) Dispatch(ctx context.Context) int {
	due, err := d.outbox.TakeDue(ctx, d.now())
	if err != nil {
		log.Printf("[FCM] Error reading outbox: %v", err)
		return 0
	}

	sent := 0
	for _, e := range due {
		if _, err := d.sender.Send(ctx, toMessage(e)); err != nil {
			log.Printf("[FCM] Error sending %s to %s: %v", e.ID, e.Subscriber, err)
			continue
		}
		sent++
	}
	if len(due) > 0 {
		log.Printf("[FCM] Dispatched %d of %d due notifications", sent, len(due))
	}
	return sent
}
