package slotting

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/whitespur/cardano-sl/internal/core"
)

// extraSlotDelay is how long extra-delay subscribers are deferred past the
// slot boundary, letting slot-start work elsewhere in the node settle first.
const extraSlotDelay = 500 * time.Millisecond

// Callback is a slot-clock subscriber. The context is the clock's run
// context; it is cancelled when the clock stops.
type Callback func(ctx context.Context, slot core.SlotID)

// Clock delivers one callback invocation per slot to each subscriber.
//
// Delivery is in non-decreasing flattened-slot order, at most once per slot.
// Invocations of a single subscriber never overlap: if a subscriber is still
// busy when the next slot fires, that slot is skipped for it. Distinct
// subscribers run concurrently with each other.
type Clock interface {
	// OnEverySlot registers cb to be invoked once per slot. With extraDelay
	// set, the invocation is deferred briefly past the slot boundary.
	OnEverySlot(extraDelay bool, cb Callback)
}

// TickerClock is the real slot clock, driven by wall time against a
// Schedule. The time source is injected so tests can use a mock clock.
type TickerClock struct {
	logger zerolog.Logger
	clk    clock.Clock
	sched  Schedule

	mu     sync.Mutex
	runCtx context.Context
	subs   []*subscription
	done   chan struct{}
}

type subscription struct {
	cb         Callback
	extraDelay bool
	ticks      chan core.SlotID
}

// NewTickerClock creates a slot clock for the given schedule. Pass
// clock.New() for wall time.
func NewTickerClock(logger zerolog.Logger, clk clock.Clock, sched Schedule) *TickerClock {
	return &TickerClock{
		logger: logger.With().Str("component", "slot-clock").Logger(),
		clk:    clk,
		sched:  sched,
		done:   make(chan struct{}),
	}
}

// OnEverySlot registers a subscriber. Safe to call before or after Run.
func (c *TickerClock) OnEverySlot(extraDelay bool, cb Callback) {
	sub := &subscription{
		cb:         cb,
		extraDelay: extraDelay,
		ticks:      make(chan core.SlotID, 1),
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	go c.serve(sub)
}

// Run drives slot ticks until the context is cancelled. It blocks; callers
// run it in its own goroutine.
func (c *TickerClock) Run(ctx context.Context) {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	defer close(c.done)

	flat := c.sched.SlotAt(c.clk.Now()).Flatten(c.sched.SlotsPerEpoch)
	for {
		next := flat + 1
		timer := c.clk.Timer(c.sched.StartOf(next).Sub(c.clk.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		flat = next

		slot := core.UnflattenSlotID(flat, c.sched.SlotsPerEpoch)
		c.logger.Debug().Stringer("slot", slot).Msg("slot tick")

		c.mu.Lock()
		subs := c.subs
		c.mu.Unlock()
		for _, sub := range subs {
			select {
			case sub.ticks <- slot:
			default:
				c.logger.Debug().Stringer("slot", slot).
					Msg("subscriber still busy, skipping slot")
			}
		}
	}
}

// serve delivers ticks to one subscriber, serializing its invocations.
func (c *TickerClock) serve(sub *subscription) {
	for {
		select {
		case <-c.done:
			return
		case slot := <-sub.ticks:
			if sub.extraDelay {
				c.clk.Sleep(extraSlotDelay)
			}
			c.invoke(sub, slot)
		}
	}
}

// invoke runs one callback, containing any panic so the clock keeps ticking.
func (c *TickerClock) invoke(sub *subscription, slot core.SlotID) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Stringer("slot", slot).Interface("panic", r).
				Msg("slot callback panicked")
		}
	}()

	c.mu.Lock()
	ctx := c.runCtx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	sub.cb(ctx, slot)
}
