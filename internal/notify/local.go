package notify

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/goodmorning/internal/scheduler"
)

var ErrUnknownTrigger = errors.New("notify: unknown trigger")

// LocalNotifier delivers triggers in-process through a scheduler engine.
// Permission is a configuration switch; there is no user prompt.
type LocalNotifier struct {
	engine    *scheduler.Engine
	permitted atomic.Bool
	now       func() time.Time
}

func NewLocalNotifier(engine *scheduler.Engine, permitted bool, now func() time.Time) *LocalNotifier {
	if now == nil {
		now = time.Now
	}
	n := &LocalNotifier{engine: engine, now: now}
	n.permitted.Store(permitted)
	return n
}

func (n *LocalNotifier) HasPermission(context.Context) bool {
	return n.permitted.Load()
}

func (n *LocalNotifier) RequestPermission(context.Context) bool {
	return n.permitted.Load()
}

func (n *LocalNotifier) SetPermission(permitted bool) {
	n.permitted.Store(permitted)
}

func (n *LocalNotifier) ScheduleTrigger(ctx context.Context, t Trigger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	at := t.At
	if t.Repeats() {
		for at.Before(n.now()) {
			at = at.AddDate(0, 0, 7)
		}
	}
	id := "trg_" + uuid.NewString()
	err := n.engine.Schedule(scheduler.AlarmEvent{
		ID:        id,
		AlarmID:   t.Content.AlarmID,
		Episode:   t.Content.Episode,
		Title:     t.Content.Title,
		Body:      t.Content.Body,
		Sound:     t.Content.Sound,
		Weekly:    t.Repeats(),
		TriggerAt: at,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (n *LocalNotifier) CancelTrigger(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.engine.Cancel(id) {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, id)
	}
	return nil
}

// Run forwards fired engine events to handle until ctx ends or the engine stops.
func (n *LocalNotifier) Run(ctx context.Context, handle func(Fired, scheduler.AlarmEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-n.engine.C():
			if !ok {
				return
			}
			handle(Fired{
				TriggerID: ev.ID,
				AlarmID:   ev.AlarmID,
				Episode:   ev.Episode,
				FiredAt:   n.now(),
			}, ev)
		}
	}
}
