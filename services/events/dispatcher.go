package eventsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

// Dispatcher fans events out to subscribed handlers, synchronously and in
// subscription order. Handler errors are logged and never stop the fan-out.
type Dispatcher struct {
	logger core.Logger

	mutex    sync.RWMutex
	handlers map[string][]core.EventHandler
}

var _ core.EventEmitter = (*Dispatcher)(nil)

func NewDispatcher(logger core.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[string][]core.EventHandler),
	}
}

// Subscribe registers handler for all events named name.
func (d *Dispatcher) Subscribe(name string, handler core.EventHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

func (d *Dispatcher) Emit(ctx context.Context, evt core.Event) {
	d.mutex.RLock()
	handlers := d.handlers[evt.Name]
	d.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			d.logger.Error(fmt.Sprintf("handling %q event: %v", evt.Name, err), err)
		}
	}
}
