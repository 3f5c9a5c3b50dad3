package event

import (
	"context"
	"sync"
)

var (
	once          sync.Once
	eventsHandler *EventsHandler
)

// EventsHandler maps job kinds to their handlers. Handlers register
// themselves in init, the dispatcher looks them up by kind at run time.
type EventsHandler struct {
	mux        sync.RWMutex
	preProcess map[string]func(jobID int64) bool
	handlers   map[string]func(ctx context.Context, jobID int64) error
}

func NewEventsHandler() *EventsHandler {
	once.Do(func() {
		eventsHandler = &EventsHandler{
			mux:        sync.RWMutex{},
			preProcess: map[string]func(jobID int64) bool{},
			handlers:   map[string]func(ctx context.Context, jobID int64) error{},
		}
	})
	return eventsHandler
}

// RegHandler registers the handler for a job kind, first one wins.
func (e *EventsHandler) RegHandler(t string, handler func(ctx context.Context, jobID int64) error) {
	e.mux.Lock()
	defer e.mux.Unlock()
	_, ok := e.handlers[t]
	if !ok {
		e.handlers[t] = handler
	}
}

// GetHandler .
func (e *EventsHandler) GetHandler(t string) func(ctx context.Context, jobID int64) error {
	e.mux.RLock()
	defer e.mux.RUnlock()
	handler, ok := e.handlers[t]
	if !ok {
		return nil
	}
	return handler
}

// RegPreProcess registers a pre-claim gate for a job kind.
func (e *EventsHandler) RegPreProcess(t string, preProcess func(jobID int64) bool) {
	e.mux.Lock()
	defer e.mux.Unlock()
	_, ok := e.preProcess[t]
	if !ok {
		e.preProcess[t] = preProcess
	}
}

// GetPreProcess .
func (e *EventsHandler) GetPreProcess(t string) func(jobID int64) bool {
	e.mux.RLock()
	defer e.mux.RUnlock()
	preProcess, ok := e.preProcess[t]
	if !ok {
		return nil
	}
	return preProcess
}
