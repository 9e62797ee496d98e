package events

import (
	"sync"

	"go.uber.org/zap"
)

// InMemoryEventStore keeps every stream in memory and delivers events to subscribers
// synchronously, in append order, before AppendEvent returns.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	// serializes delivery so handlers observe events in append order
	deliver   sync.Mutex
	allEvents []Event
	retain    int
	logger    *zap.Logger
}

// NewInMemoryEventStore creates a store; retain bounds how many runs are kept (0 keeps all)
func NewInMemoryEventStore(retain int, logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		retain:      retain,
		logger:      logger,
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mutex.Lock()
	if _, exists := s.streams[streamID]; !exists {
		s.streams[streamID] = make([]Event, 0)
		s.evictLocked()
	}

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	handlers := append([]EventHandler(nil), s.subscribers[event.Type()]...)
	s.mutex.Unlock()

	for _, handler := range handlers {
		if !handler.CanHandle(eventWithVersion.Type()) {
			continue
		}
		if err := handler.Handle(eventWithVersion); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("type", eventWithVersion.Type()),
				zap.String("stream", streamID),
				zap.Error(err))
		}
	}
	return nil
}

// evictLocked drops the oldest streams once more than retain are held
func (s *InMemoryEventStore) evictLocked() {
	if s.retain <= 0 || len(s.streams) <= s.retain {
		return
	}
	drop := make(map[string]bool)
	for _, e := range s.allEvents {
		if len(s.streams)-len(drop) <= s.retain {
			break
		}
		drop[e.StreamID()] = true
	}
	kept := s.allEvents[:0]
	for _, e := range s.allEvents {
		if !drop[e.StreamID()] {
			kept = append(kept, e)
		}
	}
	s.allEvents = kept
	for id := range drop {
		delete(s.streams, id)
	}
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

var _ EventStore = (*InMemoryEventStore)(nil)
