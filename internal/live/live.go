// Package live broadcasts table mutations to subscribers and turns plain
// loaders into live snapshot streams.
package live

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Topic names a table whose mutations are broadcast.
type Topic string

const (
	Users Topic = "users"
	Books Topic = "books"
)

// Hub fans mutation signals out to subscribers. The zero value is not usable; use NewHub.
// A nil *Hub accepts Publish calls and drops them.
type Hub struct {
	log  logrus.FieldLogger
	mu   sync.Mutex
	subs map[Topic]map[string]chan struct{}
}

// NewHub returns an empty hub. A nil logger falls back to the logrus standard logger.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		log:  log.WithField("component", "live"),
		subs: make(map[Topic]map[string]chan struct{}),
	}
}

// Subscription is a registered interest in one topic.
type Subscription struct {
	ID    string
	Topic Topic
	// C receives a value after each publish. Bursts coalesce into a single pending signal.
	C <-chan struct{}

	hub  *Hub
	once sync.Once
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if m, ok := s.hub.subs[s.Topic]; ok {
			delete(m, s.ID)
			if len(m) == 0 {
				delete(s.hub.subs, s.Topic)
			}
		}
	})
}

// Subscribe registers interest in topic.
func (h *Hub) Subscribe(topic Topic) *Subscription {
	ch := make(chan struct{}, 1)
	id := uuid.NewString()

	h.mu.Lock()
	m, ok := h.subs[topic]
	if !ok {
		m = make(map[string]chan struct{})
		h.subs[topic] = m
	}
	m[id] = ch
	h.mu.Unlock()

	return &Subscription{ID: id, Topic: topic, C: ch, hub: h}
}

// Publish signals every subscriber of the given topics. It never blocks.
func (h *Hub) Publish(topics ...Topic) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		for _, ch := range h.subs[t] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribers reports how many subscriptions are attached to topic.
func (h *Hub) Subscribers(topic Topic) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

// Watch delivers load's result immediately and again after every publish on topic,
// until ctx is done. The returned channel is closed on detach.
//
// The first load runs synchronously so that its error reaches the caller. Later
// load errors are logged and the previous snapshot stands.
func Watch[T any](ctx context.Context, h *Hub, topic Topic, load func(context.Context) (T, error)) (<-chan T, error) {
	if h == nil {
		return nil, errors.New("live: nil hub")
	}
	// Subscribe before the first load so a write racing with it is not missed.
	sub := h.Subscribe(topic)
	first, err := load(ctx)
	if err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan T)
	go func() {
		defer close(out)
		defer sub.Close()

		snapshot, pending := first, true
		for {
			if pending {
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-sub.C:
			case <-ctx.Done():
				return
			}
			next, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				h.log.WithError(err).WithField("topic", topic).Warn("reload failed")
				pending = false
				continue
			}
			snapshot, pending = next, true
		}
	}()
	return out, nil
}
