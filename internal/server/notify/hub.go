// Package notify fans notifications out to live subscribers.
//
// All subscription state lives inside Hub.Run. Subscribe, Close and Publish
// only send requests to that loop, so there is no shared map to lock.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

// ErrHubStopped is returned once Run has exited.
var ErrHubStopped = errors.New("notification hub stopped")

const DefaultBuffer = 16

type Hub struct {
	register   chan *Subscription
	unregister chan *Subscription
	publish    chan *models.Notification
	done       chan struct{}

	buffer int
	log    logging.Logger
}

// Subscription receives notifications addressed to one user until closed.
type Subscription struct {
	UserID string

	c    chan *models.Notification
	hub  *Hub
	once sync.Once
}

func NewHub(buffer int, log logging.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		publish:    make(chan *models.Notification),
		done:       make(chan struct{}),
		buffer:     buffer,
		log:        log,
	}
}

// C is closed when the subscription or the hub ends.
func (s *Subscription) C() <-chan *models.Notification {
	return s.c
}

// Close detaches the subscription. It is safe to call more than once and
// nothing is delivered after it returns.
func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
	})
}

// Run owns every subscription until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	subs := make(map[string]map[*Subscription]struct{})

	defer func() {
		close(h.done)
		for _, set := range subs {
			for s := range set {
				close(s.c)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case s := <-h.register:
			set, ok := subs[s.UserID]
			if !ok {
				set = make(map[*Subscription]struct{})
				subs[s.UserID] = set
			}
			set[s] = struct{}{}

		case s := <-h.unregister:
			set := subs[s.UserID]
			if _, ok := set[s]; !ok {
				continue
			}
			delete(set, s)
			if len(set) == 0 {
				delete(subs, s.UserID)
			}
			drain(s.c)
			close(s.c)

		case n := <-h.publish:
			for s := range subs[n.ToUserID] {
				select {
				case s.c <- n:
				default:
					h.log.Warn(ctx, "notification dropped, subscriber is slow",
						"user_id", n.ToUserID, "notification_id", n.ID)
				}
			}
		}
	}
}

// Subscribe opens a subscription for userID.
func (h *Hub) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	s := &Subscription{UserID: userID, c: make(chan *models.Notification, h.buffer), hub: h}
	select {
	case h.register <- s:
		return s, nil
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Publish hands n to the loop for delivery to the recipient's open
// subscriptions. A subscriber whose buffer is full misses the message.
func (h *Hub) Publish(ctx context.Context, n *models.Notification) error {
	select {
	case h.publish <- n:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drain(c chan *models.Notification) {
	for {
		select {
		case <-c:
		default:
			return
		}
	}
}
