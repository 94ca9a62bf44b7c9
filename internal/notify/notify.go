// Package notify delivers web push notifications to subscribed admin
// devices. Delivery is best effort and at most once: a failed send is logged
// and never retried.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/suyanik/Einkauflist/internal/model"
	"github.com/suyanik/Einkauflist/internal/store"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Service sends web push notifications to every stored subscription.
type Service struct {
	publicKey  string
	privateKey string
	subs       *store.PushStore
	logger     *slog.Logger
}

// NewService creates a push service. Callers skip construction entirely when
// VAPID keys are not configured.
func NewService(cfg Config, subs *store.PushStore, logger *slog.Logger) *Service {
	return &Service{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subs:       subs,
		logger:     logger,
	}
}

// OrderCreated notifies every subscribed device about a new order. Expired
// subscriptions are pruned; other failures are only logged.
func (s *Service) OrderCreated(order *model.Order) {
	payload := Payload{
		Title: "Yeni Sipariş Var!",
		Body:  fmt.Sprintf("%d kalemlik yeni bir sipariş bekliyor.", len(order.Items)),
		Tag:   "order-" + order.ID,
	}

	subs, err := s.subs.List()
	if err != nil {
		s.logger.Error("list push subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.subs.Delete(sub.ID); err != nil {
					s.logger.Error("prune expired subscription", "error", err)
				}
				continue
			}
			s.logger.Warn("push send failed", "endpoint", sub.Endpoint, "error", err)
		}
	}
}

func (s *Service) send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      "mailto:noreply@einkauflist.local",
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}
