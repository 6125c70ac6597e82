// Package events publishes session lifecycle events so other parts of
// the application (or other instances) can react to login and logout.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/JoshDFN/cleardeck/ports"
)

const (
	// LoginTopic carries SessionEvent payloads for successful logins.
	LoginTopic = "cleardeck.session.login"

	// LogoutTopic carries SessionEvent payloads for ended sessions.
	LogoutTopic = "cleardeck.session.logout"
)

// SessionEvent is the payload of every session lifecycle event.
type SessionEvent struct {
	Principal string    `json:"principal"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using
// Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, principal string) error {
	return p.publish(LoginTopic, principal)
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, principal string) error {
	return p.publish(LogoutTopic, principal)
}

func (p *WatermillPublisher) publish(topic, principal string) error {
	event := SessionEvent{
		Principal: principal,
		At:        time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
