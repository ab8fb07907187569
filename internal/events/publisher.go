package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectUserRegistered = "user.registered"
	SubjectUserDeleted    = "user.deleted"
	SubjectSlackLinked    = "slack.linked"
)

type EventPublisher interface {
	PublishUserRegistered(userID string, created bool, roleIDs []int64) error
	PublishUserDeleted(userID string) error
	PublishSlackLinked(userID, slackID, intent string) error
}

type UserRegisteredEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Created   bool      `json:"created"`
	RoleIDs   []int64   `json:"role_ids"`
	At        time.Time `json:"at"`
}

type UserDeletedEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	At        time.Time `json:"at"`
}

type SlackLinkedEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	SlackID   string    `json:"slack_id"`
	Intent    string    `json:"intent"`
	At        time.Time `json:"at"`
}

type NatsPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewNatsPublisher(natsURL string, logger *slog.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc, logger: logger}, nil
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}

func (p *NatsPublisher) PublishUserRegistered(userID string, created bool, roleIDs []int64) error {
	return p.publish(SubjectUserRegistered, UserRegisteredEvent{
		EventID:   uuid.New(),
		EventType: SubjectUserRegistered,
		UserID:    userID,
		Created:   created,
		RoleIDs:   roleIDs,
		At:        time.Now(),
	})
}

func (p *NatsPublisher) PublishUserDeleted(userID string) error {
	return p.publish(SubjectUserDeleted, UserDeletedEvent{
		EventID:   uuid.New(),
		EventType: SubjectUserDeleted,
		UserID:    userID,
		At:        time.Now(),
	})
}

func (p *NatsPublisher) PublishSlackLinked(userID, slackID, intent string) error {
	return p.publish(SubjectSlackLinked, SlackLinkedEvent{
		EventID:   uuid.New(),
		EventType: SubjectSlackLinked,
		UserID:    userID,
		SlackID:   slackID,
		Intent:    intent,
		At:        time.Now(),
	})
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		p.logger.Error("Error marshalling event JSON", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		p.logger.Error("Error publishing to NATS", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	p.logger.Info("Published event to NATS", slog.String("subject", subject))

	return nil
}

// NoopPublisher drops every event. Used when NATS is not reachable at boot.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(string, bool, []int64) error { return nil }
func (NoopPublisher) PublishUserDeleted(string) error                   { return nil }
func (NoopPublisher) PublishSlackLinked(string, string, string) error   { return nil }
