package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"go-registration-portal/models"

	"github.com/nats-io/nats.go"
)

// RegistrationSink forwards accepted registrations to downstream consumers.
// Publishing is best-effort: acceptance is never rolled back over a sink
// failure.
type RegistrationSink interface {
	PublishAccepted(registration models.AcceptedRegistration) error
	Close()
}

type NATSSink struct {
	conn    *nats.Conn
	subject string
}

func NewNATSSink(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("Connected to NATS", "url", url, "subject", subject)
	return &NATSSink{conn: conn, subject: subject}, nil
}

func (s *NATSSink) PublishAccepted(registration models.AcceptedRegistration) error {
	payload, err := json.Marshal(registration)
	if err != nil {
		return fmt.Errorf("failed to marshal accepted registration: %w", err)
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("failed to publish accepted registration: %w", err)
	}
	slog.Debug("Published accepted registration", "subject", s.subject, "submission_id", registration.SubmissionId)
	return nil
}

func (s *NATSSink) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// NoopSink is used when no NATS server is configured.
type NoopSink struct{}

func (NoopSink) PublishAccepted(models.AcceptedRegistration) error { return nil }

func (NoopSink) Close() {}
