package services

import (
	"context"
	"fmt"

	"projecthub/internal/amqp"
	"projecthub/internal/core"
	"projecthub/internal/log"
	"projecthub/internal/storage"
)

// Creator posts a create action to the backend.
type Creator interface {
	Create(ctx context.Context, action core.Action, payload any) (core.Created, error)
}

// Journal records successful submissions.
type Journal interface {
	Record(ctx context.Context, action core.Action, entityID int64, summary string, payload any) (storage.Entry, error)
	MarkPublished(ctx context.Context, eventID string) error
}

// Publisher announces journaled submissions.
type Publisher interface {
	PublishRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error
}

// SubmissionService posts to the backend and, once the backend accepted the
// record, journals it and publishes a record-created event. Journal and
// publish failures are logged and never fail the submission.
type SubmissionService struct {
	backend   Creator
	journal   Journal
	publisher Publisher
	logger    *log.Logger
}

// NewSubmissionService wires the collaborators. journal and publisher may
// be nil.
func NewSubmissionService(backend Creator, journal Journal, publisher Publisher, logger *log.Logger) *SubmissionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &SubmissionService{
		backend:   backend,
		journal:   journal,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentForms),
	}
}

// Create implements forms.Submitter.
func (s *SubmissionService) Create(ctx context.Context, action core.Action, payload any) (core.Created, error) {
	created, err := s.backend.Create(ctx, action, payload)
	if err != nil {
		return core.Created{}, fmt.Errorf("%s: %w", action, err)
	}

	s.logger.InfoContext(ctx, "Record created",
		log.FieldAction, string(action),
		log.FieldEntityID, created.ID)

	if s.journal == nil {
		return created, nil
	}
	entry, err := s.journal.Record(ctx, action, created.ID, Summary(payload), payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to journal record",
			log.FieldAction, string(action),
			log.FieldEntityID, created.ID,
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err)
		return created, nil
	}

	if err := s.publish(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish record created message",
			log.FieldEventID, entry.EventID,
			log.FieldError, err)
	}
	return created, nil
}

func (s *SubmissionService) publish(ctx context.Context, entry storage.Entry) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, entry stays pending", log.FieldEventID, entry.EventID)
		return nil
	}
	msg := amqp.NewRecordCreatedMessage(entry.EventID, entry.Action, entry.EntityID)
	if err := s.publisher.PublishRecordCreated(ctx, msg); err != nil {
		return err
	}
	return s.journal.MarkPublished(ctx, entry.EventID)
}
