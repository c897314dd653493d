package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Grading event names published after successful mutations.
const (
	EventSubmissionReceived = "submission.received"
	EventSubmissionAIGraded = "submission.ai_graded"
	EventSubmissionGraded   = "submission.graded"
)

// GradingEvent is the payload published to NATS when a submission changes
// grading state.
type GradingEvent struct {
	Event        string    `json:"event"`
	SubmissionID uint      `json:"submission_id"`
	AssessmentID uint      `json:"assessment_id"`
	StudentID    uint      `json:"student_id"`
	Status       string    `json:"status"`
	Score        *float64  `json:"score,omitempty"`
	AIDraftScore *float64  `json:"ai_draft_score,omitempty"`
	NeedsReview  bool      `json:"needs_review"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// GradingEvents publishes grading lifecycle events. A nil publisher or a nil
// connection is a no-op so the grading flow never depends on the broker being
// up.
type GradingEvents struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewGradingEvents constructs the publisher. subjectBase is prepended to every
// event name, e.g. "gradeflow.grading".
func NewGradingEvents(conn *nats.Conn, subjectBase string, logger zerolog.Logger) *GradingEvents {
	if subjectBase == "" {
		subjectBase = "gradeflow.grading"
	}
	return &GradingEvents{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "grading_events").Logger(),
	}
}

// Publish emits the event. Failures are logged and swallowed; event delivery
// is best-effort and never fails the grading operation that triggered it.
func (p *GradingEvents) Publish(event GradingEvent) {
	if p == nil || p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event.Event).Msg("failed to marshal grading event")
		return
	}

	subject := p.subjectBase + "." + event.Event
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish grading event")
	}
}
