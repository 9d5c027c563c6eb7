package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/persistence"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	"github.com/spec-kit/helpdesk-core/pkg/util"
)

// ErrAssistSkipped marks a logical no-op: the event is not a customer
// comment, or automation is already off for the ticket.
var ErrAssistSkipped = errors.New("assist skipped")

// ErrAssistBusy marks a trigger abandoned because another pipeline run
// holds the ticket's lease.
var ErrAssistBusy = errors.New("assist pipeline already running for ticket")

// AssistService runs the response pipeline for one triggering comment
// event and applies the handoff gate: either the candidate reply is
// committed to the ticket's timeline, or automation is disabled and the
// evaluation recorded for human follow-up.
type AssistService struct {
	tickets    repository.TicketRepository
	events     repository.TicketEventRepository
	retriever  *KnowledgeRetriever
	generator  *ResponseGenerator
	evaluator  *ResponseEvaluator
	leaser     persistence.TicketLeaser
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.AssistConfig
}

// AssistDependencies bundles collaborators for the assist service.
type AssistDependencies struct {
	TicketRepo repository.TicketRepository
	EventRepo  repository.TicketEventRepository
	Retriever  *KnowledgeRetriever
	Generator  *ResponseGenerator
	Evaluator  *ResponseEvaluator
	Leaser     persistence.TicketLeaser
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Config     config.AssistConfig
}

// NewAssistService constructs the service.
func NewAssistService(deps AssistDependencies) *AssistService {
	return &AssistService{
		tickets:    deps.TicketRepo,
		events:     deps.EventRepo,
		retriever:  deps.Retriever,
		generator:  deps.Generator,
		evaluator:  deps.Evaluator,
		leaser:     deps.Leaser,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        deps.Config,
	}
}

// HandleCommentEvent is the single pipeline entry point: "a comment event
// was created". It filters the trigger, takes the per-ticket lease, runs
// retrieval, generation, and evaluation, then applies the gate decision.
func (s *AssistService) HandleCommentEvent(ctx context.Context, ticketID, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.TicketID != ticketID {
		return util.NewValidationError("event does not belong to ticket", map[string]any{
			"ticket_id": ticketID,
			"event_id":  eventID,
		})
	}
	if event.Type != domain.EventTypeComment {
		s.logger.Debug("assist skipped: not a comment event",
			zap.String("ticket_id", ticketID), zap.String("event_type", string(event.Type)))
		return ErrAssistSkipped
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if skip, why := s.shouldSkip(ticket, event); skip {
		s.logger.Debug("assist skipped: "+why, zap.String("ticket_id", ticketID))
		return ErrAssistSkipped
	}

	acquired, err := s.leaser.Acquire(ctx, ticketID)
	if err != nil {
		return err
	}
	if !acquired {
		s.logger.Info("assist abandoned: lease held by concurrent run",
			zap.String("ticket_id", ticketID), zap.String("event_id", eventID))
		return ErrAssistBusy
	}
	defer func() {
		if err := s.leaser.Release(context.WithoutCancel(ctx), ticketID); err != nil {
			s.logger.Warn("failed to release assist lease",
				zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}()

	// Re-read under the lease: a concurrent run may have handed off
	// between the first check and lease acquisition.
	ticket, err = s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if skip, why := s.shouldSkip(ticket, event); skip {
		s.logger.Debug("assist skipped after lease: "+why, zap.String("ticket_id", ticketID))
		return ErrAssistSkipped
	}

	return s.runPipeline(ctx, ticket, event)
}

func (s *AssistService) shouldSkip(ticket *domain.Ticket, event *domain.TicketEvent) (bool, string) {
	if !ticket.AIEnabled {
		return true, "automation disabled"
	}
	if event.CreatedBy != ticket.CreatedBy {
		return true, "comment not authored by ticket customer"
	}
	return false, ""
}

func (s *AssistService) runPipeline(ctx context.Context, ticket *domain.Ticket, trigger *domain.TicketEvent) error {
	started := time.Now()

	log, err := s.events.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return err
	}
	turns := BuildTimeline(log, ticket.CreatedBy)
	latestMessage := trigger.Payload.CommentText

	articles := s.retriever.Retrieve(ctx, latestMessage, ticket.OrganizationID)

	reply, err := s.generator.Generate(ctx, turns, articles)
	if err != nil {
		s.metrics.RecordAssistOutcome(observability.AssistOutcomeError)
		return util.NewProviderUnavailable("generation", err)
	}

	// The conversation prior to the trigger is the log minus the trigger
	// event itself. Events appended after the trigger (a status change, a
	// racing comment) keep their place instead of displacing it.
	prior := make([]domain.TicketEvent, 0, len(log))
	for _, entry := range log {
		if entry.ID != trigger.ID {
			prior = append(prior, entry)
		}
	}
	evaluation, err := s.evaluator.Evaluate(ctx, BuildTimeline(prior, ticket.CreatedBy), latestMessage, reply, articles)
	if err != nil {
		s.metrics.RecordAssistOutcome(observability.AssistOutcomeError)
		return util.NewProviderUnavailable("evaluation", err)
	}

	if evaluation.NeedsHandoff {
		return s.handOff(ctx, ticket, trigger, evaluation, started)
	}
	return s.postReply(ctx, ticket, reply, evaluation, started)
}

// handOff disables automation and records the evaluation. No AI comment is
// appended: the customer's message stands unanswered, awaiting a human.
func (s *AssistService) handOff(ctx context.Context, ticket *domain.Ticket, trigger *domain.TicketEvent, evaluation domain.EvaluationResult, started time.Time) error {
	transitioned, err := s.tickets.DisableAI(ctx, ticket.ID, &evaluation)
	if err != nil {
		return err
	}
	if !transitioned {
		// Another run won the transition; this one changes nothing.
		s.logger.Info("handoff already recorded", zap.String("ticket_id", ticket.ID))
		return nil
	}

	s.metrics.RecordAssistOutcome(observability.AssistOutcomeHandoff)
	s.logger.Info("ticket handed off to human",
		zap.String("ticket_id", ticket.ID),
		zap.String("analysis_failure", string(evaluation.AnalysisFailure)),
		zap.String("reason", evaluation.Reason),
		zap.Float64("confidence", evaluation.Confidence),
		zap.Strings("kb_gaps", evaluation.KBGaps),
		zap.Duration("pipeline_duration", time.Since(started)))

	s.publish(ctx, events.Event{
		Type:     events.EventAssistHandoff,
		TicketID: ticket.ID,
		ActorID:  s.cfg.AssistantUserID,
		Payload: events.AssistHandoffPayload{
			EventID:         trigger.ID,
			Reason:          evaluation.Reason,
			AnalysisFailure: evaluation.AnalysisFailure,
			Confidence:      evaluation.Confidence,
		},
	})
	return nil
}

// postReply commits the approved reply to the timeline, authored by the
// assigned agent (or the configured assistant identity when unassigned).
func (s *AssistService) postReply(ctx context.Context, ticket *domain.Ticket, reply string, evaluation domain.EvaluationResult, started time.Time) error {
	author := s.cfg.AssistantUserID
	if ticket.AssigneeID != nil {
		author = *ticket.AssigneeID
	}

	comment := &domain.TicketEvent{
		TicketID:  ticket.ID,
		Type:      domain.EventTypeComment,
		CreatedBy: author,
		Payload:   domain.TicketEventPayload{CommentText: reply},
	}
	if err := s.events.Append(ctx, comment); err != nil {
		return err
	}

	s.metrics.RecordAssistOutcome(observability.AssistOutcomeReplied)
	s.logger.Info("ai reply posted",
		zap.String("ticket_id", ticket.ID),
		zap.String("event_id", comment.ID),
		zap.Float64("confidence", evaluation.Confidence),
		zap.Strings("kb_gaps", evaluation.KBGaps),
		zap.Duration("pipeline_duration", time.Since(started)))

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  author,
		Payload: events.TicketCommentAddedPayload{
			EventID:     comment.ID,
			AuthorID:    author,
			AuthorRole:  domain.UserRoleAgent,
			BodyPreview: truncateRunes(reply, 120),
		},
	})
	return nil
}

func (s *AssistService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
