package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/aura-backend/internal/data/repos"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/pkg/textutil"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/platform/openai"
)

const (
	FallbackReply = "I'm here to listen and support you."

	// replyHistoryMessages is how much of the conversation tail the model sees.
	replyHistoryMessages = 10
	// modelInputRunes bounds what the reply and scoring models receive.
	// The stored message and the escalation pipeline always get the full text.
	modelInputRunes = 4000
)

var (
	ErrEmptyMessage         = errors.New("message is required")
	ErrInvalidChannel       = errors.New("invalid channel")
	ErrConversationNotFound = errors.New("conversation not found")
)

const companionSystemPrompt = `You are Aura, a compassionate and professional AI mental health companion.
Validate feelings and show understanding. Provide comfort, hope and encouragement.
Maintain appropriate boundaries and suggest professional help when needed.
Ask one thoughtful follow-up question per response and keep replies to 1-3 short paragraphs.
If someone mentions self-harm, suicide or immediate danger, gently but clearly encourage them
to contact emergency services (911) or the 988 Suicide & Crisis Lifeline, or text HOME to 741741.`

type ChatTurnInput struct {
	PatientID      uuid.UUID
	Channel        types.ConversationChannel
	Message        string
	ConversationID *uuid.UUID
}

type ChatTurn struct {
	Response        string    `json:"response"`
	ConversationID  uuid.UUID `json:"conversation_id"`
	SentimentRating float64   `json:"sentiment_rating"`
}

type CompanionService interface {
	Chat(ctx context.Context, in ChatTurnInput) (*ChatTurn, error)
}

type companionService struct {
	db            *gorm.DB
	log           *logger.Logger
	ai            openai.Client
	scorer        SentimentScorer
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	snapshots     repos.SentimentSnapshotRepo
	trigger       EscalationTrigger
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewCompanionService(
	db *gorm.DB,
	log *logger.Logger,
	ai openai.Client,
	scorer SentimentScorer,
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	snapshots repos.SentimentSnapshotRepo,
	trigger EscalationTrigger,
	metrics *observability.Metrics,
) CompanionService {
	return &companionService{
		db:            db,
		log:           log.With("service", "CompanionService"),
		ai:            ai,
		scorer:        scorer,
		conversations: conversations,
		messages:      messages,
		snapshots:     snapshots,
		trigger:       trigger,
		metrics:       metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *companionService) Chat(ctx context.Context, in ChatTurnInput) (*ChatTurn, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if in.Channel == "" {
		in.Channel = types.ChannelChat
	}
	if !in.Channel.Valid() {
		return nil, ErrInvalidChannel
	}

	var conv *types.Conversation
	var history []openai.Message
	if in.ConversationID != nil && *in.ConversationID != uuid.Nil {
		c, err := s.conversations.GetByID(dbctx.Context{Ctx: ctx}, *in.ConversationID)
		if err != nil {
			return nil, err
		}
		if c == nil || c.PatientID != in.PatientID {
			return nil, ErrConversationNotFound
		}
		conv = c
		prior, err := s.messages.ListByConversation(dbctx.Context{Ctx: ctx}, c.ID, replyHistoryMessages)
		if err != nil {
			s.log.Warn("Conversation history unavailable", "conversation_id", c.ID.String(), "error", err)
		}
		for _, m := range prior {
			role := "user"
			if m.Sender == types.SenderAI {
				role = "assistant"
			}
			history = append(history, openai.Message{Role: role, Content: m.Content})
		}
	}

	// Reply and score are independent; neither may fail the turn.
	modelText := textutil.LastRunes(text, modelInputRunes)
	var reply string
	var score SentimentScore
	var g errgroup.Group
	g.Go(func() error {
		reply = s.generateReply(ctx, history, modelText)
		return nil
	})
	g.Go(func() error {
		score = scoreOrNeutral(ctx, s.log, s.metrics, s.scorer, modelText)
		return nil
	})
	_ = g.Wait()

	now := s.now()
	if conv == nil {
		conv = &types.Conversation{PatientID: in.PatientID, Channel: in.Channel}
	}
	patientMsg := &types.Message{
		PatientID: in.PatientID,
		Sender:    types.SenderPatient,
		Content:   text,
		CreatedAt: now,
	}
	aiMsg := &types.Message{
		PatientID: in.PatientID,
		Sender:    types.SenderAI,
		Content:   reply,
		CreatedAt: now.Add(time.Millisecond),
	}
	snapshot := &types.SentimentSnapshot{
		PatientID:  in.PatientID,
		Rating:     score.Rating,
		Confidence: score.Confidence,
		Source:     string(in.Channel),
		CapturedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if conv.ID == uuid.Nil {
			if err := s.conversations.Create(dbc, conv); err != nil {
				return err
			}
		}
		patientMsg.ConversationID = conv.ID
		aiMsg.ConversationID = conv.ID
		if err := s.messages.Create(dbc, []*types.Message{patientMsg, aiMsg}); err != nil {
			return err
		}
		snapshot.ConversationID = conv.ID
		snapshot.MessageID = &patientMsg.ID
		return s.snapshots.Create(dbc, snapshot)
	})
	if err != nil {
		s.log.Error("Persist chat turn failed", "patient_id", in.PatientID.String(), "error", err)
		return nil, err
	}

	s.trigger.Trigger(ctx, PipelineEvent{
		PatientID:      in.PatientID,
		ConversationID: conv.ID,
		MessageID:      patientMsg.ID,
		SnapshotID:     snapshot.ID,
		Rating:         score.Rating,
		Confidence:     score.Confidence,
		Utterance:      text,
	})

	return &ChatTurn{Response: reply, ConversationID: conv.ID, SentimentRating: score.Rating}, nil
}

func (s *companionService) generateReply(ctx context.Context, history []openai.Message, text string) string {
	if s.ai == nil {
		return FallbackReply
	}
	reply, err := s.ai.GenerateText(ctx, companionSystemPrompt, history, text)
	if err != nil {
		s.log.Warn("Reply generation failed; using fallback", "error", err)
		return FallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}
