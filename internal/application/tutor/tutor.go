// Package tutor runs the AI tutor conversation. The model is reached through
// an Assistant; failures never surface as errors to the student, they become
// fallback replies in the conversation.
package tutor

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
)

const (
	// Greeting opens every conversation.
	Greeting = "Olá! Sou seu Tutor IA. Como posso te ajudar com seus estudos hoje?"

	// FallbackError replaces the reply when the assistant fails.
	FallbackError = "Erro ao conectar com o Tutor. Verifique sua conexão."

	// FallbackEmpty replaces an empty reply.
	FallbackEmpty = "Desculpe, tive um problema ao processar sua resposta."
)

// Role identifies who wrote a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of the conversation.
type Turn struct {
	Role Role
	Text string
}

// Assistant answers the last user turn of history.
type Assistant interface {
	Ask(ctx context.Context, history []Turn, systemInstruction string) (string, error)
}

// SystemInstruction builds the instruction that frames the tutor for the
// student's subjects.
func SystemInstruction(subjects []subject.Subject) string {
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		names = append(names, s.Name)
	}
	return "Você é um tutor acadêmico prestativo para um aluno do Colégio Gaspar. " +
		"As matérias do aluno são: " + strings.Join(names, ", ") + ". " +
		"Dê respostas curtas, motivadoras e focadas em ajudar a organizar estudos e explicar conceitos."
}

// ══════════════════════════════════════════════════════════════════════════════
// CONVERSATION
// ══════════════════════════════════════════════════════════════════════════════

// Conversation is the running chat. It is safe for concurrent use; a second
// question while one is in flight is ignored.
type Conversation struct {
	mu      sync.Mutex
	turns   []Turn
	pending bool
}

// NewConversation starts a conversation with the greeting.
func NewConversation() *Conversation {
	return &Conversation{turns: []Turn{{Role: RoleModel, Text: Greeting}}}
}

// Turns returns a copy of the conversation so far.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.turns)
}

// begin appends the user turn and returns the history to send, or false
// when the input is blank or a question is already pending.
func (c *Conversation) begin(input string) ([]Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(input) == "" || c.pending {
		return nil, false
	}
	c.pending = true
	c.turns = append(c.turns, Turn{Role: RoleUser, Text: input})
	return slices.Clone(c.turns), true
}

func (c *Conversation) finish(reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.turns = append(c.turns, Turn{Role: RoleModel, Text: reply})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Service asks the assistant on behalf of a conversation.
type Service struct {
	assistant Assistant
	enabled   func() bool
	log       *logger.Logger
}

// NewService creates the service. enabled is consulted on every question;
// nil means always enabled.
func NewService(assistant Assistant, enabled func() bool, log *logger.Logger) *Service {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{assistant: assistant, enabled: enabled, log: log.Named("tutor")}
}

// Ask sends input with the conversation history and appends the reply. It
// returns the reply and whether a question was actually asked; blank input
// asks nothing. The only error is shared.ErrTutorDisabled.
func (s *Service) Ask(ctx context.Context, conv *Conversation, input string, subjects []subject.Subject) (string, bool, error) {
	if !s.enabled() || s.assistant == nil {
		return "", false, shared.ErrTutorDisabled
	}
	history, ok := conv.begin(input)
	if !ok {
		return "", false, nil
	}

	start := time.Now()
	reply, err := s.assistant.Ask(ctx, history, SystemInstruction(subjects))
	switch {
	case err != nil:
		s.log.Warn("tutor request failed",
			logger.Latency(time.Since(start)),
			logger.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			logger.Err(err),
		)
		reply = FallbackError
	case strings.TrimSpace(reply) == "":
		s.log.Warn("tutor returned an empty reply", logger.Latency(time.Since(start)))
		reply = FallbackEmpty
	default:
		s.log.Debug("tutor replied", logger.Latency(time.Since(start)), logger.Int("turns", len(history)))
	}

	conv.finish(reply)
	return reply, true, nil
}
