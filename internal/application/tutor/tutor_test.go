package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

type fakeAssistant struct {
	reply       string
	err         error
	calls       int
	history     []Turn
	instruction string
}

func (f *fakeAssistant) Ask(_ context.Context, history []Turn, instruction string) (string, error) {
	f.calls++
	f.history = history
	f.instruction = instruction
	return f.reply, f.err
}

func TestSystemInstruction(t *testing.T) {
	got := SystemInstruction(subject.Defaults())

	assert.Contains(t, got, "Colégio Gaspar")
	assert.Contains(t, got, "As matérias do aluno são: Matemática, Português.")
}

func TestAsk(t *testing.T) {
	a := &fakeAssistant{reply: "Vamos revisar frações!"}
	svc := NewService(a, nil, nil)
	conv := NewConversation()

	reply, asked, err := svc.Ask(context.Background(), conv, "Como estudar frações?", subject.Defaults())
	require.NoError(t, err)

	assert.True(t, asked)
	assert.Equal(t, "Vamos revisar frações!", reply)
	require.Len(t, a.history, 2, "greeting plus the question")
	assert.Equal(t, Turn{Role: RoleModel, Text: Greeting}, a.history[0])
	assert.Equal(t, RoleUser, a.history[1].Role)
	assert.Contains(t, a.instruction, "Matemática")

	turns := conv.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, Turn{Role: RoleModel, Text: "Vamos revisar frações!"}, turns[2])
}

func TestAsk_BlankInputIsIgnored(t *testing.T) {
	a := &fakeAssistant{reply: "x"}
	svc := NewService(a, nil, nil)
	conv := NewConversation()

	_, asked, err := svc.Ask(context.Background(), conv, "   ", nil)

	require.NoError(t, err)
	assert.False(t, asked)
	assert.Zero(t, a.calls)
	assert.Len(t, conv.Turns(), 1)
}

func TestAsk_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		a    *fakeAssistant
		want string
	}{
		{"failure", &fakeAssistant{err: errors.New("network down")}, FallbackError},
		{"empty reply", &fakeAssistant{reply: "  "}, FallbackEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConversation()
			reply, asked, err := NewService(tt.a, nil, nil).Ask(context.Background(), conv, "oi", nil)

			require.NoError(t, err)
			assert.True(t, asked)
			assert.Equal(t, tt.want, reply)
			assert.Equal(t, tt.want, conv.Turns()[2].Text)
		})
	}
}

func TestAsk_FailedTurnsStayInHistory(t *testing.T) {
	a := &fakeAssistant{err: errors.New("boom")}
	svc := NewService(a, nil, nil)
	conv := NewConversation()
	ctx := context.Background()

	_, _, _ = svc.Ask(ctx, conv, "primeira", nil)
	a.err = nil
	a.reply = "ok"
	_, _, _ = svc.Ask(ctx, conv, "segunda", nil)

	require.Len(t, a.history, 4)
	assert.Equal(t, FallbackError, a.history[2].Text)
}

func TestAsk_Disabled(t *testing.T) {
	a := &fakeAssistant{reply: "x"}
	svc := NewService(a, func() bool { return false }, nil)

	_, asked, err := svc.Ask(context.Background(), NewConversation(), "oi", nil)

	assert.ErrorIs(t, err, shared.ErrTutorDisabled)
	assert.False(t, asked)
	assert.Zero(t, a.calls)
}
