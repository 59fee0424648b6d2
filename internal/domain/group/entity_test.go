package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(groups []Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Name)
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2º Ano - Médio", "2anomdio"},
		{"2º Ano Médio", "2anomdio"},
		{"9º Ano Fundamental", "9anofundamental"},
		{"  ", ""},
		{"ABC-123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestVisible_OfficialByGrade(t *testing.T) {
	groups := Official()

	visible := Visible(groups, "2º Ano Médio")

	assert.Equal(t, []string{"2º Ano - Médio"}, names(visible))
}

func TestVisible_NoGradeSeesAllOfficial(t *testing.T) {
	assert.Len(t, Visible(Official(), ""), 3)
}

func TestVisible_FundamentalSeesNoOfficial(t *testing.T) {
	assert.Empty(t, Visible(Official(), "9º Ano Fundamental"))
}

func TestVisible_PrivateCustomGroupIsListed(t *testing.T) {
	groups := Create(Official(), "abc", "Grupo de Física", PrivacyPrivate)

	visible := Visible(groups, "3º Ano Médio")

	assert.Equal(t, []string{"3º Ano - Médio", "Grupo de Física"}, names(visible))
}

func TestCreate(t *testing.T) {
	groups := Official()

	out := Create(groups, "abc", "  Revisão ENEM ", "")

	require.Len(t, out, 4)
	assert.Len(t, groups, 3)
	g := out[3]
	assert.Equal(t, "custom-abc", g.ID)
	assert.Equal(t, "Revisão ENEM", g.Name)
	assert.Equal(t, PrivacyPublic, g.Privacy)
	assert.False(t, g.IsOfficial)
	assert.Equal(t, 1, g.MembersCount)
	assert.NotNil(t, g.Messages)
	assert.True(t, g.IsCustom())
}

func TestCreate_BlankNameIsNoop(t *testing.T) {
	groups := Official()

	assert.Equal(t, groups, Create(groups, "abc", " ", PrivacyPublic))
}

func TestPost(t *testing.T) {
	groups := Official()

	out := Post(groups, "m2", Message{ID: "1", Text: "Oi turma", Sender: "Ana"}, "2º Ano Médio")

	g, ok := Find(out, "m2")
	require.True(t, ok)
	require.Len(t, g.Messages, 1)
	assert.Equal(t, Message{ID: "1", Text: "Oi turma", Sender: "Ana", IsMe: true}, g.Messages[0])
	assert.Empty(t, groups[1].Messages, "input must not change")
	last, ok := g.LastMessage()
	assert.True(t, ok)
	assert.Equal(t, "Oi turma", last.Text)
}

func TestPost_KeepsTextAsGiven(t *testing.T) {
	out := Post(Official(), "m2", Message{ID: "1", Text: "  bom dia \n"}, "2º Ano Médio")

	g, ok := Find(out, "m2")
	require.True(t, ok)
	require.Len(t, g.Messages, 1)
	assert.Equal(t, "  bom dia \n", g.Messages[0].Text)
}

func TestPost_Rejected(t *testing.T) {
	groups := Official()
	msg := Message{ID: "1", Text: "Oi", Sender: "Ana"}

	assert.Equal(t, groups, Post(groups, "m3", msg, "2º Ano Médio"), "other grade")
	assert.Equal(t, groups, Post(groups, "nope", msg, "2º Ano Médio"), "unknown group")
	assert.Equal(t, groups, Post(groups, "m2", Message{ID: "2", Text: "  "}, "2º Ano Médio"), "blank text")
}

func TestPost_PrivateCustomGroupAcceptsMessages(t *testing.T) {
	groups := Create(nil, "x", "Privado", PrivacyPrivate)

	out := Post(groups, "custom-x", Message{ID: "1", Text: "olá"}, "9º Ano Fundamental")

	assert.Len(t, out[0].Messages, 1)
	assert.True(t, CanParticipate(out[0], "qualquer"))
}

func TestPrivacyLabel(t *testing.T) {
	assert.Equal(t, "Privado", PrivacyPrivate.Label())
	assert.Equal(t, "Público", PrivacyPublic.Label())
}
