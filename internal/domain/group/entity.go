// Package group contains study groups, their chat messages and the rules
// that decide which groups a student sees and may post to.
package group

import (
	"slices"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Privacy is the visibility setting chosen when a custom group is created.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// Valid reports whether p is public or private.
func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate
}

// Label returns the display label.
func (p Privacy) Label() string {
	if p == PrivacyPrivate {
		return "Privado"
	}
	return "Público"
}

// CustomPrefix marks the ids of groups created by users.
const CustomPrefix = "custom-"

// Message is a single chat entry. Messages are append-only.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
	IsMe   bool   `json:"isMe"`
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: GROUP
// ══════════════════════════════════════════════════════════════════════════════

// Group is a study group. Official groups are seeded per school grade;
// custom groups are created by students.
type Group struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Privacy      Privacy   `json:"privacy"`
	IsOfficial   bool      `json:"isOfficial"`
	Messages     []Message `json:"messages"`
	MembersCount int       `json:"membersCount"`
}

// IsCustom reports whether the group was created by a user.
func (g Group) IsCustom() bool {
	return strings.HasPrefix(g.ID, CustomPrefix)
}

// LastMessage returns the most recent message, if any.
func (g Group) LastMessage() (Message, bool) {
	if len(g.Messages) == 0 {
		return Message{}, false
	}
	return g.Messages[len(g.Messages)-1], true
}

// Official returns the seeded official groups, one per high-school grade.
func Official() []Group {
	return []Group{
		official("m1", "1º Ano - Médio"),
		official("m2", "2º Ano - Médio"),
		official("m3", "3º Ano - Médio"),
	}
}

func official(id, name string) Group {
	return Group{
		ID:         id,
		Name:       name,
		Privacy:    PrivacyPublic,
		IsOfficial: true,
		Messages:   []Message{},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MEMBERSHIP RULES
// ══════════════════════════════════════════════════════════════════════════════

// Normalize lowercases s and drops every rune that is not an ASCII letter or
// digit, so "2º Ano - Médio" and "2º Ano Médio" normalize alike.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchesGrade reports whether the group's name contains the user's grade
// after normalization. An empty grade matches every group.
func matchesGrade(g Group, userGrade string) bool {
	return strings.Contains(Normalize(g.Name), Normalize(userGrade))
}

// IsVisible reports whether g is listed for a user of the given grade.
// Custom groups are always listed, private ones included; privacy only
// affects how the group is labelled.
func IsVisible(g Group, userGrade string) bool {
	if g.IsOfficial {
		return matchesGrade(g, userGrade)
	}
	return g.Privacy == PrivacyPublic || g.IsCustom()
}

// CanParticipate reports whether a user of the given grade may post to g.
// Privacy is not enforced for custom groups.
func CanParticipate(g Group, userGrade string) bool {
	if g.IsOfficial {
		return matchesGrade(g, userGrade)
	}
	return true
}

// Visible returns the groups listed for a user of the given grade, in
// storage order.
func Visible(groups []Group, userGrade string) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if IsVisible(g, userGrade) {
			out = append(out, g)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// DIRECTORY OPERATIONS
// Operations return a new slice. Only the touched group is copied.
// ══════════════════════════════════════════════════════════════════════════════

// Find returns the group with the given id.
func Find(groups []Group, id string) (Group, bool) {
	i := indexOf(groups, id)
	if i < 0 {
		return Group{}, false
	}
	return groups[i], true
}

// Create appends a custom group. id is the generated part; CustomPrefix is
// added when missing. A blank name is a no-op. Unknown privacy values fall
// back to public.
func Create(groups []Group, id, name string, privacy Privacy) []Group {
	name = strings.TrimSpace(name)
	if name == "" || id == "" {
		return groups
	}
	if !strings.HasPrefix(id, CustomPrefix) {
		id = CustomPrefix + id
	}
	if !privacy.Valid() {
		privacy = PrivacyPublic
	}

	out := make([]Group, 0, len(groups)+1)
	out = append(out, groups...)
	return append(out, Group{
		ID:           id,
		Name:         name,
		Privacy:      privacy,
		IsOfficial:   false,
		Messages:     []Message{},
		MembersCount: 1,
	})
}

// Post appends msg to the group's messages as the user's own message. Blank
// text, an unknown group or a user who cannot participate leave the input
// untouched.
func Post(groups []Group, groupID string, msg Message, userGrade string) []Group {
	if strings.TrimSpace(msg.Text) == "" {
		return groups
	}
	i := indexOf(groups, groupID)
	if i < 0 || !CanParticipate(groups[i], userGrade) {
		return groups
	}

	msg.IsMe = true
	out := slices.Clone(groups)
	g := out[i]
	messages := make([]Message, 0, len(g.Messages)+1)
	messages = append(messages, g.Messages...)
	g.Messages = append(messages, msg)
	out[i] = g
	return out
}

func indexOf(groups []Group, id string) int {
	return slices.IndexFunc(groups, func(g Group) bool { return g.ID == id })
}
