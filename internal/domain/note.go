package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NoteType string

const (
	NoteTypeVetting        NoteType = "Vetting"
	NoteTypeGeneral        NoteType = "General"
	NoteTypeAdministrative NoteType = "Administrative"
	NoteTypeStatusChange   NoteType = "StatusChange"
)

// NoteTypes is the closed set of note types.
var NoteTypes = []NoteType{
	NoteTypeVetting,
	NoteTypeGeneral,
	NoteTypeAdministrative,
	NoteTypeStatusChange,
}

// ParseNoteType returns the matching note type for s. The error message lists
// the valid type names so callers can surface it verbatim.
func ParseNoteType(s string) (NoteType, error) {
	for _, t := range NoteTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid note type %q: must be one of Vetting, General, Administrative, StatusChange", s)
}

// UserNote is a free-text annotation on a member. Notes are never hard
// deleted; removal sets the archived flag.
type UserNote struct {
	ID        uuid.UUID `json:"id"`
	MemberID  uuid.UUID `json:"member_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Type      NoteType  `json:"type"`
	Content   string    `json:"content"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}
