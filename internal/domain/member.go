package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleTeacher       Role = "Teacher"
	RoleVettedMember  Role = "VettedMember"
	RoleMember        Role = "Member"
	RoleGuest         Role = "Guest"
	RoleSafetyTeam    Role = "SafetyTeam"
)

// Roles lists every assignable role, in descending order of privilege.
var Roles = []Role{
	RoleAdministrator,
	RoleSafetyTeam,
	RoleTeacher,
	RoleVettedMember,
	RoleMember,
	RoleGuest,
}

// ParseRole returns the matching role for s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// AdminCapable reports whether the role may perform admin member-management
// and vetting-review operations.
func (r Role) AdminCapable() bool {
	return r == RoleAdministrator
}

// VettingStatusCode is the numeric vetting state stored on the member record.
// It mirrors the current status of the member's vetting application, with
// zero meaning no application was ever submitted.
type VettingStatusCode int32

const (
	VettingCodeNone        VettingStatusCode = 0
	VettingCodeSubmitted   VettingStatusCode = 1
	VettingCodeUnderReview VettingStatusCode = 2
	VettingCodeApproved    VettingStatusCode = 3
	VettingCodeDenied      VettingStatusCode = 4
	VettingCodeOnHold      VettingStatusCode = 5
	VettingCodeWithdrawn   VettingStatusCode = 6
)

var vettingCodeLabels = map[VettingStatusCode]string{
	VettingCodeNone:        "Not Started",
	VettingCodeSubmitted:   "Submitted",
	VettingCodeUnderReview: "Under Review",
	VettingCodeApproved:    "Approved",
	VettingCodeDenied:      "Denied",
	VettingCodeOnHold:      "On Hold",
	VettingCodeWithdrawn:   "Withdrawn",
}

// Label maps the code to its display string. Unrecognized codes map to
// "Unknown" rather than panicking; member rows may outlive code changes.
func (c VettingStatusCode) Label() string {
	if label, ok := vettingCodeLabels[c]; ok {
		return label
	}
	return "Unknown"
}

type Member struct {
	ID uuid.UUID `json:"id"`
	// SceneName is the member's public display name, unique case-insensitively.
	SceneName string `json:"scene_name"`
	// EncryptedLegalName holds the ciphertext of the member's legal name.
	EncryptedLegalName string            `json:"-"`
	Email              string            `json:"email"`
	Pronouns           string            `json:"pronouns,omitempty"`
	Role               Role              `json:"role"`
	IsActive           bool              `json:"is_active"`
	VettingStatus      VettingStatusCode `json:"vetting_status"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	LastLoginAt        *time.Time        `json:"last_login_at,omitempty"`
}
