package models

import "github.com/google/uuid"

// Identity is the resolved caller identity every core operation receives.
// There is no ambient session state; handlers resolve it once and pass it down.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanAccess reports whether the identity may see a resource owned by ownerID.
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsAdmin || i.UserID == ownerID
}
