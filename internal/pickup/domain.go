package pickup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("pickup: not found")

// Role identifies the permission class of an account.
type Role string

// Supported roles.
const (
	RoleUser   Role = "user"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleUser, RoleDriver, RoleAdmin}
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalises raw into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("pickup: unknown role %q", raw)
	}
	return role, nil
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles, ignoring invalid entries.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Has reports membership.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	return len(s)
}

// PickupStatus tracks the lifecycle of a pickup request.
type PickupStatus string

// Pickup lifecycle states.
const (
	StatusScheduled  PickupStatus = "scheduled"
	StatusInProgress PickupStatus = "in_progress"
	StatusCompleted  PickupStatus = "completed"
	StatusCancelled  PickupStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s PickupStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PickupRequest is a scheduled collection of waste from a user's address.
// ActualWeight and PointsEarned are only populated once Status is completed.
type PickupRequest struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	ScheduledDate   time.Time    `json:"scheduledDate"`
	Status          PickupStatus `json:"status"`
	EstimatedWeight float64      `json:"estimatedWeight"`
	ActualWeight    *float64     `json:"actualWeight,omitempty"`
	WasteTypes      []string     `json:"wasteTypes"`
	PointsEarned    int          `json:"pointsEarned"`
	CreatedAt       time.Time    `json:"createdAt"`
	Address         string       `json:"address"`
}

// PointsLedgerEntry records one points award. Source is either a pickup ID or an
// activity tag such as "signup-bonus".
type PointsLedgerEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	PointsEarned int       `json:"pointsEarned"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserAccount is a registered identity.
type UserAccount struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
}

// Balance aggregates a user's ledger.
type Balance struct {
	UserID  string              `json:"userId"`
	Total   int                 `json:"total"`
	Entries []PointsLedgerEntry `json:"entries"`
}
