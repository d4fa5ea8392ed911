package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Restriction is one scope of platform functionality that can be revoked.
type Restriction string

const (
	RestrictAll     Restriction = "ALL"
	RestrictChat    Restriction = "CHAT"
	RestrictLounges Restriction = "LOUNGES"
)

// minReasonLen is the shortest accepted suspension reason after trimming.
const minReasonLen = 3

// ParseRestriction accepts the exact upper-case restriction names.
func ParseRestriction(s string) (Restriction, bool) {
	switch r := Restriction(s); r {
	case RestrictAll, RestrictChat, RestrictLounges:
		return r, true
	default:
		return "", false
	}
}

// Suspension is the feature-restriction sub-record of a profile. It is
// independent of Account.Disabled: a suspended user can still sign in.
//
// Records built by NewSuspension hold these invariants: when Restrictions
// contains RestrictAll it is the only entry, and LoungeIDs is non-empty iff
// RestrictLounges is present. Decoded documents are kept as stored.
type Suspension struct {
	Active       bool          `json:"active"`
	Reason       string        `json:"reason"`
	Restrictions []Restriction `json:"restrictions"`
	LoungeIDs    []string      `json:"loungeIds"`
	Channel      string        `json:"channel"`
}

// SuspendParams is caller input for a suspension. A nil Restrictions slice
// means "not supplied" and defaults to ALL.
type SuspendParams struct {
	Reason       string
	Restrictions []string
	LoungeIDs    []string
	Channel      string
}

// NewSuspension validates params and returns the normalized active suspension.
func NewSuspension(p SuspendParams) (Suspension, error) {
	reason := strings.TrimSpace(p.Reason)
	if len(reason) < minReasonLen {
		return Suspension{}, invalid("reason", fmt.Sprintf("reason is required (min %d chars)", minReasonLen))
	}

	raw := p.Restrictions
	if raw == nil {
		raw = []string{string(RestrictAll)}
	}
	if len(raw) == 0 {
		return Suspension{}, invalid("restrictions", "at least one restriction is required")
	}

	var bad []string
	restrictions := make([]Restriction, 0, len(raw))
	for _, v := range raw {
		r, ok := ParseRestriction(v)
		if !ok {
			bad = append(bad, v)
			continue
		}
		if !slices.Contains(restrictions, r) {
			restrictions = append(restrictions, r)
		}
	}
	if len(bad) > 0 {
		return Suspension{}, invalid("restrictions", "invalid restrictions: "+strings.Join(bad, ","))
	}

	loungeIDs := make([]string, 0, len(p.LoungeIDs))
	for _, id := range p.LoungeIDs {
		if id = strings.TrimSpace(id); id != "" {
			loungeIDs = append(loungeIDs, id)
		}
	}

	if slices.Contains(restrictions, RestrictAll) {
		restrictions = []Restriction{RestrictAll}
	}
	// loungeIds only scope a LOUNGES restriction.
	if !slices.Contains(restrictions, RestrictLounges) {
		loungeIDs = []string{}
	} else if len(loungeIDs) == 0 {
		return Suspension{}, invalid("loungeIds", "loungeIds required when restrictions include LOUNGES")
	}

	return Suspension{
		Active:       true,
		Reason:       reason,
		Restrictions: restrictions,
		LoungeIDs:    loungeIDs,
		Channel:      strings.TrimSpace(p.Channel),
	}, nil
}

// ClearedSuspension is the terminal state written by Unsuspend.
func ClearedSuspension() Suspension {
	return Suspension{
		Restrictions: []Restriction{},
		LoungeIDs:    []string{},
	}
}

// AccessDecision is the outcome of Evaluate. Reason is set only on denial.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Evaluate decides whether feature may be used. scopeID is the lounge being
// entered and is only consulted for RestrictLounges. The result must not be
// cached: the suspension can change between calls.
func (s Suspension) Evaluate(feature Restriction, scopeID string) AccessDecision {
	if !s.Active {
		return AccessDecision{Allowed: true}
	}

	if slices.Contains(s.Restrictions, RestrictAll) {
		return s.deny("Suspended")
	}

	switch feature {
	case RestrictChat:
		if slices.Contains(s.Restrictions, RestrictChat) {
			return s.deny("Chat access suspended")
		}
	case RestrictLounges:
		if slices.Contains(s.Restrictions, RestrictLounges) {
			// An empty lounge list restricts every lounge.
			if scopeID == "" || len(s.LoungeIDs) == 0 || slices.Contains(s.LoungeIDs, scopeID) {
				return s.deny("Lounge access suspended")
			}
		}
	}

	return AccessDecision{Allowed: true}
}

func (s Suspension) deny(fallback string) AccessDecision {
	if s.Reason != "" {
		return AccessDecision{Reason: s.Reason}
	}
	return AccessDecision{Reason: fallback}
}
