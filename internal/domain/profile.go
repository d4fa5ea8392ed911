package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Profile is the canonical view of a user's document-store record.
type Profile struct {
	UID         string     `json:"uid"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	UserType    string     `json:"userType,omitempty"`
	SellerType  string     `json:"sellerType,omitempty"`
	Status      string     `json:"status,omitempty"`
	Suspended   bool       `json:"suspended"` // mirrors a Block, not Suspension
	SuspendedAt *time.Time `json:"suspendedAt,omitempty"`
	Suspension  Suspension `json:"suspension"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Profile document keys written by this service.
const (
	ProfileKeySuspension  = "suspension"
	ProfileKeySuspended   = "suspended"
	ProfileKeyStatus      = "status"
	ProfileKeySuspendedAt = "suspendedAt"
)

// StatusSuspended is the profile status label mirrored by Block.
const StatusSuspended = "Suspended"

// ProfileRepository is the document store for profiles. Merge creates the
// document when absent and only replaces the given top-level keys.
type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*Profile, error)
	GetMany(ctx context.Context, uids []string) (map[string]*Profile, error)
	Merge(ctx context.Context, uid string, fields map[string]any) error
	Delete(ctx context.Context, uid string) error
}

// DecodeProfile normalizes a stored profile document into the canonical
// schema. Documents written by older clients spell the email and timestamp
// fields several ways; this is the only place those variants are handled.
func DecodeProfile(uid string, raw []byte) (*Profile, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("domain.DecodeProfile: %w", err)
	}

	p := &Profile{
		UID:         uid,
		Email:       strings.ToLower(firstString(doc, "email", "emailLower", "email_address")),
		DisplayName: firstString(doc, "displayName", "name"),
		UserType:    firstString(doc, "userType"),
		SellerType:  firstString(doc, "sellerType"),
		Status:      firstString(doc, ProfileKeyStatus),
		SuspendedAt: decodeTime(doc[ProfileKeySuspendedAt]),
		CreatedAt:   decodeTime(doc["createdAt"]),
		UpdatedAt:   decodeTime(doc["updatedAt"]),
		Suspension:  decodeSuspension(doc[ProfileKeySuspension]),
	}
	if b, ok := doc[ProfileKeySuspended].(bool); ok {
		p.Suspended = b
	}

	return p, nil
}

func firstString(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// decodeSuspension fills defaults for partially written sub-records.
func decodeSuspension(v any) Suspension {
	s := ClearedSuspension()
	m, ok := v.(map[string]any)
	if !ok {
		return s
	}

	s.Active, _ = m["active"].(bool)
	s.Reason, _ = m["reason"].(string)
	s.Channel, _ = m["channel"].(string)
	if list, ok := m["restrictions"].([]any); ok {
		for _, item := range list {
			if str, ok := item.(string); ok {
				if r, ok := ParseRestriction(str); ok {
					s.Restrictions = append(s.Restrictions, r)
				}
			}
		}
	}
	if list, ok := m["loungeIds"].([]any); ok {
		for _, item := range list {
			if str, ok := item.(string); ok && str != "" {
				s.LoungeIDs = append(s.LoungeIDs, str)
			}
		}
	}

	return s
}

// decodeTime accepts epoch millis, RFC 3339 strings and {"_seconds": n}
// timestamp objects.
func decodeTime(v any) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case float64:
		t = time.UnixMilli(int64(x))
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return nil
		}
		t = parsed
	case map[string]any:
		secs, ok := x["_seconds"].(float64)
		if !ok {
			secs, ok = x["seconds"].(float64)
		}
		if !ok {
			return nil
		}
		t = time.Unix(int64(secs), 0)
	default:
		return nil
	}
	t = t.UTC()
	return &t
}
