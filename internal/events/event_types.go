package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTokenIssued     EventType = "token_issued"
	EventTokenRevoked    EventType = "token_revoked"
	EventTenantCreated   EventType = "tenant_created"
	EventTenantUpdated   EventType = "tenant_updated"
	EventTenantDeleted   EventType = "tenant_deleted"
	EventGroupCreated    EventType = "group_created"
	EventGroupUpdated    EventType = "group_updated"
	EventGroupDeleted    EventType = "group_deleted"
	EventGroupsReclaimed EventType = "groups_reclaimed"
	EventTokensPurged    EventType = "tokens_purged"
)

// AllEventTypes lists every event a service may publish.
var AllEventTypes = []EventType{
	EventTokenIssued,
	EventTokenRevoked,
	EventTenantCreated,
	EventTenantUpdated,
	EventTenantDeleted,
	EventGroupCreated,
	EventGroupUpdated,
	EventGroupDeleted,
	EventGroupsReclaimed,
	EventTokensPurged,
}

// Actor identifies who caused an event. Empty for background work.
type Actor struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Event represents a domain event emitted by services. TokenRef carries a
// token fingerprint, never the bearer value itself.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id,omitempty"`
	GroupID   string      `json:"group_id,omitempty"`
	TokenRef  string      `json:"token_ref,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TenantChangedPayload payload.
type TenantChangedPayload struct {
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// ReclaimedPayload reports how many records a background pass removed.
type ReclaimedPayload struct {
	Count int `json:"count"`
}
