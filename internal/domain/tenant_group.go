package domain

import "time"

// TenantGroup is a named collection scoped to exactly one tenant.
type TenantGroup struct {
	ID               string
	TenantID         string
	TenantGeneration string
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GroupOwner is the tenant incarnation a group was created under. Groups of
// an older generation are invisible and wait for reclamation.
type GroupOwner struct {
	TenantID   string
	Generation string
}

// Owner returns the incarnation g belongs to.
func (g *TenantGroup) Owner() GroupOwner {
	return GroupOwner{TenantID: g.TenantID, Generation: g.TenantGeneration}
}

// GroupUpdate carries the mutable fields of a group.
type GroupUpdate struct {
	ID          string
	Description *string
}

// GroupPage is one page of a group listing within a tenant.
type GroupPage struct {
	TenantID   string
	Groups     []TenantGroup
	Marker     string
	Limit      int
	NextMarker string
}
