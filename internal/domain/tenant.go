package domain

import "time"

// Tenant is an organizational boundary. ID is immutable after creation.
// Generation is assigned by the repository on create and differs between a
// deleted tenant and a later one re-created under the same id.
type Tenant struct {
	ID          string
	Generation  string
	Description string
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Owner identifies this incarnation of the tenant as a group parent.
func (t *Tenant) Owner() GroupOwner {
	return GroupOwner{TenantID: t.ID, Generation: t.Generation}
}

// TenantUpdate carries the mutable fields of a tenant. ID is only set when
// the payload named one; it must match the target.
type TenantUpdate struct {
	ID          string
	Description *string
	Enabled     *bool
}

// Empty reports whether the update changes nothing.
func (u TenantUpdate) Empty() bool {
	return u.Description == nil && u.Enabled == nil
}

// Apply copies the set fields onto t.
func (u TenantUpdate) Apply(t *Tenant) {
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Enabled != nil {
		t.Enabled = *u.Enabled
	}
}

// TenantPage is one page of a tenant listing.
type TenantPage struct {
	Tenants    []Tenant
	Marker     string
	Limit      int
	NextMarker string
}
