package dto

import (
	"encoding/xml"

	"github.com/spec-kit/identity-service/internal/domain"
)

// TenantInput is a decoded tenant document. Absent fields stay nil so
// create and update can tell "not sent" from "sent empty".
type TenantInput struct {
	ID          string
	Description *string
	Enabled     *bool
}

type tenantEnvelopeJSON struct {
	Tenant *tenantBodyJSON `json:"tenant"`
}

type tenantBodyJSON struct {
	ID          string  `json:"id"`
	Description *string `json:"description"`
	Enabled     *bool   `json:"enabled"`
}

type tenantRequestXML struct {
	XMLName     xml.Name `xml:"tenant"`
	ID          string   `xml:"id,attr"`
	Enabled     *bool    `xml:"enabled,attr"`
	Description *string  `xml:"description"`
	strictXML
}

func (t *tenantRequestXML) unknownXML() string { return t.unknown() }

// DecodeTenant parses a tenant document; nil when the envelope is empty.
func DecodeTenant(format Format, body []byte) (*TenantInput, error) {
	if format == FormatXML {
		var doc tenantRequestXML
		if err := DecodeXML(body, &doc); err != nil {
			return nil, err
		}
		return &TenantInput{ID: doc.ID, Description: doc.Description, Enabled: doc.Enabled}, nil
	}

	var doc tenantEnvelopeJSON
	if err := DecodeJSON(body, &doc); err != nil {
		return nil, err
	}
	if doc.Tenant == nil {
		return nil, nil
	}
	return &TenantInput{ID: doc.Tenant.ID, Description: doc.Tenant.Description, Enabled: doc.Tenant.Enabled}, nil
}

// ToTenant builds a new tenant. It is enabled unless explicitly disabled.
func (in *TenantInput) ToTenant() *domain.Tenant {
	tenant := &domain.Tenant{ID: in.ID, Enabled: true}
	if in.Description != nil {
		tenant.Description = *in.Description
	}
	if in.Enabled != nil {
		tenant.Enabled = *in.Enabled
	}
	return tenant
}

// ToUpdate keeps only the mutable fields that were sent.
func (in *TenantInput) ToUpdate() *domain.TenantUpdate {
	return &domain.TenantUpdate{ID: in.ID, Description: in.Description, Enabled: in.Enabled}
}

type tenantJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

type tenantXMLFields struct {
	ID          string `xml:"id,attr"`
	Enabled     bool   `xml:"enabled,attr"`
	Description string `xml:"description"`
}

type tenantXML struct {
	XMLName xml.Name `xml:"http://docs.openstack.org/idm/api/v1.0 tenant"`
	tenantXMLFields
}

type tenantsJSON struct {
	Values []tenantJSON `json:"values"`
	Links  []Link       `json:"links"`
}

type tenantsXML struct {
	XMLName xml.Name          `xml:"http://docs.openstack.org/idm/api/v1.0 tenants"`
	Tenants []tenantXMLFields `xml:"tenant"`
	Links   []Link            `xml:"link"`
}

func toTenantJSON(t *domain.Tenant) tenantJSON {
	return tenantJSON{ID: t.ID, Description: t.Description, Enabled: t.Enabled}
}

func toTenantXML(t *domain.Tenant) tenantXMLFields {
	return tenantXMLFields{ID: t.ID, Description: t.Description, Enabled: t.Enabled}
}

// TenantDocument renders one tenant.
func TenantDocument(t *domain.Tenant) Document {
	return Document{
		JSON: map[string]tenantJSON{"tenant": toTenantJSON(t)},
		XML:  tenantXML{tenantXMLFields: toTenantXML(t)},
	}
}

// TenantsDocument renders a page of tenants with its navigation links.
func TenantsDocument(page *domain.TenantPage, links []Link) Document {
	values := make([]tenantJSON, 0, len(page.Tenants))
	items := make([]tenantXMLFields, 0, len(page.Tenants))
	for i := range page.Tenants {
		values = append(values, toTenantJSON(&page.Tenants[i]))
		items = append(items, toTenantXML(&page.Tenants[i]))
	}
	if links == nil {
		links = []Link{}
	}
	return Document{
		JSON: map[string]tenantsJSON{"tenants": {Values: values, Links: links}},
		XML:  tenantsXML{Tenants: items, Links: links},
	}
}
