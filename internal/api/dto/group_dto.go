package dto

import (
	"encoding/xml"

	"github.com/spec-kit/identity-service/internal/domain"
)

// GroupInput is a decoded group document.
type GroupInput struct {
	ID          string
	TenantID    string
	Description *string
}

type groupEnvelopeJSON struct {
	Group *groupBodyJSON `json:"group"`
}

type groupBodyJSON struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenantId"`
	Description *string `json:"description"`
}

type groupRequestXML struct {
	XMLName     xml.Name `xml:"group"`
	ID          string   `xml:"id,attr"`
	TenantID    string   `xml:"tenantId,attr"`
	Description *string  `xml:"description"`
	strictXML
}

func (g *groupRequestXML) unknownXML() string { return g.unknown() }

// DecodeGroup parses a group document; nil when the envelope is empty.
func DecodeGroup(format Format, body []byte) (*GroupInput, error) {
	if format == FormatXML {
		var doc groupRequestXML
		if err := DecodeXML(body, &doc); err != nil {
			return nil, err
		}
		return &GroupInput{ID: doc.ID, TenantID: doc.TenantID, Description: doc.Description}, nil
	}

	var doc groupEnvelopeJSON
	if err := DecodeJSON(body, &doc); err != nil {
		return nil, err
	}
	if doc.Group == nil {
		return nil, nil
	}
	return &GroupInput{ID: doc.Group.ID, TenantID: doc.Group.TenantID, Description: doc.Group.Description}, nil
}

// ToGroup builds a new group.
func (in *GroupInput) ToGroup() *domain.TenantGroup {
	group := &domain.TenantGroup{ID: in.ID, TenantID: in.TenantID}
	if in.Description != nil {
		group.Description = *in.Description
	}
	return group
}

// ToUpdate keeps only the description, the one mutable field.
func (in *GroupInput) ToUpdate() *domain.GroupUpdate {
	return &domain.GroupUpdate{ID: in.ID, Description: in.Description}
}

type groupJSON struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Description string `json:"description"`
}

type groupXMLFields struct {
	ID          string `xml:"id,attr"`
	TenantID    string `xml:"tenantId,attr"`
	Description string `xml:"description"`
}

type groupXML struct {
	XMLName xml.Name `xml:"http://docs.openstack.org/idm/api/v1.0 group"`
	groupXMLFields
}

type groupsJSON struct {
	Values []groupJSON `json:"values"`
	Links  []Link      `json:"links"`
}

type groupsXML struct {
	XMLName xml.Name         `xml:"http://docs.openstack.org/idm/api/v1.0 groups"`
	Groups  []groupXMLFields `xml:"group"`
	Links   []Link           `xml:"link"`
}

// GroupDocument renders one group.
func GroupDocument(g *domain.TenantGroup) Document {
	return Document{
		JSON: map[string]groupJSON{"group": {ID: g.ID, TenantID: g.TenantID, Description: g.Description}},
		XML:  groupXML{groupXMLFields: groupXMLFields{ID: g.ID, TenantID: g.TenantID, Description: g.Description}},
	}
}

// GroupsDocument renders a page of a tenant's groups.
func GroupsDocument(page *domain.GroupPage, links []Link) Document {
	values := make([]groupJSON, 0, len(page.Groups))
	items := make([]groupXMLFields, 0, len(page.Groups))
	for _, g := range page.Groups {
		values = append(values, groupJSON{ID: g.ID, TenantID: g.TenantID, Description: g.Description})
		items = append(items, groupXMLFields{ID: g.ID, TenantID: g.TenantID, Description: g.Description})
	}
	if links == nil {
		links = []Link{}
	}
	return Document{
		JSON: map[string]groupsJSON{"groups": {Values: values, Links: links}},
		XML:  groupsXML{Groups: items, Links: links},
	}
}
