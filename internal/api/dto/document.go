package dto

import "encoding/xml"

// Document holds the JSON and XML renditions of one response body. The two
// share logical field names.
type Document struct {
	JSON any
	XML  any
}

// For selects the rendition for f.
func (d Document) For(f Format) any {
	if f == FormatXML {
		return d.XML
	}
	return d.JSON
}

// Link is a pagination or self reference.
type Link struct {
	Rel  string `json:"rel" xml:"rel,attr"`
	Href string `json:"href" xml:"href,attr"`
}

// VersionDocument describes the API version.
func VersionDocument(id, status, updated, selfHref string) Document {
	mediaTypes := []MediaType{
		{Base: MIMEXML, Type: "application/vnd.openstack.idm+xml;version=1.0"},
		{Base: MIMEJSON, Type: "application/vnd.openstack.idm+json;version=1.0"},
	}
	links := []Link{{Rel: "self", Href: selfHref}}

	return Document{
		JSON: map[string]versionJSON{"version": {
			ID:         id,
			Status:     status,
			Updated:    updated,
			Links:      links,
			MediaTypes: mediaTypesJSON{Values: mediaTypes},
		}},
		XML: versionXML{
			ID:         id,
			Status:     status,
			Updated:    updated,
			MediaTypes: mediaTypes,
			Links:      links,
		},
	}
}

// MediaType advertises an accepted representation.
type MediaType struct {
	Base string `json:"base" xml:"base,attr"`
	Type string `json:"type" xml:"type,attr"`
}

type versionJSON struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Updated    string         `json:"updated"`
	Links      []Link         `json:"links"`
	MediaTypes mediaTypesJSON `json:"media-types"`
}

type mediaTypesJSON struct {
	Values []MediaType `json:"values"`
}

type versionXML struct {
	XMLName    xml.Name    `xml:"http://docs.openstack.org/idm/api/v1.0 version"`
	ID         string      `xml:"id,attr"`
	Status     string      `xml:"status,attr"`
	Updated    string      `xml:"updated,attr"`
	MediaTypes []MediaType `xml:"media-types>media-type"`
	Links      []Link      `xml:"link"`
}

// ExtensionsDocument lists installed extensions; there are none.
func ExtensionsDocument() Document {
	return Document{
		JSON: map[string]map[string][]struct{}{"extensions": {"values": {}}},
		XML: struct {
			XMLName xml.Name `xml:"http://docs.openstack.org/idm/api/v1.0 extensions"`
		}{},
	}
}
