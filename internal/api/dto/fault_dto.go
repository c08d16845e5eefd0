package dto

import (
	"encoding/xml"
	"fmt"
	"sort"

	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

type faultJSON struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Code    int            `json:"code"`
}

type faultXML struct {
	XMLName xml.Name
	Code    int           `xml:"code,attr"`
	Message string        `xml:"message"`
	Details []faultDetail `xml:"details>detail,omitempty"`
}

type faultDetail struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// FaultDocument renders a fault keyed by its wire code, e.g.
// {"itemNotFound": {"message": "...", "code": 404}}.
func FaultDocument(fault *apperrors.DomainError) Document {
	var details []faultDetail
	for k, v := range fault.Details {
		details = append(details, faultDetail{Name: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })

	return Document{
		JSON: map[string]faultJSON{fault.Code: {
			Message: fault.Message,
			Details: fault.Details,
			Code:    fault.HTTPStatus,
		}},
		XML: faultXML{
			XMLName: xml.Name{Space: Namespace, Local: fault.Code},
			Code:    fault.HTTPStatus,
			Message: fault.Message,
			Details: details,
		},
	}
}
