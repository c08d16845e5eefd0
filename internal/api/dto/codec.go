package dto

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"strings"

	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// Namespace is the XML namespace of every document the service emits.
const Namespace = "http://docs.openstack.org/idm/api/v1.0"

// Format is a wire encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatXML
)

const (
	MIMEJSON = "application/json"
	MIMEXML  = "application/xml"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXML {
		return MIMEXML
	}
	return MIMEJSON
}

// ErrUnsupportedMediaType is returned for request bodies that are neither
// JSON nor XML.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// RequestFormat picks the decoder for a request Content-Type header.
func RequestFormat(contentType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return 0, ErrUnsupportedMediaType
	}
	switch mediaType {
	case MIMEJSON:
		return FormatJSON, nil
	case MIMEXML:
		return FormatXML, nil
	default:
		return 0, ErrUnsupportedMediaType
	}
}

// ResponseFormat answers in XML only when the client asks for it first.
func ResponseFormat(accept string) Format {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case MIMEXML:
			return FormatXML
		case MIMEJSON:
			return FormatJSON
		}
	}
	return FormatJSON
}

// strictXML is embedded in request documents so unexpected attributes and
// child elements are captured and rejected instead of silently dropped.
type strictXML struct {
	ExtraAttrs    []xml.Attr       `xml:",any,attr"`
	ExtraElements []unknownElement `xml:",any"`
}

type unknownElement struct {
	XMLName xml.Name
}

func (s strictXML) unknown() string {
	for _, attr := range s.ExtraAttrs {
		if attr.Name.Local == "xmlns" || attr.Name.Space == "xmlns" {
			continue
		}
		return attr.Name.Local
	}
	if len(s.ExtraElements) > 0 {
		return s.ExtraElements[0].XMLName.Local
	}
	return ""
}

type xmlChecked interface {
	unknownXML() string
}

// DecodeJSON strictly decodes body into v: unknown fields and trailing
// data are rejected.
func DecodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewBadRequest("empty request body", nil)
		}
		return apperrors.NewBadRequest("malformed JSON body", map[string]any{"reason": err.Error()})
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperrors.NewBadRequest("malformed JSON body", map[string]any{"reason": "trailing data"})
	}
	return nil
}

// DecodeXML strictly decodes body into v, which must embed strictXML at
// every level that accepts input.
func DecodeXML(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return apperrors.NewBadRequest("empty request body", nil)
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return apperrors.NewBadRequest("malformed XML body", map[string]any{"reason": err.Error()})
	}
	if checked, ok := v.(xmlChecked); ok {
		if name := checked.unknownXML(); name != "" {
			return apperrors.NewBadRequest("unexpected XML content", map[string]any{"name": name})
		}
	}
	return nil
}

// Encode renders v in the given format. XML output carries the prolog.
func Encode(format Format, v any) ([]byte, error) {
	if format == FormatXML {
		out, err := xml.Marshal(v)
		if err != nil {
			return nil, err
		}
		return append([]byte(xml.Header), out...), nil
	}
	return json.Marshal(v)
}
