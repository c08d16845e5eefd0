package dto

import (
	"encoding/xml"
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

type passwordCredentialsJSON struct {
	PasswordCredentials *credentialsBody `json:"passwordCredentials"`
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

type passwordCredentialsXML struct {
	XMLName  xml.Name `xml:"passwordCredentials"`
	Username string   `xml:"username,attr"`
	Password string   `xml:"password,attr"`
	TenantID string   `xml:"tenantId,attr"`
	strictXML
}

func (p *passwordCredentialsXML) unknownXML() string { return p.unknown() }

// DecodeCredentials parses a passwordCredentials document. A document
// without credentials yields nil.
func DecodeCredentials(format Format, body []byte) (*domain.Credentials, error) {
	if format == FormatXML {
		var doc passwordCredentialsXML
		if err := DecodeXML(body, &doc); err != nil {
			return nil, err
		}
		return &domain.Credentials{Username: doc.Username, Password: doc.Password, TenantID: doc.TenantID}, nil
	}

	var doc passwordCredentialsJSON
	if err := DecodeJSON(body, &doc); err != nil {
		return nil, err
	}
	if doc.PasswordCredentials == nil {
		return nil, nil
	}
	c := doc.PasswordCredentials
	return &domain.Credentials{Username: c.Username, Password: c.Password, TenantID: c.TenantID}, nil
}

type tokenRef struct {
	ID      string `json:"id" xml:"id,attr"`
	Expires string `json:"expires" xml:"expires,attr"`
}

type userRef struct {
	Username string `json:"username" xml:"username,attr"`
	TenantID string `json:"tenantId,omitempty" xml:"tenantId,attr,omitempty"`
}

type authJSON struct {
	Token tokenRef `json:"token"`
	User  userRef  `json:"user"`
}

type authXML struct {
	XMLName xml.Name `xml:"http://docs.openstack.org/idm/api/v1.0 auth"`
	Token   tokenRef `xml:"token"`
	User    userRef  `xml:"user"`
}

// AuthDocument renders a token and the identity it belongs to.
func AuthDocument(token *domain.Token, username string) Document {
	ref := tokenRef{ID: token.ID, Expires: token.ExpiresAt.UTC().Format(time.RFC3339)}
	user := userRef{Username: username, TenantID: token.TenantID}
	return Document{
		JSON: map[string]authJSON{"auth": {Token: ref, User: user}},
		XML:  authXML{Token: ref, User: user},
	}
}
