package ims

import "time"

// ServiceAccountCredentials holds the long-lived JWT integration
// credentials issued for a technical account. The private key never leaves
// the process; only the signed assertion derived from it is transmitted.
type ServiceAccountCredentials struct {
	ClientID           string
	ClientSecret       string
	TechnicalAccountID string
	Org                string
	PrivateKeyPEM      string
	// Scopes is the comma-separated metascope list, e.g.
	// "ent_aem_cloud_api,ent_dam_api".
	Scopes   string
	Endpoint string
}

// AccessToken is the short-lived bearer credential returned by the
// exchange. ExpiresIn is advisory only: a 401 from the remote service is
// authoritative over any locally computed expiry.
type AccessToken struct {
	Value     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"-"`
}
