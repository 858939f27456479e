// Package edge defines the provider-neutral view of a custom hostname
// registered with the CDN/edge provider, and the client interface the
// domain lifecycle relies on. Provider responses are normalized into a
// verification descriptor here so the create and status paths never
// diverge.
package edge

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when provider credentials are absent
	ErrNotConfigured = errors.New("edge provider not configured")
	// ErrHostnameNotFound is returned when the provider no longer knows the hostname id
	ErrHostnameNotFound = errors.New("custom hostname not found at provider")
)

// VerificationMethod is the kind of record the user must publish to prove
// ownership of a hostname
type VerificationMethod string

const (
	MethodCNAME VerificationMethod = "cname"
	MethodTXT   VerificationMethod = "txt"
	MethodHTTP  VerificationMethod = "http"
	MethodNone  VerificationMethod = "none"
)

// ValidationRecord is a single provider-reported validation record. Only the
// fields matching one method are set.
type ValidationRecord struct {
	CnameName   string `json:"cname_name,omitempty"`
	CnameTarget string `json:"cname_target,omitempty"`
	TxtName     string `json:"txt_name,omitempty"`
	TxtValue    string `json:"txt_value,omitempty"`
	HTTPURL     string `json:"http_url,omitempty"`
	HTTPBody    string `json:"http_body,omitempty"`
}

// Hostname is the normalized provider state for one custom hostname
type Hostname struct {
	ID                string
	Hostname          string
	Status            string
	Method            VerificationMethod
	Value             string
	ValidationRecords []ValidationRecord
}

// Client is the provider surface the domain lifecycle consumes
type Client interface {
	CreateHostname(ctx context.Context, hostname string) (*Hostname, error)
	FetchStatus(ctx context.Context, providerID string) (*Hostname, error)
	DeleteHostname(ctx context.Context, providerID string) error
}

// Describe derives the verification descriptor from the provider's
// validation records. Priority reflects DNS setup effort for end users:
// CNAME is simplest, TXT next, an HTTP file challenge the most manual.
func Describe(records []ValidationRecord) (VerificationMethod, string) {
	for _, r := range records {
		if r.CnameTarget != "" {
			return MethodCNAME, r.CnameTarget
		}
	}
	for _, r := range records {
		if r.TxtValue != "" {
			return MethodTXT, r.TxtValue
		}
	}
	for _, r := range records {
		if r.HTTPURL != "" {
			return MethodHTTP, r.HTTPURL
		}
	}
	return MethodNone, ""
}
