package remote

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// TransportKind classifies a failed request so callers can show an
// actionable message (bad DNS vs bad certificate vs slow remote).
type TransportKind string

const (
	TransportDNS        TransportKind = "dns"
	TransportTLS        TransportKind = "tls"
	TransportTimeout    TransportKind = "timeout"
	TransportHTTPStatus TransportKind = "http_status"
	TransportOther      TransportKind = "other"
)

// TransportError wraps a network or HTTP-level failure talking to the
// remote webservice.
type TransportError struct {
	Kind       TransportKind
	Resource   string
	StatusCode int
	Snippet    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == TransportHTTPStatus {
		return fmt.Sprintf("remote %s: HTTP %d: %s", e.Resource, e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("remote %s: %s error: %v", e.Resource, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnparsableResponse means the remote answered with something that is
// neither JSON nor XML, typically an HTML login or WAF page. Snippet is
// bounded to snippetLen bytes.
type UnparsableResponse struct {
	Resource string
	Snippet  string
}

func (e *UnparsableResponse) Error() string {
	return fmt.Sprintf("remote %s: response is neither JSON nor XML (login page or WAF?): %s", e.Resource, e.Snippet)
}

// NotFoundError reports an entity absent on the remote shop.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("remote %s %d not found", e.Resource, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// classify maps a transport failure onto its kind by inspecting the
// error chain.
func classify(err error) TransportKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TransportDNS
	}
	var certErr *x509.CertificateInvalidError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return TransportTLS
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TransportTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TransportTimeout
	}
	return TransportOther
}
