package sentrysink

import (
	"net/url"
	"strings"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

// DSN is a parsed Sentry Data Source Name: protocol://pub_key@host/project.
type DSN struct {
	Protocol  string
	PublicKey string
	Host      string
	ProjectID string
}

// ParseDSN parses raw into a DSN, failing with a ConfigError on any
// malformed component.
func ParseDSN(raw string) (*DSN, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, gelferr.ConfigErr(err)
	}
	if u.Scheme == "" || u.User == nil || u.Host == "" {
		return nil, gelferr.ConfigErr(errMalformedDSN)
	}

	projectID := strings.Trim(u.Path, "/")
	if projectID == "" {
		return nil, gelferr.ConfigErr(errMalformedDSN)
	}

	return &DSN{
		Protocol:  u.Scheme,
		PublicKey: u.User.Username(),
		Host:      u.Host,
		ProjectID: projectID,
	}, nil
}

type dsnError string

func (e dsnError) Error() string { return string(e) }

const errMalformedDSN = dsnError("sentry DSN must be protocol://pub_key@host/project_id")
