package league

import (
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformESPN  Platform = "espn"
	PlatformYahoo Platform = "yahoo"
)

func ParsePlatform(v string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(v))) {
	case PlatformESPN:
		return PlatformESPN, nil
	case PlatformYahoo:
		return PlatformYahoo, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", v)
	}
}

func (p Platform) String() string {
	return string(p)
}

// Credential carries the platform secrets supplied with a request.
// ESPN uses the espn_s2/SWID cookie pair; Yahoo uses OAuth2 tokens.
type Credential struct {
	EspnS2       string
	SWID         string
	AuthCode     string
	AccessToken  string
	RefreshToken string
}

func (c Credential) HasCookie() bool {
	return strings.TrimSpace(c.EspnS2) != "" && strings.TrimSpace(c.SWID) != ""
}

// League is the relational activation record, one per (LeagueID, Platform).
type League struct {
	LeagueID    string
	Platform    Platform
	Credential  string
	SWID        string
	Active      bool
	Updated     bool
	LastUpdated *time.Time
	LastViewed  *time.Time
	ViewCount   int64
}

// StoredCredential maps the durable columns back to a request credential.
func (l League) StoredCredential() Credential {
	switch l.Platform {
	case PlatformESPN:
		return Credential{EspnS2: l.Credential, SWID: l.SWID}
	case PlatformYahoo:
		return Credential{RefreshToken: l.Credential}
	default:
		return Credential{}
	}
}

// Activation is the state written on a successful activation commit.
// Blank credential fields leave the stored values untouched.
type Activation struct {
	LeagueID   string
	Platform   Platform
	Credential string
	SWID       string
}

func (a Activation) Validate() error {
	if strings.TrimSpace(a.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if _, err := ParsePlatform(string(a.Platform)); err != nil {
		return err
	}

	return nil
}

// ActivationFor derives the durable credential to persist for a platform.
func ActivationFor(leagueID string, platform Platform, cred Credential) Activation {
	out := Activation{LeagueID: leagueID, Platform: platform}
	switch platform {
	case PlatformESPN:
		out.Credential = strings.TrimSpace(cred.EspnS2)
		out.SWID = strings.TrimSpace(cred.SWID)
	case PlatformYahoo:
		out.Credential = strings.TrimSpace(cred.RefreshToken)
	}
	return out
}
