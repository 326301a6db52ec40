package domain

import (
	"strings"

	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
)

// ProfileType identifies how a requester authenticated and therefore which
// upstream address books hold their cases.
type ProfileType string

const (
	ProfilePrivate           ProfileType = "private"
	ProfileCommercial        ProfileType = "commercial"
	ProfilePrivateAttributes ProfileType = "private-attributes"
)

var profileTypes = map[ProfileType]struct{}{
	ProfilePrivate:           {},
	ProfileCommercial:        {},
	ProfilePrivateAttributes: {},
}

// ParseProfileType validates s as a known profile type.
func ParseProfileType(s string) (ProfileType, error) {
	t := ProfileType(strings.TrimSpace(s))
	if _, ok := profileTypes[t]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown profile type: "+s)
	}
	return t, nil
}

func (t ProfileType) String() string { return string(t) }

// Profile is the authenticated requester: an external identifier (BSN or KVK
// number) plus the profile type it belongs to.
type Profile struct {
	ID   string
	Type ProfileType
}

// IsZero reports whether no requester is attached.
func (p Profile) IsZero() bool {
	return p.ID == "" || p.Type == ""
}
