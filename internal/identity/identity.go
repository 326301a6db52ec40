// Package identity turns an OIDC ID token issued by the municipal login broker
// into the requester profile used to scope Decos lookups.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
)

const (
	claimSubject            = "sub"
	claimLegalSubjectID     = "urn:etoegang:core:LegalSubjectID"
	claimEntityConcernedKvK = "urn:etoegang:1.9:EntityConcernedID:KvKnr"
)

// Config maps the broker's client ids (token audiences) to profile types.
type Config struct {
	ClientIDDigiD       string
	ClientIDEHerkenning string
	ClientIDYivi        string

	// VerifySignature false accepts unsigned or self-signed tokens. Only for
	// local development and tests.
	VerifySignature bool
}

// Verifier validates ID tokens and resolves the requester profile.
type Verifier struct {
	keys      jwt.Keyfunc
	verify    bool
	parser    *jwt.Parser
	audiences map[string]domain.ProfileType
}

// NewJWKSKeyfunc fetches and keeps refreshing the signing keys published at
// jwksURL until ctx is cancelled.
func NewJWKSKeyfunc(ctx context.Context, jwksURL string) (jwt.Keyfunc, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", jwksURL, err)
	}
	return k.Keyfunc, nil
}

// New creates a verifier. keys resolves signing keys and is required when
// signatures are verified.
func New(cfg Config, keys jwt.Keyfunc) (*Verifier, error) {
	if cfg.VerifySignature && keys == nil {
		return nil, errors.New("signing keys are required when verifying signatures")
	}
	audiences := make(map[string]domain.ProfileType, 3)
	for clientID, profileType := range map[string]domain.ProfileType{
		cfg.ClientIDDigiD:       domain.ProfilePrivate,
		cfg.ClientIDEHerkenning: domain.ProfileCommercial,
		cfg.ClientIDYivi:        domain.ProfilePrivateAttributes,
	} {
		if clientID != "" {
			audiences[clientID] = profileType
		}
	}
	if len(audiences) != 3 {
		return nil, errors.New("client ids must be set and distinct")
	}
	return &Verifier{
		keys:      keys,
		verify:    cfg.VerifySignature,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
		audiences: audiences,
	}, nil
}

// Verify validates token and returns the profile it identifies. Every failure
// is an unauthorized domain error.
func (v *Verifier) Verify(token string) (domain.Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Profile{}, dErrors.New(dErrors.CodeUnauthorized, "token not found")
	}

	claims := jwt.MapClaims{}
	if v.verify {
		parsed, err := v.parser.ParseWithClaims(token, claims, v.keys)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return domain.Profile{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token has expired")
			}
			return domain.Profile{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
		}
		if !parsed.Valid {
			return domain.Profile{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
	} else {
		if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
			return domain.Profile{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
		}
	}

	profileType, err := v.profileType(claims)
	if err != nil {
		return domain.Profile{}, err
	}
	id, err := externalID(profileType, claims)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{ID: id, Type: profileType}, nil
}

func (v *Verifier) profileType(claims jwt.MapClaims) (domain.ProfileType, error) {
	aud, err := claims.GetAudience()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid audience")
	}
	for _, a := range aud {
		if t, ok := v.audiences[a]; ok {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeUnauthorized, "unknown audience")
}

// externalID picks the identifying claim for the profile type. eHerkenning
// tokens carry the legal subject since version 1.13, with or without chained
// authorization; older tokens only carry the entity-concerned KVK number.
func externalID(profileType domain.ProfileType, claims jwt.MapClaims) (string, error) {
	attr := claimSubject
	if profileType == domain.ProfileCommercial {
		attr = claimEntityConcernedKvK
		if _, ok := claims[claimLegalSubjectID]; ok {
			attr = claimLegalSubjectID
		}
	}
	id, ok := claims[attr].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token has no identifier")
	}
	return strings.TrimSpace(id), nil
}
