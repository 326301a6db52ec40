package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
)

type VerifierSuite struct {
	suite.Suite
	key      *rsa.PrivateKey
	verifier *Verifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupSuite() {
	var err error
	s.key, err = rsa.GenerateKey(rand.Reader, 2048)
	s.Require().NoError(err)
}

func (s *VerifierSuite) SetupTest() {
	var err error
	s.verifier, err = New(testConfig(true), func(*jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	})
	s.Require().NoError(err)
}

func testConfig(verify bool) Config {
	return Config{
		ClientIDDigiD:       "digid",
		ClientIDEHerkenning: "eherkenning",
		ClientIDYivi:        "yivi",
		VerifySignature:     verify,
	}
}

func (s *VerifierSuite) sign(claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	s.Require().NoError(err)
	return token
}

func (s *VerifierSuite) assertUnauthorized(err error) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "got %v", err)
}

func (s *VerifierSuite) TestProfiles() {
	s.Run("digid uses sub", func() {
		p, err := s.verifier.Verify(s.sign(jwt.MapClaims{"aud": "digid", "sub": "111222333"}))
		s.Require().NoError(err)
		s.Equal(domain.Profile{ID: "111222333", Type: domain.ProfilePrivate}, p)
	})

	s.Run("yivi uses sub", func() {
		p, err := s.verifier.Verify(s.sign(jwt.MapClaims{"aud": []string{"other", "yivi"}, "sub": "attr-1"}))
		s.Require().NoError(err)
		s.Equal(domain.Profile{ID: "attr-1", Type: domain.ProfilePrivateAttributes}, p)
	})

	s.Run("eherkenning prefers the legal subject", func() {
		claims := jwt.MapClaims{"aud": "eherkenning"}
		claims[claimLegalSubjectID] = "333222111"
		claims["urn:etoegang:1.9:IntermediateEntityID:KvKnr"] = "999888777"
		claims[claimEntityConcernedKvK] = "000000000"

		p, err := s.verifier.Verify(s.sign(claims))
		s.Require().NoError(err)
		s.Equal(domain.Profile{ID: "333222111", Type: domain.ProfileCommercial}, p)
	})

	s.Run("eherkenning falls back to the legacy attribute", func() {
		claims := jwt.MapClaims{"aud": "eherkenning"}
		claims[claimEntityConcernedKvK] = "444555666"

		p, err := s.verifier.Verify(s.sign(claims))
		s.Require().NoError(err)
		s.Equal("444555666", p.ID)
	})
}

func (s *VerifierSuite) TestRejections() {
	s.Run("empty token", func() {
		_, err := s.verifier.Verify("  ")
		s.assertUnauthorized(err)
	})

	s.Run("unknown audience", func() {
		_, err := s.verifier.Verify(s.sign(jwt.MapClaims{"aud": "someone-else", "sub": "1"}))
		s.assertUnauthorized(err)
	})

	s.Run("missing identifier", func() {
		_, err := s.verifier.Verify(s.sign(jwt.MapClaims{"aud": "digid"}))
		s.assertUnauthorized(err)
	})

	s.Run("expired", func() {
		_, err := s.verifier.Verify(s.sign(jwt.MapClaims{
			"aud": "digid",
			"sub": "1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}))
		s.assertUnauthorized(err)
		s.ErrorIs(err, jwt.ErrTokenExpired)
	})

	s.Run("signed by another key", func() {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		s.Require().NoError(err)
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"aud": "digid", "sub": "1"}).SignedString(other)
		s.Require().NoError(err)

		_, err = s.verifier.Verify(token)
		s.assertUnauthorized(err)
	})

	s.Run("hmac is not accepted", func() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"aud": "digid", "sub": "1"}).SignedString([]byte("secret"))
		s.Require().NoError(err)

		_, err = s.verifier.Verify(token)
		s.assertUnauthorized(err)
	})
}

func (s *VerifierSuite) TestUnverifiedMode() {
	v, err := New(testConfig(false), nil)
	s.Require().NoError(err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"aud": "digid", "sub": "123"}).SignedString([]byte("anything"))
	s.Require().NoError(err)

	p, err := v.Verify(token)
	s.Require().NoError(err)
	s.Equal("123", p.ID)

	_, err = v.Verify("not-a-jwt")
	s.assertUnauthorized(err)
}

func (s *VerifierSuite) TestNew() {
	_, err := New(testConfig(true), nil)
	s.Error(err)

	cfg := testConfig(false)
	cfg.ClientIDYivi = "digid"
	_, err = New(cfg, nil)
	s.Error(err)
}
