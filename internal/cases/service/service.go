// Package service orchestrates case listing and document retrieval for an
// authenticated requester: it opens resource tokens, calls the Decos client
// and translates upstream failures into client-facing domain errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Amsterdam/mijn-decos-join-api/internal/audit"
	"github.com/Amsterdam/mijn-decos-join-api/internal/decos"
	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/sentinel"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// CaseSource is the upstream case-management system.
type CaseSource interface {
	FetchCases(ctx context.Context, profile domain.Profile) ([]zaken.Zaak, error)
	Documents(ctx context.Context, caseKey, scope string) ([]decos.Document, error)
	Blob(ctx context.Context, blobKey string) (*decos.Blob, error)
}

// TokenOpener opens resource tokens issued for a requester.
type TokenOpener interface {
	Decrypt(token, scope string) (string, error)
}

// AuditPublisher records document access.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service serves the cases API for one requester at a time. It holds no
// per-request state.
type Service struct {
	source  CaseSource
	tokens  TokenOpener
	auditor AuditPublisher
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditor enables the document access trail.
func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func New(source CaseSource, tokens TokenOpener, opts ...Option) *Service {
	s := &Service{
		source: source,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListCases returns every normalized case of the requester.
func (s *Service) ListCases(ctx context.Context, profile domain.Profile) ([]zaken.Zaak, error) {
	if profile.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no requester profile")
	}
	list, err := s.source.FetchCases(ctx, profile)
	if err != nil {
		return nil, translate(err, "failed to fetch cases")
	}
	if list == nil {
		list = []zaken.Zaak{}
	}
	return list, nil
}

// ListDocuments returns the downloadable documents of the case sealed in caseToken.
func (s *Service) ListDocuments(ctx context.Context, profile domain.Profile, caseToken string) ([]decos.Document, error) {
	if profile.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no requester profile")
	}
	caseKey, err := s.open(caseToken, profile)
	if err != nil {
		return nil, err
	}
	docs, err := s.source.Documents(ctx, caseKey, profile.ID)
	if err != nil {
		return nil, translate(err, "failed to fetch documents")
	}
	if docs == nil {
		docs = []decos.Document{}
	}
	return docs, nil
}

// Download returns the content of the document blob sealed in docToken and
// records the access.
func (s *Service) Download(ctx context.Context, profile domain.Profile, docToken string) (*decos.Blob, error) {
	if profile.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no requester profile")
	}
	blobKey, err := s.open(docToken, profile)
	if err != nil {
		return nil, err
	}
	blob, err := s.source.Blob(ctx, blobKey)
	if err != nil {
		return nil, translate(err, "failed to fetch document")
	}

	if s.auditor != nil {
		event := audit.Event{
			Action:          audit.ActionDocumentDownloaded,
			ProfileType:     profile.Type.String(),
			ProfileIDHash:   audit.HashKey(profile.ID),
			DocumentKeyHash: audit.HashKey(blobKey),
			RequestID:       requestcontext.RequestID(ctx),
			Timestamp:       requestcontext.Now(ctx),
		}
		if err := s.auditor.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
	return blob, nil
}

func (s *Service) open(token string, profile domain.Profile) (string, error) {
	value, err := s.tokens.Decrypt(token, profile.ID)
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, sentinel.ErrExpired):
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "resource token has expired")
	case errors.Is(err, sentinel.ErrScopeMismatch), errors.Is(err, sentinel.ErrMalformed):
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid resource token")
	default:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to open resource token")
	}
}

// translate maps Decos client failures to domain errors. Credential problems
// of this service are a gateway failure, not the requester's.
func translate(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	var upstream *decos.UpstreamError
	switch {
	case errors.As(err, &upstream):
		switch {
		case upstream.StatusCode == http.StatusNotFound:
			return dErrors.Wrap(err, dErrors.CodeNotFound, "not found")
		case upstream.StatusCode == http.StatusBadRequest:
			return dErrors.Wrap(err, dErrors.CodeBadRequest, msg)
		case upstream.StatusCode == http.StatusTooManyRequests:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream is busy")
		default:
			return dErrors.Wrap(err, dErrors.CodeBadGateway, msg)
		}
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
