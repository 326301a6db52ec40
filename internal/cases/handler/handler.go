package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Amsterdam/mijn-decos-join-api/internal/decos"
	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/httputil"
	request "github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/request"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// Service defines the interface for case operations.
type Service interface {
	ListCases(ctx context.Context, profile domain.Profile) ([]zaken.Zaak, error)
	ListDocuments(ctx context.Context, profile domain.Profile, caseToken string) ([]decos.Document, error)
	Download(ctx context.Context, profile domain.Profile, docToken string) (*decos.Blob, error)
}

// Handler serves the cases API. Routes expect the auth middleware to have
// stored the requester profile.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new cases Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the case routes and their legacy aliases. The alias
// paths are the ones embedded in documentsUrl and document urls.
func (h *Handler) Register(r chi.Router) {
	r.Get("/cases", h.handleListCases)
	r.Get("/cases/{token}/documents", h.handleListDocuments)
	r.Get("/documents/{token}", h.handleDownload)

	r.Get("/decosjoin/getvergunningen", h.handleListCases)
	r.Get("/decosjoin/listdocuments/{token}", h.handleListDocuments)
	r.Get("/decosjoin/document/{token}", h.handleDownload)
}

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListCases(ctx, profile)
	if err != nil {
		h.fail(ctx, w, "failed to list cases", err)
		return
	}
	httputil.WriteContent(w, list)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	docs, err := h.service.ListDocuments(ctx, profile, chi.URLParam(r, "token"))
	if err != nil {
		h.fail(ctx, w, "failed to list documents", err)
		return
	}
	httputil.WriteContent(w, docs)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	blob, err := h.service.Download(ctx, profile, chi.URLParam(r, "token"))
	if err != nil {
		h.fail(ctx, w, "failed to download document", err)
		return
	}
	httputil.WriteBlob(w, blob.ContentType, blob.Data)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) (domain.Profile, bool) {
	ctx := r.Context()
	profile := requestcontext.Profile(ctx)
	if profile.IsZero() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "profile missing from context despite auth middleware",
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.Profile{}, false
	}
	return profile, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if de, ok := dErrors.As(err); !ok || dErrors.ToHTTPStatus(de.Code) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", request.GetRequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
