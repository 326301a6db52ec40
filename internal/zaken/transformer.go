package zaken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

const (
	defaultFanout             = 12
	defaultDocumentsURLPrefix = "/decosjoin/listdocuments/"
)

// TokenIssuer seals an upstream key for one requester.
type TokenIssuer interface {
	Encrypt(value, scope string) (string, error)
}

// Transformer turns raw upstream folders into normalized zaken.
type Transformer struct {
	registry   *Registry
	tokens     TokenIssuer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	fanout     int
	docsPrefix string
}

type Option func(*Transformer)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transformer) {
		t.metrics = m
	}
}

// WithFanout bounds the number of concurrent deferred enrichments.
func WithFanout(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.fanout = n
		}
	}
}

// WithDocumentsURLPrefix changes the path documentsUrl tokens are appended to.
func WithDocumentsURLPrefix(prefix string) Option {
	return func(t *Transformer) {
		t.docsPrefix = prefix
	}
}

func NewTransformer(registry *Registry, tokens TokenIssuer, opts ...Option) *Transformer {
	t := &Transformer{
		registry:   registry,
		tokens:     tokens,
		logger:     slog.Default(),
		tracer:     otel.Tracer("github.com/Amsterdam/mijn-decos-join-api/internal/zaken"),
		fanout:     defaultFanout,
		docsPrefix: defaultDocumentsURLPrefix,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type held struct {
	zaak     Zaak
	caseType *CaseType
}

// Transform normalizes records for the requester identified by scope. Records
// are processed in identifier order; zaken with a deferred hook are enriched
// through wf and placed after all others, grouped by case type.
func (t *Transformer) Transform(ctx context.Context, records []RawRecord, scope string, wf WorkflowSource) ([]Zaak, error) {
	today := civil.DateOf(requestcontext.Now(ctx))

	sorted := make([]RawRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return markOf(sorted[i]) < markOf(sorted[j])
	})

	batch := &Batch{}
	var deferred []held

	for _, rec := range sorted {
		discriminator, ok := rec.Get("text45").(string)
		if !ok {
			t.metrics.IncDropped(metrics.DropNoDiscriminator)
			continue
		}
		ct, ok := t.registry.Lookup(discriminator)
		if !ok {
			t.metrics.IncDropped(metrics.DropUnknownType)
			continue
		}
		if ct.Valid != nil && !ct.Valid(rec) {
			t.metrics.IncDropped(metrics.DropInvalidSource)
			continue
		}

		z := t.build(ctx, rec, ct, today)

		if reason, drop := suppressed(z); drop {
			t.metrics.IncDropped(reason)
			continue
		}

		token, err := t.tokens.Encrypt(rec.Key, scope)
		if err != nil {
			return nil, fmt.Errorf("seal documents token: %w", err)
		}
		z[FieldDocumentsURL] = t.docsPrefix + token

		if ct.Defer == nil {
			batch.Append(z)
			t.metrics.IncTransformed(ct.Discriminator)
			continue
		}
		deferred = append(deferred, held{zaak: z, caseType: ct})
	}

	if err := t.runDeferred(ctx, deferred, batch, wf); err != nil {
		return nil, err
	}
	return batch.Items(), nil
}

func (t *Transformer) build(ctx context.Context, rec RawRecord, ct *CaseType, today civil.Date) Zaak {
	dateRequest := t.parse(ctx, FieldDateRequest, ToDate, rec.StringField("document_date"))
	z := Zaak{
		FieldID:                 rec.Key,
		FieldCaseType:           ct.Discriminator,
		FieldTitle:              ct.Title,
		FieldIdentifier:         rec.StringField("mark"),
		FieldDateRequest:        dateRequest,
		FieldDateWorkflowActive: dateRequest,
		FieldStatus:             Translate(rec.StringField("title"), ct.StatusTranslations, true),
		FieldDecision:           Translate(rec.StringField("dfunction"), ct.DecisionTranslations, true),
		FieldDateDecision:       t.parse(ctx, FieldDateDecision, ToDate, rec.StringField("date5")),
		FieldDescription:        rec.StringField("subject1"),
		FieldProcessed:          rec.Has("processed") && !IsAbsent(rec.Get("processed")),
	}
	for _, f := range ct.Fields {
		z[f.Name] = t.parse(ctx, f.Name, f.Parse, rec.Get(f.From))
	}
	if ct.AfterTransform != nil {
		ct.AfterTransform(z, today)
	}
	return z
}

// parse applies fn and degrades failures to null.
func (t *Transformer) parse(ctx context.Context, field string, fn ParseFunc, raw any) any {
	v, err := fn(raw)
	if err != nil {
		t.metrics.IncParseError(field)
		level := slog.LevelWarn
		var pe *ParseError
		if errors.As(err, &pe) && pe.Temporal() {
			level = slog.LevelError
		}
		t.logger.Log(ctx, level, "failed to parse zaak field",
			"request_id", requestcontext.RequestID(ctx),
			"field", field,
			"error", err,
		)
		return nil
	}
	return v
}

func (t *Transformer) runDeferred(ctx context.Context, deferred []held, batch *Batch, wf WorkflowSource) error {
	if len(deferred) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { t.metrics.ObserveDeferLatency(time.Since(start)) }()

	sort.SliceStable(deferred, func(i, j int) bool {
		return deferred[i].zaak.CaseType() < deferred[j].zaak.CaseType()
	})

	ctx, span := t.tracer.Start(ctx, "zaken.defer", trace.WithAttributes(attribute.Int("zaken.deferred", len(deferred))))
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.fanout)
	for _, h := range deferred {
		if h.caseType.Defer.Enrich == nil {
			continue
		}
		g.Go(func() error {
			if err := h.caseType.Defer.Enrich(gctx, h.zaak, wf); err != nil {
				return fmt.Errorf("enrich %s %s: %w", h.zaak.CaseType(), h.zaak.ID(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deferred enrichment failed")
		return err
	}

	for _, h := range deferred {
		if h.caseType.Defer.Place != nil {
			h.caseType.Defer.Place(h.zaak, batch)
		} else {
			batch.Append(h.zaak)
		}
		t.metrics.IncTransformed(h.caseType.Discriminator)
	}
	return nil
}

var (
	pendingPaymentDescriptions = []string{"wacht op online betaling", "wacht op ideal betaling"}
	voidedDecisions            = []string{"buiten behandeling", "geannuleerd", "geen aanvraag of dubbel"}
)

const deletedMarker = "*verwijder"

// suppressed applies the filters shared by every case type.
func suppressed(z Zaak) (string, bool) {
	description, hasDescription := z.String(FieldDescription)
	if hasDescription && InFold(description, pendingPaymentDescriptions...) {
		return metrics.DropPendingPayment, true
	}
	if decision, ok := z.String(FieldDecision); ok && InFold(decision, voidedDecisions...) {
		return metrics.DropVoided, true
	}
	if hasDescription && HasPrefixFold(description, deletedMarker) {
		return metrics.DropDeleted, true
	}
	return "", false
}

func markOf(r RawRecord) string {
	s, _ := r.Get("mark").(string)
	return s
}
