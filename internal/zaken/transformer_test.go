package zaken

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken/metrics"
)

// =============================================================================
// Transformer Test Suite
// =============================================================================
// Justification for unit tests: ordering of immediate and deferred zaken,
// suppression filters and parse degradation are only observable on the
// transformer's direct output.

type TransformerSuite struct {
	suite.Suite
	tokens   *fakeTokens
	workflow *fakeWorkflow
	metrics  *metrics.Metrics
	registry *Registry
	tr       *Transformer
}

func TestTransformerSuite(t *testing.T) {
	suite.Run(t, new(TransformerSuite))
}

func (s *TransformerSuite) SetupTest() {
	s.tokens = &fakeTokens{}
	s.workflow = &fakeWorkflow{dates: map[string]civil.Date{}}
	s.metrics = metrics.New(prometheus.NewRegistry())

	var err error
	s.registry, err = NewRegistry([]CaseType{
		{
			Discriminator: "Plain",
			Title:         "Plain case",
			Fields: []Field{
				{Name: FieldDateStart, From: "date6", Parse: ToDate},
				{Name: "timeStart", From: "text10", Parse: ToTime},
			},
			DecisionTranslations: Translations{T("Verleend met borden", "Verleend"), Hide("Nog niet bekend")},
		},
		{
			Discriminator: "Paid",
			Title:         "Paid case",
			Valid: func(r RawRecord) bool {
				return r.StringField("text11") != "Nogniet"
			},
		},
		{
			Discriminator: "Workflow B",
			Title:         "Workflow B",
			Defer:         &Deferred{Enrich: s.enrichWith("B step")},
		},
		{
			Discriminator: "Workflow A",
			Title:         "Workflow A",
			Defer:         &Deferred{Enrich: s.enrichWith("A step")},
		},
	})
	s.Require().NoError(err)

	s.tr = NewTransformer(s.registry, s.tokens,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithFanout(4),
	)
}

func (s *TransformerSuite) enrichWith(step string) func(context.Context, Zaak, WorkflowSource) error {
	return func(ctx context.Context, z Zaak, wf WorkflowSource) error {
		d, err := wf.WorkflowDate(ctx, z.ID(), step)
		if err != nil {
			return err
		}
		if d != nil {
			z[FieldDateWorkflowActive] = *d
		}
		return nil
	}
}

// =============================================================================
// Fakes
// =============================================================================

type fakeTokens struct {
	err error
}

func (f *fakeTokens) Encrypt(value, scope string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "tok(" + value + "|" + scope + ")", nil
}

type fakeWorkflow struct {
	mu    sync.Mutex
	dates map[string]civil.Date
	calls []string
	err   error
}

func (f *fakeWorkflow) WorkflowDate(_ context.Context, caseKey, step string) (*civil.Date, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, caseKey+"/"+step)
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.dates[caseKey]; ok {
		return &d, nil
	}
	return nil, nil
}

func record(key, discriminator, mark string, fields map[string]any) RawRecord {
	f := map[string]any{"text45": discriminator, "mark": mark}
	for k, v := range fields {
		f[k] = v
	}
	return RawRecord{Key: key, Fields: f}
}

func ids(zaken []Zaak) []string {
	out := make([]string, len(zaken))
	for i, z := range zaken {
		out[i] = z.ID()
	}
	return out
}

// =============================================================================
// Base fields
// =============================================================================

func (s *TransformerSuite) TestBaseFields() {
	ctx := context.Background()

	out, err := s.tr.Transform(ctx, []RawRecord{
		record("K1", "Plain", "Z/21/1", map[string]any{
			"document_date": "2021-03-01T00:00:00",
			"title":         "In behandeling",
			"dfunction":     "Verleend met borden",
			"subject1":      "  Verbouwing ",
			"date6":         "2021-04-27T00:00:00",
			"text10":        "9.5",
			"processed":     true,
		}),
	}, "123456789", s.workflow)
	s.Require().NoError(err)
	s.Require().Len(out, 1)

	z := out[0]
	march := civil.Date{Year: 2021, Month: time.March, Day: 1}
	s.Equal("K1", z.ID())
	s.Equal("Plain", z.CaseType())
	s.Equal("Plain case", z[FieldTitle])
	s.Equal("Z/21/1", z[FieldIdentifier])
	s.Equal(march, z[FieldDateRequest])
	s.Equal(march, z[FieldDateWorkflowActive])
	s.Equal("In behandeling", z[FieldStatus])
	s.Equal("Verleend", z[FieldDecision])
	s.Nil(z[FieldDateDecision])
	s.Equal("Verbouwing", z[FieldDescription])
	s.Equal(true, z[FieldProcessed])
	s.Equal(civil.Date{Year: 2021, Month: time.April, Day: 27}, z[FieldDateStart])
	s.Equal("09:50", z["timeStart"])
	s.Equal("/decosjoin/listdocuments/tok(K1|123456789)", z[FieldDocumentsURL])
}

func (s *TransformerSuite) TestHiddenDecisionIsNull() {
	out, err := s.tr.Transform(context.Background(), []RawRecord{
		record("K1", "Plain", "1", map[string]any{"dfunction": "nog niet bekend"}),
	}, "scope", s.workflow)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Contains(out[0], FieldDecision)
	s.Nil(out[0][FieldDecision])
}

func (s *TransformerSuite) TestParseFailureDegradesToNull() {
	out, err := s.tr.Transform(context.Background(), []RawRecord{
		record("K1", "Plain", "1", map[string]any{"date6": "not-a-date", "text10": "later"}),
	}, "scope", s.workflow)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Nil(out[0][FieldDateStart])
	s.Nil(out[0]["timeStart"])
	s.Equal(1.0, promtest.ToFloat64(s.metrics.ParseErrors.WithLabelValues(FieldDateStart)))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.ParseErrors.WithLabelValues("timeStart")))
}

func (s *TransformerSuite) TestParseFailureLogLevels() {
	registry, err := NewRegistry([]CaseType{{
		Discriminator: "Counted",
		Title:         "Counted case",
		Fields: []Field{
			{Name: FieldDateStart, From: "date6", Parse: ToDate},
			{Name: "count", From: "num6", Parse: ToInt},
		},
	}})
	s.Require().NoError(err)

	var buf bytes.Buffer
	tr := NewTransformer(registry, s.tokens, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	_, err = tr.Transform(context.Background(), []RawRecord{
		record("K1", "Counted", "1", map[string]any{"date6": "not-a-date", "num6": "twelve"}),
	}, "scope", s.workflow)
	s.Require().NoError(err)

	levels := map[string]string{}
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		s.Require().NoError(dec.Decode(&line))
		if field, ok := line["field"].(string); ok {
			levels[field] = line["level"].(string)
		}
	}
	s.Equal("ERROR", levels[FieldDateStart], "unparseable dates are errors")
	s.Equal("WARN", levels["count"])
}

// =============================================================================
// Classification and filters
// =============================================================================

func (s *TransformerSuite) TestUnclassifiableRecordsAreDropped() {
	out, err := s.tr.Transform(context.Background(), []RawRecord{
		{Key: "no-discriminator", Fields: map[string]any{"mark": "1"}},
		record("unknown", "Something else", "2", nil),
		record("case-differs", "plain", "3", nil),
		record("kept", "Plain", "4", nil),
	}, "scope", s.workflow)
	s.Require().NoError(err)
	s.Equal([]string{"kept"}, ids(out))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Dropped.WithLabelValues(metrics.DropNoDiscriminator)))
	s.Equal(2.0, promtest.ToFloat64(s.metrics.Dropped.WithLabelValues(metrics.DropUnknownType)))
}

func (s *TransformerSuite) TestSourceValidity() {
	out, err := s.tr.Transform(context.Background(), []RawRecord{
		record("unpaid", "Paid", "1", map[string]any{"text11": "Nogniet"}),
		record("paid", "Paid", "2", map[string]any{"text11": "Voldaan"}),
	}, "scope", s.workflow)
	s.Require().NoError(err)
	s.Equal([]string{"paid"}, ids(out))
}

func (s *TransformerSuite) TestSuppressionFilters() {
	s.Run("pending online payment in any case", func() {
		out, err := s.tr.Transform(context.Background(), []RawRecord{
			record("a", "Plain", "1", map[string]any{"subject1": "WACHT OP ONLINE BETALING"}),
			record("b", "Workflow A", "2", map[string]any{"subject1": "Wacht op iDEAL betaling"}),
			record("c", "Plain", "3", map[string]any{"subject1": "Betaald"}),
		}, "scope", s.workflow)
		s.Require().NoError(err)
		s.Equal([]string{"c"}, ids(out))
	})

	s.Run("administratively voided decisions", func() {
		out, err := s.tr.Transform(context.Background(), []RawRecord{
			record("a", "Plain", "1", map[string]any{"dfunction": "Buiten behandeling"}),
			record("b", "Plain", "2", map[string]any{"dfunction": "geannuleerd"}),
			record("c", "Plain", "3", map[string]any{"dfunction": "Geen aanvraag of dubbel"}),
			record("d", "Plain", "4", map[string]any{"dfunction": "Verleend"}),
		}, "scope", s.workflow)
		s.Require().NoError(err)
		s.Equal([]string{"d"}, ids(out))
	})

	s.Run("soft deleted marker", func() {
		out, err := s.tr.Transform(context.Background(), []RawRecord{
			record("a", "Plain", "1", map[string]any{"subject1": "*VERWIJDER dubbel ingediend"}),
			record("b", "Plain", "2", map[string]any{"subject1": "niet *verwijderen"}),
		}, "scope", s.workflow)
		s.Require().NoError(err)
		s.Equal([]string{"b"}, ids(out))
	})
}

// =============================================================================
// Ordering and deferred hooks
// =============================================================================

func (s *TransformerSuite) TestOrdering() {
	records := []RawRecord{
		record("wb", "Workflow B", "Z/5", nil),
		record("p3", "Plain", "Z/3", nil),
		record("wa", "Workflow A", "Z/4", nil),
		record("p1", "Plain", "Z/1", nil),
		record("p2", "Plain", "Z/2", nil),
	}

	s.Run("immediate zaken by mark then deferred by case type", func() {
		out, err := s.tr.Transform(context.Background(), records, "scope", s.workflow)
		s.Require().NoError(err)
		s.Equal([]string{"p1", "p2", "p3", "wa", "wb"}, ids(out))
	})

	s.Run("repeated runs are identical", func() {
		first, err := s.tr.Transform(context.Background(), records, "scope", s.workflow)
		s.Require().NoError(err)
		for range 20 {
			again, err := s.tr.Transform(context.Background(), records, "scope", s.workflow)
			s.Require().NoError(err)
			s.Equal(first, again)
		}
	})
}

func (s *TransformerSuite) TestDeferredEnrichment() {
	activated := civil.Date{Year: 2024, Month: time.May, Day: 2}
	s.workflow.dates["wa"] = activated

	out, err := s.tr.Transform(context.Background(), []RawRecord{
		record("wa", "Workflow A", "1", map[string]any{"document_date": "2024-04-01"}),
		record("wb", "Workflow B", "2", map[string]any{"document_date": "2024-04-01"}),
	}, "scope", s.workflow)
	s.Require().NoError(err)
	s.Require().Len(out, 2)

	s.Equal(activated, out[0][FieldDateWorkflowActive])
	s.Equal(civil.Date{Year: 2024, Month: time.April, Day: 1}, out[1][FieldDateWorkflowActive])
	s.ElementsMatch([]string{"wa/A step", "wb/B step"}, s.workflow.calls)
}

func (s *TransformerSuite) TestDeferredFailureAbortsTransform() {
	s.workflow.err = errors.New("decos down")

	out, err := s.tr.Transform(context.Background(), []RawRecord{
		record("p1", "Plain", "1", nil),
		record("wa", "Workflow A", "2", nil),
	}, "scope", s.workflow)
	s.Require().Error(err)
	s.ErrorContains(err, "decos down")
	s.Nil(out)
}

func (s *TransformerSuite) TestTokenFailureAbortsTransform() {
	s.tokens.err = errors.New("no key")

	_, err := s.tr.Transform(context.Background(), []RawRecord{
		record("p1", "Plain", "1", nil),
	}, "scope", s.workflow)
	s.ErrorContains(err, "no key")
}

func (s *TransformerSuite) TestPlaceSeesImmediateZaken() {
	registry, err := NewRegistry([]CaseType{
		{Discriminator: "Target", Title: "Target"},
		{
			Discriminator: "Linker",
			Title:         "Linker",
			Defer: &Deferred{Place: func(z Zaak, b *Batch) {
				target, ok := b.Find(func(other Zaak) bool { return other.CaseType() == "Target" })
				if !ok {
					b.Append(z)
					return
				}
				target["linkedFrom"] = z.ID()
			}},
		},
	})
	s.Require().NoError(err)
	tr := NewTransformer(registry, s.tokens)

	out, err := tr.Transform(context.Background(), []RawRecord{
		record("l", "Linker", "1", nil),
		record("t", "Target", "2", nil),
	}, "scope", s.workflow)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("l", out[0]["linkedFrom"])
}

// =============================================================================
// Registry
// =============================================================================

func (s *TransformerSuite) TestRegistry() {
	defs := []CaseType{
		{Discriminator: "A", Title: "A"},
		{Discriminator: "B", Title: "B", PreviewOnly: true},
	}

	s.Run("production skips preview-only case types", func() {
		r, err := NewRegistry(defs, WithProduction(true))
		s.Require().NoError(err)
		s.Equal([]string{"A"}, r.Discriminators())
		_, ok := r.Lookup("B")
		s.False(ok)
	})

	s.Run("non-production serves everything", func() {
		r, err := NewRegistry(defs)
		s.Require().NoError(err)
		s.Equal([]string{"A", "B"}, r.Discriminators())
	})

	s.Run("duplicate discriminators are rejected", func() {
		_, err := NewRegistry(append(defs, CaseType{Discriminator: "A", Title: "again"}))
		s.ErrorContains(err, "duplicate")
	})

	s.Run("missing discriminator is rejected", func() {
		_, err := NewRegistry([]CaseType{{Title: "nameless"}})
		s.Error(err)
	})
}
