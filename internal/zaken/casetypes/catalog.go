// Package casetypes holds the rule set for every Decos case type served to
// clients. Each exported constructor returns one zaken.CaseType; All lists
// them in registration order.
package casetypes

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

// All returns every known case type, including preview-only ones.
func All() []zaken.CaseType {
	return []zaken.CaseType{
		TVMRVVObject(),
		VakantieverhuurVergunning(),
		Vakantieverhuur(),
		VakantieverhuurAfmelding(),
		BBVergunning(),
		GPP(),
		GPK(),
		EvenementMelding(),
		EvenementVergunning(),
		Omzettingsvergunning(),
		ERVVTVM(),
		BZP(),
		BZB(),
		Flyeren(),
		AanbiedenDiensten(),
		Nachtwerkontheffing(),
		ZwaarVerkeer(),
		Samenvoegingsvergunning(),
		OnttrekkingsvergunningAnderGebruik(),
		OnttrekkingsvergunningSloop(),
		Woningvormingsvergunning(),
		Splitsingsvergunning(),
		VOB(),
		ExploitatieHorecabedrijf(),
		RVVHeleStad(),
		RVVSloterweg(),
		EigenParkeerplaats(),
		EigenParkeerplaatsOpheffen(),
	}
}

// NewRegistry builds the registry for the given environment.
func NewRegistry(production bool) (*zaken.Registry, error) {
	return zaken.NewRegistry(All(), zaken.WithProduction(production))
}

func field(name, from string, parse zaken.ParseFunc) zaken.Field {
	return zaken.Field{Name: name, From: from, Parse: parse}
}

func location(from string) zaken.Field {
	return field("location", from, zaken.ToString)
}

func dateStart(from string) zaken.Field {
	return field(zaken.FieldDateStart, from, zaken.ToDate)
}

func dateEnd(from string) zaken.Field {
	return field(zaken.FieldDateEnd, from, zaken.ToDate)
}

// workflowActive replaces dateWorkflowActive with the date the case's latest
// workflow reached step.
func workflowActive(step string) *zaken.Deferred {
	return &zaken.Deferred{
		Enrich: func(ctx context.Context, z zaken.Zaak, wf zaken.WorkflowSource) error {
			d, err := wf.WorkflowDate(ctx, z.ID(), step)
			if err != nil {
				return err
			}
			z[zaken.FieldDateWorkflowActive] = dateOrNull(d)
			return nil
		},
	}
}

func dateOrNull(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return *d
}

// paymentCompleted rejects records still waiting for an online payment.
func paymentCompleted(r zaken.RawRecord) bool {
	status, _ := r.StringField("text11").(string)
	method, _ := r.StringField("text12").(string)
	return !(status == "Nogniet" && method == "Wacht op online betaling")
}

// requestedSince accepts records whose document_date is on or after d.
func requestedSince(d civil.Date) func(zaken.RawRecord) bool {
	return func(r zaken.RawRecord) bool {
		v, err := zaken.ToDate(r.StringField("document_date"))
		if err != nil {
			return false
		}
		created, ok := v.(civil.Date)
		return ok && !created.Before(d)
	}
}

func allOf(checks ...func(zaken.RawRecord) bool) func(zaken.RawRecord) bool {
	return func(r zaken.RawRecord) bool {
		for _, check := range checks {
			if !check(r) {
				return false
			}
		}
		return true
	}
}
