package casetypes

import (
	"strings"

	"cloud.google.com/go/civil"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

const (
	discriminatorVakantieverhuur = "Vakantieverhuur"
	fieldIsCancelled             = "isCancelled"
)

// VakantieverhuurVergunning is granted on request; its end date is the first
// of April following the request year.
func VakantieverhuurVergunning() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Vakantieverhuur vergunningsaanvraag",
		Title:         "Vergunning vakantieverhuur",
		Fields: []zaken.Field{
			location("text6"),
			field(zaken.FieldDateStart, "document_date", zaken.ToDate),
			field(zaken.FieldStatus, "title", zaken.Const("Afgehandeld")),
			field(zaken.FieldDecision, "dfunction", rentalDecision),
		},
		AfterTransform: func(z zaken.Zaak, _ civil.Date) {
			requested, ok := z.Date(zaken.FieldDateRequest)
			if !ok {
				z[zaken.FieldDateEnd] = nil
				return
			}
			z[zaken.FieldDateEnd] = civil.Date{Year: requested.Year + 1, Month: 4, Day: 1}
		},
	}
}

func rentalDecision(raw any) (any, error) {
	s, _ := zaken.ToString(raw)
	if d, ok := s.(string); ok && strings.Contains(strings.ToLower(d), "ingetrokken") {
		return "Ingetrokken", nil
	}
	return "Verleend", nil
}

// Vakantieverhuur is a notified rental period.
func Vakantieverhuur() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: discriminatorVakantieverhuur,
		Title:         "Geplande verhuur",
		Fields: []zaken.Field{
			dateStart("date6"),
			dateEnd("date7"),
			location("text6"),
		},
		AfterTransform: func(z zaken.Zaak, today civil.Date) {
			if end, ok := z.Date(zaken.FieldDateEnd); ok && !end.After(today) {
				z[zaken.FieldTitle] = "Afgelopen verhuur"
			}
		},
	}
}

// VakantieverhuurAfmelding cancels a notified rental period. When the matching
// period is in the batch it is marked cancelled instead of emitting the
// cancellation itself.
func VakantieverhuurAfmelding() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Vakantieverhuur afmelding",
		Title:         "Geannuleerde verhuur",
		Fields: []zaken.Field{
			dateStart("date6"),
			dateEnd("date7"),
			location("text6"),
		},
		Defer: &zaken.Deferred{Place: placeCancellation},
	}
}

func placeCancellation(cancel zaken.Zaak, b *zaken.Batch) {
	start, okStart := cancel.Date(zaken.FieldDateStart)
	end, okEnd := cancel.Date(zaken.FieldDateEnd)
	if !okStart || !okEnd {
		b.Append(cancel)
		return
	}

	planned, found := b.Find(func(z zaken.Zaak) bool {
		if z.CaseType() != discriminatorVakantieverhuur || z.Bool(fieldIsCancelled) {
			return false
		}
		s, ok1 := z.Date(zaken.FieldDateStart)
		e, ok2 := z.Date(zaken.FieldDateEnd)
		return ok1 && ok2 && s == start && e == end
	})
	if !found {
		b.Append(cancel)
		return
	}

	planned[fieldIsCancelled] = true
	planned[zaken.FieldDateDecision] = cancel[zaken.FieldDateRequest]
	planned[zaken.FieldTitle] = cancel[zaken.FieldTitle]
	planned[zaken.FieldIdentifier] = cancel[zaken.FieldIdentifier]
}

// BBVergunning is a bed and breakfast permit.
func BBVergunning() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "B&B - vergunning",
		Title:         "Vergunning bed & breakfast",
		StatusTranslations: zaken.Translations{
			zaken.T("Publicatie aanvraag", "Ontvangen"),
			zaken.T("Ontvangen", "Ontvangen"),
			zaken.T("Volledigheidstoets uitvoeren", "Ontvangen"),
			zaken.T("Behandelen aanvraag", "In behandeling"),
			zaken.T("Huisbezoek", "In behandeling"),
			zaken.T("Beoordelen en besluiten", "In behandeling"),
			zaken.T("Afgehandeld", "Afgehandeld"),
		},
		DecisionTranslations: zaken.Translations{
			zaken.T("Verleend met overgangsrecht", "Verleend"),
			zaken.T("Verleend zonder overgangsrecht", "Verleend"),
			zaken.T("Geweigerd", "Geweigerd"),
			zaken.T("Geweigerd met overgangsrecht", "Geweigerd"),
			zaken.T("Geweigerd op basis van Quotum", "Geweigerd"),
			zaken.T("Ingetrokken", "Ingetrokken"),
		},
		Fields: []zaken.Field{
			location("text6"),
			dateStart("date6"),
			dateEnd("date7"),
			field("requester", "company", zaken.ToString),
			field("owner", "text25", zaken.ToString),
			field("hasTransitionAgreement", "dfunction", transitionAgreement),
		},
		Defer: workflowActive("B&B - vergunning - Behandelen"),
	}
}

func transitionAgreement(raw any) (any, error) {
	s, _ := zaken.ToString(raw)
	d, ok := s.(string)
	return ok && zaken.EqualFold(d, "verleend met overgangsrecht"), nil
}
