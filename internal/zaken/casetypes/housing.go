package casetypes

import (
	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

func Omzettingsvergunning() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Omzettingsvergunning",
		Title:         "Vergunning voor kamerverhuur (omzettingsvergunning)",
		Fields:        []zaken.Field{location("text6")},
		DecisionTranslations: zaken.Translations{
			zaken.T("Geweigerd", "Geweigerd"),
			zaken.T("Ingetrokken door gemeente", "Ingetrokken door gemeente"),
			zaken.T("Ingetrokken op eigen verzoek", "Ingetrokken op eigen verzoek"),
			zaken.Hide("Nog niet bekend"),
			zaken.T("Van rechtswege verleend", "Verleend"),
			zaken.T("Vergunningvrij", "Vergunningvrij"),
			zaken.T("Verleend", "Verleend"),
			zaken.T("Verleend zonder borden", "Verleend"),
		},
		Defer: workflowActive("Omzettingsvergunning - Behandelen"),
	}
}

// housingPermit is the shape shared by the housing stock permits: a location
// and an activation date taken from the decision step.
func housingPermit(discriminator, title, step string) zaken.CaseType {
	return zaken.CaseType{
		Discriminator: discriminator,
		Title:         title,
		Fields:        []zaken.Field{location("text6")},
		Defer:         workflowActive(step),
	}
}

func Samenvoegingsvergunning() zaken.CaseType {
	return housingPermit(
		"Samenvoegingsvergunning",
		"Vergunning voor samenvoegen van woonruimten",
		"Samenvoegingsvergunning - Beoordelen en besluiten",
	)
}

func OnttrekkingsvergunningAnderGebruik() zaken.CaseType {
	return housingPermit(
		"Onttrekkingsvergunning voor ander gebruik",
		"Onttrekkingsvergunning voor ander gebruik",
		"Onttrekkingsvergunning voor ander gebruik - Beoordelen en besluiten",
	)
}

func OnttrekkingsvergunningSloop() zaken.CaseType {
	return housingPermit(
		"Onttrekkingsvergunning voor sloop",
		"Onttrekkingsvergunning voor sloop",
		"Onttrekkingsvergunning voor sloop - Beoordelen en besluiten",
	)
}

func Woningvormingsvergunning() zaken.CaseType {
	return housingPermit(
		"Woningvormingsvergunning",
		"Vergunning voor woningvorming",
		"Woningvormingsvergunning - Beoordelen en besluiten",
	)
}

func Splitsingsvergunning() zaken.CaseType {
	return housingPermit(
		"Splitsingsvergunning",
		"Splitsingsvergunning",
		"Splitsingsvergunning - Behandelen",
	)
}

// VOB is a mooring permit for a vessel.
func VOB() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "VOB",
		Title:         "Ligplaatsvergunning",
		Fields: []zaken.Field{
			field("requestKind", "text9", zaken.ToString),
			field("reason", "text18", zaken.ToString),
			location("text6"),
			field("vesselKind", "text10", zaken.ToString),
			field("vesselName", "text14", zaken.ToString),
		},
		Defer: workflowActive("VOB - Beoordelen en besluiten"),
	}
}

func ExploitatieHorecabedrijf() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Horeca vergunning exploitatie Horecabedrijf",
		Title:         "Horeca vergunning exploitatie Horecabedrijf",
		Fields: []zaken.Field{
			dateEnd("date2"),
			dateStart("date6"),
			location("text6"),
		},
		Defer: workflowActive("Horeca vergunning exploitatie Horecabedrijf - In behandeling nemen"),
	}
}
