package casetypes

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

var permitDecisions = zaken.Translations{
	zaken.T("Ingetrokken", "Ingetrokken"),
	zaken.T("Niet verleend", "Niet verleend"),
	zaken.T("Verleend", "Verleend"),
}

// TVMRVVObject is a temporary traffic measure. A missing end date means a
// single-day measure.
func TVMRVVObject() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "TVM - RVV - Object",
		Title:         "Tijdelijke verkeersmaatregel (TVM-RVV-Object)",
		Fields: []zaken.Field{
			dateStart("date6"),
			dateEnd("date7"),
			field("timeStart", "text10", zaken.ToTime),
			field("timeEnd", "text13", zaken.ToTime),
			field("kenteken", "text9", zaken.ToString),
			location("text6"),
		},
		Valid: paymentCompleted,
		AfterTransform: func(z zaken.Zaak, _ civil.Date) {
			if z.IsNull(zaken.FieldDateEnd) {
				z[zaken.FieldDateEnd] = z[zaken.FieldDateStart]
			}
			if d, ok := z.String(zaken.FieldDecision); ok &&
				zaken.InFold(d, "verleend met borden", "verleend zonder bebording", "verleend zonder borden") {
				z[zaken.FieldDecision] = "Verleend"
			}
		},
	}
}

func ERVVTVM() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "E-RVV - TVM",
		Title:         "e-RVV (Gratis verkeersontheffing voor elektrisch goederenvervoer)",
		Fields: []zaken.Field{
			location("text6"),
			dateStart("date6"),
			dateEnd("date7"),
			field("timeStart", "text10", zaken.ToTime),
			field("timeEnd", "text13", zaken.ToTime),
		},
		DecisionTranslations: zaken.Translations{
			zaken.T("Ingetrokken", "Ingetrokken"),
			zaken.T("Niet verleend", "Niet verleend"),
			zaken.Hide("Nog niet bekend"),
			zaken.T("Verleend met borden", "Verleend"),
			zaken.T("Verleend met borden en Fietsenrekken verwijderen", "Verleend"),
			zaken.T("Verleend met Fietsenrekken verwijderen", "Verleend"),
			zaken.T("Verleend zonder bebording", "Verleend"),
			zaken.T("Verleend zonder borden", "Verleend"),
		},
	}
}

// BZP is a blue-zone parking exemption for residents.
func BZP() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Parkeerontheffingen Blauwe zone particulieren",
		Title:         "Parkeerontheffingen Blauwe zone particulieren",
		Fields: []zaken.Field{
			dateStart("date6"),
			dateEnd("date7"),
			field("kenteken", "text8", zaken.ToLicensePlates),
		},
		DecisionTranslations: permitDecisions,
		Valid:                paymentCompleted,
	}
}

// BZB is a blue-zone parking exemption for companies.
func BZB() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Parkeerontheffingen Blauwe zone bedrijven",
		Title:         "Parkeerontheffingen Blauwe zone bedrijven",
		Fields: []zaken.Field{
			dateStart("date6"),
			dateEnd("date7"),
			field("companyName", "company", zaken.ToString),
			field("numberOfPermits", "num6", zaken.ToInt),
		},
		DecisionTranslations: permitDecisions,
	}
}

func Flyeren() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Flyeren-Sampling",
		Title:         "Verspreiden reclamemateriaal (sampling)",
		Fields: []zaken.Field{
			location("text6"),
			dateStart("date6"),
			dateEnd("date7"),
			field("timeStart", "text7", zaken.ToTime),
			field("timeEnd", "text8", zaken.ToTime),
		},
		DecisionTranslations: permitDecisions,
		Valid:                paymentCompleted,
	}
}

func AanbiedenDiensten() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Aanbieden van diensten",
		Title:         "Aanbieden van diensten",
		Fields: []zaken.Field{
			location("text6"),
			dateStart("date6"),
			dateEnd("date7"),
		},
		DecisionTranslations: zaken.Translations{
			zaken.T("Ingetrokken", "Ingetrokken"),
			zaken.T("Niet verleend", "Niet toegestaan"),
			zaken.T("Verleend", "Toegestaan"),
		},
	}
}

func Nachtwerkontheffing() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Nachtwerkontheffing",
		Title:         "Geluidsontheffing werken in de openbare ruimte (nachtwerkontheffing)",
		Fields: []zaken.Field{
			location("text6"),
			dateStart("date6"),
			dateEnd("date7"),
			field("timeStart", "text7", zaken.ToTime),
			field("timeEnd", "text10", zaken.ToTime),
		},
		DecisionTranslations: zaken.Translations{
			zaken.T("Ingetrokken", "Ingetrokken"),
			zaken.T("Niet verleend", "Niet verleend"),
			zaken.T("Verleend met borden", "Verleend"),
			zaken.T("Verleend zonder borden", "Verleend"),
		},
		Valid: paymentCompleted,
		Defer: workflowActive("Nachtwerkontheffing - Behandelen"),
	}
}

var exemptionKinds = zaken.Translations{
	zaken.T("Jaarontheffing bijzonder", "Jaarontheffing hele zone voor bijzondere voertuigen"),
	zaken.T("Jaarontheffing gewicht", "Jaarontheffing hele zone met gewichtsverklaring"),
	zaken.T("Jaarontheffing gewicht bijzonder", "Jaarontheffing hele zone voor bijzondere voertuigen met gewichtsverklaring"),
	zaken.T("Jaarontheffing gewicht en ondeelbaar", "Jaarontheffing hele zone met gewichtsverklaring en verklaring ondeelbare lading"),
	zaken.T("Jaarontheffing ondeelbaar", "Jaarontheffing hele zone met verklaring ondeelbare lading"),
	zaken.T("Routeontheffing bijzonder boven 30 ton", "Routeontheffing bijzondere voertuig boven 30 ton"),
	zaken.T("Routeontheffing brede wegen boven 30 ton", "Routeontheffing breed opgezette wegen boven 30 ton"),
	zaken.T("Routeontheffing brede wegen tm 30 ton", "Routeontheffing breed opgezette wegen tot en met 30 ton"),
	zaken.T("Routeontheffing culturele instelling", "Routeontheffing pilot culturele instelling"),
	zaken.T("Routeontheffing ondeelbaar boven 30 ton", "Routeontheffing boven 30 ton met verklaring ondeelbare lading"),
	zaken.T("Zwaar verkeer", "Ontheffing zwaar verkeer"),
	zaken.T("Dagontheffing", "Dagontheffing hele zone"),
	zaken.T("Jaarontheffing", "Jaarontheffing hele zone"),
}

func ZwaarVerkeer() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Zwaar verkeer",
		Title:         "Ontheffing zwaar verkeer",
		Fields: []zaken.Field{
			field("exemptionKind", "text17", zaken.Translated(exemptionKinds, true)),
			field("licensePlates", "text49", zaken.ToLicensePlates),
			dateStart("date6"),
			dateEnd("date7"),
		},
		DecisionTranslations: zaken.Translations{
			zaken.T("Ingetrokken", "Ingetrokken"),
			zaken.T("Niet verleend", "Afgewezen"),
			zaken.T("Verleend", "Toegekend"),
		},
		Valid: paymentCompleted,
		Defer: workflowActive("Zwaar verkeer - Behandelen"),
	}
}

func RVVHeleStad() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "RVV - Hele stad",
		Title:         "RVV-verkeersontheffing",
		Fields: []zaken.Field{
			dateStart("date6"),
			dateEnd("date7"),
			field("licensePlates", "text49", zaken.ToLicensePlates),
		},
		Valid:       paymentCompleted,
		Defer:       workflowActive("Status bijwerken en notificatie verzenden - In behandeling"),
		PreviewOnly: true,
	}
}

const (
	sloterwegActiveStep   = "Behandelen"
	sloterwegGrantedStep  = "Status naar actief"
	fieldWorkflowVerleend = "dateWorkflowVerleend"
)

// RVVSloterweg is granted by a workflow step rather than a decision, so the
// deferred hook derives processed and decision from the workflow.
func RVVSloterweg() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "RVV Sloterweg",
		Title:         "RVV ontheffing Sloterweg",
		Fields: []zaken.Field{
			field("requestType", "text8", zaken.ToString),
			field("area", "text7", zaken.ToString),
			dateStart("date6"),
			dateEnd("date7"),
			field("licensePlates", "text10", zaken.ToLicensePlates),
			field("previousLicensePlates", "text15", zaken.ToLicensePlates),
		},
		DecisionTranslations: zaken.Translations{
			zaken.T("Verleend", "Verleend"),
			zaken.T("Ingetrokken door gemeente", "Ingetrokken"),
			zaken.T("Verlopen", "Verlopen"),
		},
		Defer: &zaken.Deferred{
			Enrich: func(ctx context.Context, z zaken.Zaak, wf zaken.WorkflowSource) error {
				active, err := wf.WorkflowDate(ctx, z.ID(), sloterwegActiveStep)
				if err != nil {
					return err
				}
				z[zaken.FieldDateWorkflowActive] = dateOrNull(active)

				granted, err := wf.WorkflowDate(ctx, z.ID(), sloterwegGrantedStep)
				if err != nil {
					return err
				}
				z[fieldWorkflowVerleend] = dateOrNull(granted)

				if granted != nil {
					z[zaken.FieldProcessed] = true
					if z.IsNull(zaken.FieldDecision) {
						z[zaken.FieldDecision] = "Verleend"
					}
				}
				z[zaken.FieldTitle] = fmt.Sprintf("RVV ontheffing Sloterweg (%v)", plates(z))
				return nil
			},
		},
		PreviewOnly: true,
	}
}

func plates(z zaken.Zaak) string {
	if s, ok := z.String("licensePlates"); ok {
		return s
	}
	return "None"
}

var disabledParkingDecisions = zaken.Translations{
	zaken.T("Ingetrokken", "Ingetrokken"),
	zaken.T("Ingetrokken i.v.m. overlijden of verhuizing", "Ingetrokken"),
	zaken.T("Niet verleend", "Niet verleend"),
	zaken.Hide("Nog niet bekend"),
	zaken.T("Verleend", "Verleend"),
}

// GPP is a reserved parking spot for a disabled driver.
func GPP() zaken.CaseType {
	return zaken.CaseType{
		Discriminator:        "GPP",
		Title:                "Vaste parkeerplaats voor gehandicapten (GPP)",
		DecisionTranslations: disabledParkingDecisions,
		Fields: []zaken.Field{
			field("kenteken", "text7", zaken.ToString),
			location("text8"),
		},
	}
}

// GPK is the European disabled parking card. Decos truncates dfunction at 50
// characters, so truncated variants are listed explicitly.
func GPK() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "GPK",
		Title:         "Europese gehandicaptenparkeerkaart (GPK)",
		DecisionTranslations: zaken.Translations{
			zaken.T("Ingetrokken", "Ingetrokken"),
			zaken.T("Ingetrokken i.v.m. overlijden of verhuizing", "Ingetrokken"),
			zaken.T("Ingetrokken verleende GPK wegens overlijden", "Ingetrokken"),
			zaken.T("Niet verleend", "Niet verleend"),
			zaken.Hide("Nog niet bekend"),
			zaken.T("Verleend", "Verleend"),
			zaken.T("Verleend Bestuurder met GPP (niet verleend passagier)", "Verleend Bestuurder, niet verleend Passagier"),
			zaken.T("Verleend Bestuurder, niet verleend Passagier", "Verleend Bestuurder, niet verleend Passagier"),
			zaken.T("Verleend Bestuurder met GPP (niet verleend passagi", "Verleend Bestuurder, niet verleend Passagier"),
			zaken.T("Verleend met GPP", "Verleend"),
			zaken.T("Verleend Passagier met GPP (niet verleend Bestuurder)", "Verleend Passagier, niet verleend Bestuurder"),
			zaken.T("Verleend Passagier met GPP (niet verleend Bestuurd", "Verleend Passagier, niet verleend Bestuurder"),
			zaken.T("Verleend Passagier, niet verleend Bestuurder", "Verleend Passagier, niet verleend Bestuurder"),
			zaken.T("Verleend vervangend GPK", "Verleend"),
		},
		Fields: []zaken.Field{
			field("cardNumber", "num3", zaken.ToInt),
			field("cardtype", "text7", zaken.ToString),
			dateEnd("date7"),
		},
	}
}

func eventFields() []zaken.Field {
	return []zaken.Field{
		dateStart("date6"),
		dateEnd("date7"),
		location("text6"),
		field("timeStart", "text7", zaken.ToTime),
		field("timeEnd", "text8", zaken.ToTime),
	}
}

func EvenementMelding() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Evenement melding",
		Title:         "Evenement melding",
		Fields:        eventFields(),
		DecisionTranslations: zaken.Translations{
			zaken.T("Ingetrokken", "Ingetrokken"),
			zaken.T("Niet verleend", "Niet toegestaan"),
			zaken.T("Verleend", "Toegestaan"),
			zaken.Hide("Nog niet  bekend"),
			zaken.Hide("Nog niet bekend"),
			zaken.T("Verleend (Bijzonder/Bewaren)", "Verleend"),
			zaken.T("Verleend zonder borden", "Verleend"),
		},
	}
}

func EvenementVergunning() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Evenement vergunning",
		Title:         "Evenement vergunning",
		Fields:        eventFields(),
		DecisionTranslations: zaken.Translations{
			zaken.T("Afgebroken (Ingetrokken)", "Afgebroken (Ingetrokken)"),
			zaken.T("Geweigerd", "Geweigerd"),
			zaken.Hide("Nog niet  bekend"),
			zaken.Hide("Nog niet bekend"),
			zaken.T("Verleend", "Verleend"),
			zaken.T("Verleend (Bijzonder/Bewaren)", "Verleend"),
			zaken.T("Verleend zonder borden", "Verleend"),
		},
	}
}
