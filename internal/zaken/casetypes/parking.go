package casetypes

import (
	"cloud.google.com/go/civil"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

const parkingStep = "Status bijwerken en notificatie verzenden - In behandeling"

// Requests filed before the current intake form have incompatible fields.
var parkingIntakeDate = civil.Date{Year: 2023, Month: 8, Day: 8}

// Location is one parking spot as rendered to clients.
type Location struct {
	Type         any `json:"type"`
	Street       any `json:"street"`
	HouseNumber  any `json:"houseNumber"`
	FiscalNumber any `json:"fiscalNumber"`
	URL          any `json:"url"`
}

type requestFlag struct {
	field string
	label string
}

// requestTypes lists the request flags in priority order; the first set flag
// names the request.
var requestTypes = []requestFlag{
	{"isNewRequest", "Nieuwe aanvraag"},
	{"isCarsharingpermit", "Autodeelbedrijf"},
	{"isLicensePlateChange", "Kentekenwijziging"},
	{"isRelocation", "Verhuizing"},
	{"isExtension", "Verlenging"},
}

type locationKeys struct {
	street, houseNumber, kind, fiscalNumber, url string
}

var parkingLocations = []locationKeys{
	{"streetLocation1", "housenumberLocation1", "locationkindLocation1", "fiscalnumberLocation1", "urlLocation1"},
	{"streetLocation2", "housenumberLocation2", "locationkindLocation2", "fiscalnumberLocation2", "urlLocation2"},
}

func EigenParkeerplaats() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Eigen parkeerplaats",
		Title:         "Eigen parkeerplaats",
		Fields: []zaken.Field{
			field("isNewRequest", "bol9", zaken.ToBool),
			field("isExtension", "bol7", zaken.ToBool),
			field("isLicensePlateChange", "bol10", zaken.ToBool),
			field("isRelocation", "bol11", zaken.ToBool),
			field("isCarsharingpermit", "bol8", zaken.ToBool),
			field("streetLocation1", "text25", zaken.ToString),
			field("housenumberLocation1", "num14", zaken.ToInt),
			field("locationkindLocation1", "text17", zaken.ToString),
			field("fiscalnumberLocation1", "text18", zaken.ToString),
			field("urlLocation1", "text19", zaken.ToString),
			field("streetLocation2", "text15", zaken.ToString),
			field("housenumberLocation2", "num15", zaken.ToInt),
			field("locationkindLocation2", "text20", zaken.ToString),
			field("fiscalnumberLocation2", "text21", zaken.ToString),
			field("urlLocation2", "text22", zaken.ToString),
			field("licensePlates", "text13", zaken.ToLicensePlates),
			field("previousLicensePlates", "text14", zaken.ToLicensePlates),
			dateStart("date6"),
			dateEnd("date8"),
		},
		Valid:          allOf(requestedSince(parkingIntakeDate), paymentCompleted),
		AfterTransform: collectParkingRequest,
		Defer:          workflowActive(parkingStep),
		PreviewOnly:    true,
	}
}

func collectParkingRequest(z zaken.Zaak, _ civil.Date) {
	locations := make([]Location, 0, len(parkingLocations))
	for _, keys := range parkingLocations {
		if !z.IsNull(keys.street) {
			locations = append(locations, Location{
				Type:         z[keys.kind],
				Street:       z[keys.street],
				HouseNumber:  z[keys.houseNumber],
				FiscalNumber: z[keys.fiscalNumber],
				URL:          z[keys.url],
			})
		}
		delete(z, keys.street)
		delete(z, keys.houseNumber)
		delete(z, keys.kind)
		delete(z, keys.fiscalNumber)
		delete(z, keys.url)
	}
	z["locations"] = locations

	z["requestType"] = nil
	for _, flag := range requestTypes {
		if z.Bool(flag.field) {
			z["requestType"] = flag.label
			break
		}
	}
}

func EigenParkeerplaatsOpheffen() zaken.CaseType {
	return zaken.CaseType{
		Discriminator: "Eigen parkeerplaats opheffen",
		Title:         "Eigen parkeerplaats opheffen",
		Fields: []zaken.Field{
			field("isCarsharingpermit", "bol8", zaken.ToBool),
			field("street", "text25", zaken.ToString),
			field("houseNumber", "num14", zaken.ToInt),
			field("locationType", "text17", zaken.ToString),
			field("fiscalNumber", "text18", zaken.ToString),
			field("locationUrl", "text19", zaken.ToString),
			dateEnd("date8"),
		},
		Valid: allOf(requestedSince(parkingIntakeDate), paymentCompleted),
		AfterTransform: func(z zaken.Zaak, _ civil.Date) {
			z["location"] = Location{
				Type:         z["locationType"],
				Street:       z["street"],
				HouseNumber:  z["houseNumber"],
				FiscalNumber: z["fiscalNumber"],
				URL:          z["locationUrl"],
			}
			for _, k := range []string{"locationType", "street", "houseNumber", "fiscalNumber", "locationUrl"} {
				delete(z, k)
			}
		},
		Defer:       workflowActive(parkingStep),
		PreviewOnly: true,
	}
}
