package zaken

import (
	"cloud.google.com/go/civil"
)

// Output field names shared by every case type.
const (
	FieldID                 = "id"
	FieldCaseType           = "caseType"
	FieldTitle              = "title"
	FieldIdentifier         = "identifier"
	FieldDateRequest        = "dateRequest"
	FieldDateWorkflowActive = "dateWorkflowActive"
	FieldStatus             = "status"
	FieldDecision           = "decision"
	FieldDateDecision       = "dateDecision"
	FieldDescription        = "description"
	FieldProcessed          = "processed"
	FieldDocumentsURL       = "documentsUrl"
	FieldDateStart          = "dateStart"
	FieldDateEnd            = "dateEnd"
)

// RawRecord is one upstream folder: its key plus loosely typed field codes
// (text45, date6, dfunction, ...).
type RawRecord struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// Has reports whether the field code is present at all, even if null.
func (r RawRecord) Has(code string) bool {
	_, ok := r.Fields[code]
	return ok
}

// Get returns the raw value for a field code, nil when missing.
func (r RawRecord) Get(code string) any {
	return r.Fields[code]
}

// StringField returns the trimmed string value of a field code, nil when the
// code is missing or absent.
func (r RawRecord) StringField(code string) any {
	if !r.Has(code) {
		return nil
	}
	s, _ := ToString(r.Fields[code])
	return s
}

// Zaak is a normalized case. Keys that were never set are omitted from the
// JSON output; keys set to nil render as null.
type Zaak map[string]any

// ID returns the upstream key the zaak was built from.
func (z Zaak) ID() string {
	s, _ := z[FieldID].(string)
	return s
}

// CaseType returns the discriminator of the case type that produced z.
func (z Zaak) CaseType() string {
	s, _ := z[FieldCaseType].(string)
	return s
}

// String returns a string field; ok is false for null or non-string values.
func (z Zaak) String(key string) (string, bool) {
	s, ok := z[key].(string)
	return s, ok
}

// Date returns a date field; ok is false for null.
func (z Zaak) Date(key string) (civil.Date, bool) {
	d, ok := z[key].(civil.Date)
	return d, ok
}

// Bool returns a boolean field, false when unset.
func (z Zaak) Bool(key string) bool {
	b, _ := z[key].(bool)
	return b
}

// IsNull reports whether key is missing or null.
func (z Zaak) IsNull(key string) bool {
	return z[key] == nil
}

// Batch is the in-progress output of a transform. Deferred hooks append to it
// and may mutate zaken that are already in it.
type Batch struct {
	items []Zaak
}

// Append adds z at the end of the batch.
func (b *Batch) Append(z Zaak) {
	b.items = append(b.items, z)
}

// Find returns the first zaak matching pred. The returned map is the batch's
// own entry; writes to it are visible in the output.
func (b *Batch) Find(pred func(Zaak) bool) (Zaak, bool) {
	for _, z := range b.items {
		if pred(z) {
			return z, true
		}
	}
	return nil, false
}

// Len returns the number of zaken in the batch.
func (b *Batch) Len() int { return len(b.items) }

// Items returns the zaken in insertion order.
func (b *Batch) Items() []Zaak {
	out := make([]Zaak, len(b.items))
	copy(out, b.items)
	return out
}
