package decos

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken/casetypes"
)

// Fields missing from the select list come back absent from Decos and parse
// to null, so every code a case type reads must be requested.
func TestFolderFieldsCoverCaseTypes(t *testing.T) {
	for _, ct := range casetypes.All() {
		for _, f := range ct.Fields {
			assert.Truef(t, slices.Contains(folderCodes, f.From),
				"%s: field %s reads %s which is not selected", ct.Discriminator, f.Name, f.From)
		}
	}

	for _, code := range []string{"text45", "mark", "title", "dfunction", "document_date", "processed", "text11", "text12"} {
		assert.Containsf(t, folderCodes, code, "base code %s is not selected", code)
	}
}

func TestFolderFieldsHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool, len(folderCodes))
	for _, code := range folderCodes {
		assert.Falsef(t, seen[code], "%s selected twice", code)
		seen[code] = true
	}
}
