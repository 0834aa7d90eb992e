package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsComplete(t *testing.T) {
	full := make([]GeneratedDocument, 0, len(CanonicalTypes))
	for _, ty := range CanonicalTypes {
		full = append(full, GeneratedDocument{DocumentType: ty})
	}
	assert.True(t, IsComplete(full))
	assert.False(t, IsComplete(nil))
	assert.False(t, IsComplete(full[:3]))

	dup := append([]GeneratedDocument{}, full[:3]...)
	dup = append(dup, GeneratedDocument{DocumentType: TypeAboutLoan})
	assert.False(t, IsComplete(dup))
}
