package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	input := "  UNIVERSITÉ DE BERTOUA  \n\n\n   N° DIP-2023-ABC123-001\n\t\nMention : Bien   "

	got := CleanText(input)

	assert.Equal(t, "UNIVERSITÉ DE BERTOUA\nN° DIP-2023-ABC123-001\nMention : Bien", got)
}

func TestCleanText_Empty(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n "))
}

func TestPDFText_MissingFile(t *testing.T) {
	svc := NewPDFTextService()

	_, err := svc.ExtractText("/nonexistent/diploma.pdf")
	assert.Error(t, err)
}
