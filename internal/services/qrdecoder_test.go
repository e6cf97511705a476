package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRDecoder_BlankPageReturnsSentinel(t *testing.T) {
	renderer := NewRendererService(1.5)
	page, err := renderer.Render(encodePNG(t, 100, 100), "image/png")
	require.NoError(t, err)
	defer page.Close()

	decoder := NewQRDecoderService()

	assert.Equal(t, QRNotFound, decoder.Decode(page))
}

func TestQRDecoder_ReleasedPageReturnsSentinel(t *testing.T) {
	renderer := NewRendererService(1.5)
	page, err := renderer.Render(encodePNG(t, 100, 100), "image/png")
	require.NoError(t, err)
	page.Close()

	decoder := NewQRDecoderService()

	assert.Equal(t, QRNotFound, decoder.Decode(page))
}
