package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizer_NotReadyBeforeWarmUp(t *testing.T) {
	recognizer := NewRecognizerService("fra")

	renderer := NewRendererService(1.5)
	page, err := renderer.Render(encodePNG(t, 10, 10), "image/png")
	require.NoError(t, err)
	defer page.Close()

	_, err = recognizer.Recognize(context.Background(), page, nil)
	assert.ErrorIs(t, err, ErrEngineNotReady)
}

func TestRecognizer_CloseWithoutWarmUp(t *testing.T) {
	recognizer := NewRecognizerService("fra")

	assert.NoError(t, recognizer.Close())
}

func TestRecognizer_CancelledContext(t *testing.T) {
	recognizer := NewRecognizerService("fra")

	// Warm up against real trained data; skip on machines without it.
	if err := recognizer.WarmUp(); err != nil {
		t.Skipf("OCR engine unavailable: %v", err)
	}
	defer recognizer.Close()

	renderer := NewRendererService(1.5)
	page, err := renderer.Render(encodePNG(t, 10, 10), "image/png")
	require.NoError(t, err)
	defer page.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = recognizer.Recognize(ctx, page, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
