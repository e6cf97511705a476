package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// ProgressFunc receives advisory recognition progress in the [0,100] range.
// It is never used for control flow.
type ProgressFunc func(percent int)

// RecognizerService wraps a long-lived Tesseract engine. Loading trained
// data is expensive, so the engine is initialized at most once per process
// and reused across documents.
type RecognizerService interface {
	// WarmUp initializes the engine. Safe to call concurrently; only the
	// first call does work.
	WarmUp() error
	// Recognize runs OCR over the rendered page and returns the recognized
	// text, one entry per processed page (always a single entry here).
	Recognize(ctx context.Context, page *RenderedPage, progress ProgressFunc) ([]string, error)
	Close() error
}

type recognizerService struct {
	language string

	mu     sync.Mutex
	client *gosseract.Client
	ready  bool
}

func NewRecognizerService(language string) RecognizerService {
	if language == "" {
		language = "fra"
	}
	return &recognizerService{language: language}
}

func (r *recognizerService) WarmUp() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(r.language); err != nil {
		client.Close()
		return fmt.Errorf("failed to set OCR language %q: %w", r.language, err)
	}

	r.client = client
	r.ready = true
	return nil
}

func (r *recognizerService) Recognize(ctx context.Context, page *RenderedPage, progress ProgressFunc) ([]string, error) {
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return nil, ErrEngineNotReady
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(0)

	imgData, err := page.PNG()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare page for recognition: %w", err)
	}
	report(25)

	if err := r.client.SetImageFromBytes(imgData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	report(50)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := r.client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to recognize text: %w", err)
	}
	report(100)

	return []string{strings.TrimSpace(text)}, nil
}

func (r *recognizerService) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		err := r.client.Close()
		r.client = nil
		r.ready = false
		return err
	}
	return nil
}
