package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"diplocheck/internal/models"
	"diplocheck/internal/repositories"
)

// PipelineService runs the document-ingestion pipeline for one verification
// job: render → {recognize, decode QR} → extract fields → reconcile →
// dispatch to the diploma authority.
type PipelineService interface {
	ProcessVerification(ctx context.Context, verificationID uuid.UUID) error
}

type pipelineService struct {
	verificationRepo repositories.VerificationRepository
	docRepo          repositories.DocumentRepository
	renderer         RendererService
	recognizer       RecognizerService
	pdfText          PDFTextService
	qrDecoder        QRDecoderService
	extractor        FieldExtractor
	dispatcher       DispatcherService
	storage          StorageService
	archive          ArchiveService // optional, nil when disabled
}

func NewPipelineService(
	verificationRepo repositories.VerificationRepository,
	docRepo repositories.DocumentRepository,
	renderer RendererService,
	recognizer RecognizerService,
	pdfText PDFTextService,
	qrDecoder QRDecoderService,
	extractor FieldExtractor,
	dispatcher DispatcherService,
	storage StorageService,
	archive ArchiveService,
) PipelineService {
	return &pipelineService{
		verificationRepo: verificationRepo,
		docRepo:          docRepo,
		renderer:         renderer,
		recognizer:       recognizer,
		pdfText:          pdfText,
		qrDecoder:        qrDecoder,
		extractor:        extractor,
		dispatcher:       dispatcher,
		storage:          storage,
		archive:          archive,
	}
}

func (p *pipelineService) ProcessVerification(ctx context.Context, verificationID uuid.UUID) error {
	if err := p.verificationRepo.UpdateStatus(verificationID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting verification pipeline for job ID: %s\n", verificationID)

	verification, err := p.verificationRepo.FindByID(verificationID)
	if err != nil {
		p.verificationRepo.UpdateError(verificationID, UserMessage(err))
		return fmt.Errorf("failed to get verification: %w", err)
	}

	doc, err := p.docRepo.FindByID(verification.DocumentID)
	if err != nil {
		p.verificationRepo.UpdateError(verificationID, UserMessage(err))
		return fmt.Errorf("failed to get document: %w", err)
	}

	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		p.verificationRepo.UpdateError(verificationID, UserMessage(err))
		return fmt.Errorf("failed to read document file: %w", err)
	}

	// Step 1: render page 1 to pixels. Unsupported or corrupt documents fail
	// here, before any recognition attempt.
	log.Println("🖼  Rendering page...")
	page, err := p.renderer.Render(data, doc.MediaType)
	if err != nil {
		p.verificationRepo.UpdateError(verificationID, UserMessage(err))
		return fmt.Errorf("failed to render document: %w", err)
	}
	defer page.Close()

	// Step 2: QR decoding and text recognition share the rendered page but
	// have no data dependency on each other, so the QR scan runs alongside
	// recognition.
	qrCh := make(chan string, 1)
	go func() {
		qrCh <- p.qrDecoder.Decode(page)
	}()

	text := p.recognizeText(ctx, doc, page)
	qrPayload := <-qrCh

	if qrPayload == QRNotFound {
		log.Println("ℹ️  No QR code found on page")
	} else {
		log.Println("✅ QR payload decoded")
	}

	// Step 3: extract structured fields from the recognized text.
	log.Println("🤖 Extracting diploma fields...")
	record, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.verificationRepo.UpdateError(verificationID, UserMessage(err))
		return fmt.Errorf("failed to extract fields: %w", err)
	}

	// Step 4: reconcile the QR-derived identifier with the OCR record.
	record = Reconcile(record, qrPayload)

	// Step 5: dispatch to the diploma authority.
	log.Printf("📡 Dispatching %s request...\n", verification.Intent)
	result, err := p.dispatcher.Dispatch(ctx, record, verification.Intent)
	if err != nil {
		p.verificationRepo.UpdateError(verificationID, UserMessage(err))
		return fmt.Errorf("failed to dispatch: %w", err)
	}

	// Step 6: persist the merged record and the backend's answer.
	if err := p.saveResult(verificationID, record, result); err != nil {
		return err
	}

	// Archive indexing is best-effort and never fails the run.
	if p.archive != nil && strings.TrimSpace(text) != "" {
		if err := p.archive.IndexDocument(ctx, doc.ID.String(), text); err != nil {
			log.Printf("⚠️  Failed to index document in archive: %v\n", err)
		}
	}

	log.Printf("✅ Verification completed successfully for job ID: %s\n", verificationID)
	return nil
}

// recognizeText obtains the page text. Born-digital PDFs use their embedded
// text layer; everything else goes through OCR. Recognition failures degrade
// to empty text rather than aborting the run.
func (p *pipelineService) recognizeText(ctx context.Context, doc *models.Document, page *RenderedPage) string {
	if doc.MediaType == "application/pdf" {
		if text, err := p.pdfText.ExtractText(doc.FilePath); err == nil {
			log.Println("📄 Using embedded PDF text layer")
			return text
		}
	}

	log.Println("🔎 Running OCR...")
	pages, err := p.recognizer.Recognize(ctx, page, func(pct int) {
		log.Printf("🔎 OCR progress: %d%%\n", pct)
	})
	if err != nil {
		log.Printf("⚠️  OCR failed, continuing with empty text: %v\n", err)
		return ""
	}

	return strings.Join(pages, "\n\n")
}

func (p *pipelineService) saveResult(verificationID uuid.UUID, record models.DiplomaRecord, result *ActionResult) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	recordStr := string(recordJSON)

	updateData := &repositories.VerificationUpdateData{
		ExtractedRecord: &recordStr,
	}

	if result.Verdict != nil {
		updateData.Valid = &result.Verdict.Valid
		if result.Verdict.Message != "" {
			updateData.Message = &result.Verdict.Message
		}
		if result.Verdict.Confidence != "" {
			updateData.Confidence = &result.Verdict.Confidence
		}
		if len(result.Verdict.Mismatches) > 0 {
			mismatchesJSON, err := json.Marshal(result.Verdict.Mismatches)
			if err == nil {
				mismatchesStr := string(mismatchesJSON)
				updateData.Mismatches = &mismatchesStr
			}
		}
	}

	if result.Artifact != nil {
		log.Println("💾 Saving certified artifact...")
		path, err := p.storage.SaveArtifact(verificationID.String(), result.Artifact.Filename, result.Artifact.Data)
		if err != nil {
			p.verificationRepo.UpdateError(verificationID, UserMessage(err))
			return fmt.Errorf("failed to save artifact: %w", err)
		}
		updateData.ArtifactPath = &path
		valid := true
		updateData.Valid = &valid
	}

	if err := p.verificationRepo.UpdateResult(verificationID, updateData); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	return nil
}
