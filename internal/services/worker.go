package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"diplocheck/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(verificationID uuid.UUID)
}

type worker struct {
	verificationRepo repositories.VerificationRepository
	pipeline         PipelineService
	jobQueue         chan uuid.UUID
	concurrency      int
	pollInterval     time.Duration
	wg               sync.WaitGroup
	stopChan         chan struct{}
}

func NewWorker(
	verificationRepo repositories.VerificationRepository,
	pipeline PipelineService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		verificationRepo: verificationRepo,
		pipeline:         pipeline,
		jobQueue:         make(chan uuid.UUID, 100),
		concurrency:      concurrency,
		pollInterval:     pollInterval,
		stopChan:         make(chan struct{}),
	}
}

// Start implements Worker. The given context flows into every pipeline run;
// cancelling it abandons in-flight recognition and network calls.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Spinning up %d pipeline workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Draining pipeline workers...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ All pipeline workers drained")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(verificationID uuid.UUID) {
	select {
	case w.jobQueue <- verificationID:
		log.Printf("📥 Queued verification %s\n", verificationID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker draining, dropping verification %s\n", verificationID)
	}
}

func (w *worker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case verificationID := <-w.jobQueue:
			log.Printf("👷 Worker #%d picked up verification %s\n", workerID, verificationID)
			if err := w.pipeline.ProcessVerification(ctx, verificationID); err != nil {
				log.Printf("❌ Worker #%d: verification %s failed: %v\n", workerID, verificationID, err)
				continue
			}
			log.Printf("✅ Worker #%d: verification %s done\n", workerID, verificationID)
		}
	}
}

// pollPendingJobs re-enqueues queued rows that never reached the channel,
// typically jobs accepted just before a previous shutdown.
func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.verificationRepo.FindPendingJobs(10)
			if err != nil {
				log.Printf("⚠️  Pending-job sweep failed: %v\n", err)
				continue
			}

			for _, job := range pending {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
