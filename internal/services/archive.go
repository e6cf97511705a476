package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// ArchiveService keeps a similarity index of recognized diploma texts so
// near-duplicate submissions can be flagged. It is best-effort: indexing
// failures never fail a pipeline run.
type ArchiveService interface {
	InitCollection() error
	IndexDocument(ctx context.Context, docID string, text string) error
	FindSimilar(ctx context.Context, text string, limit int) ([]SimilarDocument, error)
}

type SimilarDocument struct {
	DocumentID string
	Score      float32
	Excerpt    string
}

type archiveService struct {
	client         *qdrant.Client
	gemini         GeminiService
	collectionName string
	vectorSize     uint64
}

func NewArchiveService(urlStr, apiKey, collectionName string, gemini GeminiService) (ArchiveService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port 6334 unless overridden
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &archiveService{
		client:         client,
		gemini:         gemini,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements ArchiveService.
func (a *archiveService) InitCollection() error {
	ctx := context.Background()

	exists, err := a.client.CollectionExists(ctx, a.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Archive collection already exists")
		return nil
	}

	err = a.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: a.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     a.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Archive collection '%s' created successfully\n", a.collectionName)
	return nil
}

// IndexDocument implements ArchiveService. Long OCR outputs are windowed
// before embedding so no chunk exceeds the embedding model's useful input.
func (a *archiveService) IndexDocument(ctx context.Context, docID string, text string) error {
	chunks := chunkText(text, 1000)
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := a.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		pointID := uuid.New()
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(pointID.ID())),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"doc_id": docID,
				"chunk":  i,
				"text":   chunk,
			}),
		})
	}

	_, err := a.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: a.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// FindSimilar implements ArchiveService.
func (a *archiveService) FindSimilar(ctx context.Context, text string, limit int) ([]SimilarDocument, error) {
	embedding, err := a.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	searchResult, err := a.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: a.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []SimilarDocument
	for _, point := range searchResult {
		result := SimilarDocument{Score: point.Score}

		if docID, ok := point.Payload["doc_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				result.DocumentID = val.StringValue
			}
		}
		if text, ok := point.Payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				result.Excerpt = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// chunkText windows text into chunks of at most maxSize runes, splitting on
// paragraph boundaries first so chunks stay coherent.
func chunkText(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = 1000
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(para) > maxSize {
			flush()
		}

		// A single oversized paragraph is split on rune boundaries.
		for utf8.RuneCountInString(para) > maxSize {
			runes := []rune(para)
			chunks = append(chunks, string(runes[:maxSize]))
			para = string(runes[maxSize:])
		}

		current.WriteString(para)
		current.WriteString("\n\n")
	}
	flush()

	return chunks
}
