package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ops-assistant-be/internal/dto"
	"ops-assistant-be/internal/entity"
	"ops-assistant-be/internal/pkg/apperrors"
	"ops-assistant-be/internal/pkg/logger"
	"ops-assistant-be/internal/repository/specification"
	"ops-assistant-be/internal/repository/unitofwork"
	"ops-assistant-be/pkg/embedding"
	"ops-assistant-be/pkg/splitter"

	"github.com/google/uuid"
)

type IIngestionService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Delete(ctx context.Context, docId uuid.UUID) error
}

type IngestionConfig struct {
	ChunkSize    int
	ChunkOverlap int
	EmbedWorkers int
	EmbeddingDim int
}

type ingestionService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	publisherService  IPublisherService
	logger            logger.ILogger
	config            IngestionConfig
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
	config IngestionConfig,
) IIngestionService {
	if config.EmbedWorkers <= 0 {
		config.EmbedWorkers = 4
	}
	return &ingestionService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisherService:  publisherService,
		logger:            sysLogger,
		config:            config,
	}
}

// Ingest chunks the document, embeds every chunk, and commits document plus
// chunks in one transaction. Re-ingesting an existing docId replaces the
// whole document atomically; a failed ingestion leaves the previous version
// untouched.
func (s *ingestionService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	docId := uuid.New()
	if req.DocId != nil {
		docId = *req.DocId
	}

	pieces := splitter.Split(req.Content, s.config.ChunkSize, s.config.ChunkOverlap)
	if len(pieces) == 0 {
		return nil, apperrors.NewIngestionFailure(req.Filename, errors.New("content is empty after normalization"))
	}

	embeddings, err := s.embedAll(ctx, pieces)
	if err != nil {
		return nil, apperrors.NewIngestionFailure(req.Filename, err)
	}

	chunks := make([]*entity.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &entity.DocumentChunk{
			Id:        uuid.New(),
			DocId:     docId,
			ChunkId:   i,
			Content:   piece,
			Embedding: embeddings[i],
			Position:  i,
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: docId})
	if err != nil {
		return nil, err
	}
	replaced := existing != nil
	if replaced {
		if err := uow.DocumentChunkRepository().DeleteByDocId(ctx, docId); err != nil {
			return nil, err
		}
		if err := uow.DocumentRepository().Delete(ctx, docId); err != nil {
			return nil, err
		}
	}

	doc := &entity.Document{
		Id:             docId,
		Filename:       req.Filename,
		DocType:        req.DocType,
		AuthorityLevel: req.AuthorityLevel,
		ChunkCount:     len(chunks),
	}
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ingestion", "document ingested", map[string]interface{}{
		"doc_id":      docId.String(),
		"filename":    req.Filename,
		"chunk_count": len(chunks),
		"replaced":    replaced,
	})

	s.publishIngested(ctx, dto.PublishDocumentIngestedMessage{
		DocId:      docId,
		Filename:   req.Filename,
		ChunkCount: len(chunks),
		Replaced:   replaced,
	})

	return &dto.IngestDocumentResponse{
		DocId:      docId,
		Filename:   req.Filename,
		ChunkCount: len(chunks),
		Replaced:   replaced,
	}, nil
}

// Delete removes a document and all of its chunks in one transaction, so a
// concurrent search sees either the full document or none of it.
func (s *ingestionService) Delete(ctx context.Context, docId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: docId})
	if err != nil {
		return err
	}
	if doc == nil {
		return apperrors.NewNotFound(fmt.Sprintf("document %s", docId))
	}

	if err := uow.DocumentChunkRepository().DeleteByDocId(ctx, docId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, docId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("ingestion", "document deleted", map[string]interface{}{
		"doc_id":   docId.String(),
		"filename": doc.Filename,
	})
	return nil
}

// embedAll embeds every chunk with a bounded worker pool. All or nothing:
// any failed chunk fails the whole ingestion.
func (s *ingestionService) embedAll(ctx context.Context, pieces []string) ([][]float32, error) {
	embeddings := make([][]float32, len(pieces))
	errs := make([]error, len(pieces))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.config.EmbedWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				resp, err := s.embeddingProvider.Generate(pieces[i], embedding.TaskRetrievalDocument)
				if err != nil {
					errs[i] = fmt.Errorf("chunk %d: %w", i, err)
					continue
				}
				if s.config.EmbeddingDim > 0 && len(resp.Embedding.Values) != s.config.EmbeddingDim {
					errs[i] = fmt.Errorf("chunk %d: embedding has %d dimensions, expected %d",
						i, len(resp.Embedding.Values), s.config.EmbeddingDim)
					continue
				}
				embeddings[i] = resp.Embedding.Values
			}
		}()
	}

	for i := range pieces {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return embeddings, nil
}

func (s *ingestionService) publishIngested(ctx context.Context, msg dto.PublishDocumentIngestedMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("ingestion", "failed to marshal ingestion event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("ingestion", "failed to publish ingestion event", map[string]interface{}{"error": err.Error()})
	}
}
