package service

import (
	"context"
	"fmt"

	"ops-assistant-be/internal/dto"
	"ops-assistant-be/internal/pkg/apperrors"
	"ops-assistant-be/internal/repository/specification"
	"ops-assistant-be/internal/repository/unitofwork"
	"ops-assistant-be/pkg/embedding"

	"github.com/google/uuid"
)

type IDocumentService interface {
	GetAll(ctx context.Context) ([]*dto.DocumentMetaResponse, error)
	GetMeta(ctx context.Context, docId uuid.UUID) (*dto.DocumentMetaResponse, error)
	GetSourceChunk(ctx context.Context, docId uuid.UUID, chunkId int) (*dto.SourceChunkResponse, error)
	SemanticSearch(ctx context.Context, req *dto.SemanticSearchRequest) (*dto.SemanticSearchResponse, error)
}

type DocumentServiceConfig struct {
	TopK     int
	MinScore float64
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	embeddingCache    *embedding.Cache
	config            DocumentServiceConfig
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	embeddingCache *embedding.Cache,
	config DocumentServiceConfig,
) IDocumentService {
	if config.TopK <= 0 {
		config.TopK = 8
	}
	return &documentService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		embeddingCache:    embeddingCache,
		config:            config,
	}
}

func (s *documentService) GetAll(ctx context.Context) ([]*dto.DocumentMetaResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentMetaResponse, 0, len(docs))
	for _, doc := range docs {
		res = append(res, &dto.DocumentMetaResponse{
			DocId:          doc.Id,
			Filename:       doc.Filename,
			DocType:        doc.DocType,
			AuthorityLevel: doc.AuthorityLevel,
			ChunkCount:     doc.ChunkCount,
			CreatedAt:      doc.CreatedAt,
		})
	}
	return res, nil
}

func (s *documentService) GetMeta(ctx context.Context, docId uuid.UUID) (*dto.DocumentMetaResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: docId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("document %s", docId))
	}

	return &dto.DocumentMetaResponse{
		DocId:          doc.Id,
		Filename:       doc.Filename,
		DocType:        doc.DocType,
		AuthorityLevel: doc.AuthorityLevel,
		ChunkCount:     doc.ChunkCount,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

func (s *documentService) GetSourceChunk(ctx context.Context, docId uuid.UUID, chunkId int) (*dto.SourceChunkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: docId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("document %s", docId))
	}

	chunk, err := uow.DocumentChunkRepository().FindOne(ctx,
		specification.ByDocId{DocId: docId},
		specification.ByChunkId{ChunkId: chunkId},
	)
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("chunk %d of document %s", chunkId, docId))
	}

	return &dto.SourceChunkResponse{
		DocId:    docId,
		Filename: doc.Filename,
		ChunkId:  chunk.ChunkId,
		Content:  chunk.Content,
	}, nil
}

// SemanticSearch runs a pgvector cosine search over the stored chunks,
// optionally restricted to a document set.
func (s *documentService) SemanticSearch(ctx context.Context, req *dto.SemanticSearchRequest) (*dto.SemanticSearchResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = s.config.TopK
	}

	queryVec, err := s.embedQuery(req.Query)
	if err != nil {
		return nil, apperrors.NewInternal("failed to embed search query", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, queryVec, topK, req.DocIds, s.config.MinScore)
	if err != nil {
		return nil, err
	}

	// Resolve filenames for the hits in one pass.
	filenames := map[uuid.UUID]string{}
	for _, hit := range scored {
		if _, ok := filenames[hit.Chunk.DocId]; ok {
			continue
		}
		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: hit.Chunk.DocId})
		if err != nil {
			return nil, err
		}
		if doc != nil {
			filenames[hit.Chunk.DocId] = doc.Filename
		}
	}

	res := &dto.SemanticSearchResponse{Query: req.Query, Results: []dto.SemanticSearchResult{}}
	for _, hit := range scored {
		res.Results = append(res.Results, dto.SemanticSearchResult{
			DocId:      hit.Chunk.DocId,
			Filename:   filenames[hit.Chunk.DocId],
			ChunkId:    hit.Chunk.ChunkId,
			Content:    hit.Chunk.Content,
			Similarity: hit.Similarity,
		})
	}
	return res, nil
}

func (s *documentService) embedQuery(query string) ([]float32, error) {
	if s.embeddingCache != nil {
		if vec, found := s.embeddingCache.Get(query); found {
			return vec, nil
		}
	}
	resp, err := s.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	if s.embeddingCache != nil {
		s.embeddingCache.Set(query, resp.Embedding.Values)
	}
	return resp.Embedding.Values, nil
}
