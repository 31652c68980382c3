package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ops-assistant-be/internal/dto"
	"ops-assistant-be/internal/entity"
	"ops-assistant-be/internal/pkg/apperrors"
	"ops-assistant-be/internal/pkg/logger"
	"ops-assistant-be/internal/repository/specification"
	"ops-assistant-be/internal/repository/unitofwork"
	"ops-assistant-be/pkg/rag"
	"ops-assistant-be/pkg/rag/generator"
	"ops-assistant-be/pkg/rag/pipeline"
	"ops-assistant-be/pkg/rag/retriever"
	"ops-assistant-be/pkg/rag/snapshot"

	"github.com/google/uuid"
)

type IGenerationService interface {
	Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
	GetRun(ctx context.Context, runId uuid.UUID) (*dto.GenerationRunResponse, error)
	GetAllRuns(ctx context.Context) ([]*dto.GenerationRunResponse, error)
}

type generationService struct {
	uowFactory unitofwork.RepositoryFactory
	pipeline   *pipeline.Pipeline
	logger     logger.ILogger
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	ragPipeline *pipeline.Pipeline,
	sysLogger logger.ILogger,
) IGenerationService {
	return &generationService{
		uowFactory: uowFactory,
		pipeline:   ragPipeline,
		logger:     sysLogger,
	}
}

// Generate pins an in-memory snapshot of the requested documents' chunks,
// runs the grounded generation pipeline against it, and persists the run.
// Concurrent ingestion or deletion cannot affect a request once its
// snapshot is built.
func (s *generationService) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if len(req.DocIds) == 0 {
		return nil, apperrors.NewBadRequest("doc_ids must name at least one document")
	}

	snap, filenames, err := s.buildSnapshot(ctx, req.DocIds)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := s.pipeline.Run(ctx, snap, pipeline.Request{
		Kind:        req.OutputKind,
		Style:       req.Options.Style,
		IncludeRaci: req.Options.IncludeRaci,
		Filenames:   filenames,
	})
	if err != nil {
		appErr := mapPipelineError(err)
		s.recordRun(ctx, req, nil, nil, appErr)
		return nil, appErr
	}

	s.logger.Info("generation", "document generated", map[string]interface{}{
		"output_kind": req.OutputKind,
		"doc_count":   len(req.DocIds),
		"confidence":  result.Verification.OverallConfidence,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	runId := s.recordRun(ctx, req, result.Document, &result.Verification, nil)

	return &dto.GenerateResponse{
		RunId:        runId,
		Document:     result.Document,
		Verification: result.Verification,
	}, nil
}

func (s *generationService) GetRun(ctx context.Context, runId uuid.UUID) (*dto.GenerationRunResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	run, err := uow.GenerationRunRepository().FindOne(ctx, specification.ByID{ID: runId})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("generation run %s", runId))
	}
	return runToResponse(run), nil
}

func (s *generationService) GetAllRuns(ctx context.Context) ([]*dto.GenerationRunResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	runs, err := uow.GenerationRunRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GenerationRunResponse, 0, len(runs))
	for _, run := range runs {
		res = append(res, runToResponse(run))
	}
	return res, nil
}

// buildSnapshot loads every chunk of the requested documents in reading
// order and projects them into an immutable snapshot. All requested ids
// must exist; a missing one fails the request up front.
func (s *generationService) buildSnapshot(ctx context.Context, docIds []uuid.UUID) (*snapshot.Snapshot, []string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: docIds})
	if err != nil {
		return nil, nil, err
	}

	filenameByDoc := make(map[uuid.UUID]string, len(docs))
	filenames := make([]string, 0, len(docs))
	for _, doc := range docs {
		filenameByDoc[doc.Id] = doc.Filename
		filenames = append(filenames, doc.Filename)
	}
	for _, id := range docIds {
		if _, ok := filenameByDoc[id]; !ok {
			return nil, nil, apperrors.NewNotFound(fmt.Sprintf("document %s", id))
		}
	}

	stored, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocIds{DocIds: docIds},
		specification.InReadingOrder{},
	)
	if err != nil {
		return nil, nil, err
	}

	chunks := make([]rag.Chunk, 0, len(stored))
	for _, c := range stored {
		chunks = append(chunks, rag.Chunk{
			DocId:     c.DocId,
			Filename:  filenameByDoc[c.DocId],
			ChunkId:   c.ChunkId,
			Content:   c.Content,
			Embedding: c.Embedding,
		})
	}
	return snapshot.New(chunks), filenames, nil
}

// recordRun persists the audit record. Persistence failures are logged and
// swallowed: the caller already has (or is about to get) their response.
func (s *generationService) recordRun(ctx context.Context, req *dto.GenerateRequest, doc *rag.GeneratedDocument, verification *rag.VerificationReport, runErr *apperrors.AppError) uuid.UUID {
	run := &entity.GenerationRun{
		Id:         uuid.New(),
		DocIds:     req.DocIds,
		OutputKind: req.OutputKind,
		Status:     entity.RunStatusSucceeded,
	}

	if runErr != nil {
		run.Status = entity.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		if payload, err := json.Marshal(doc); err == nil {
			run.Document = payload
		}
		if payload, err := json.Marshal(verification); err == nil {
			run.Verification = payload
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationRunRepository().Create(ctx, run); err != nil {
		s.logger.Error("generation", "failed to persist generation run", map[string]interface{}{
			"run_id": run.Id.String(),
			"error":  err.Error(),
		})
	}
	return run.Id
}

func runToResponse(run *entity.GenerationRun) *dto.GenerationRunResponse {
	return &dto.GenerationRunResponse{
		RunId:        run.Id,
		DocIds:       run.DocIds,
		OutputKind:   run.OutputKind,
		Status:       run.Status,
		Document:     json.RawMessage(run.Document),
		Verification: json.RawMessage(run.Verification),
		ErrorMessage: run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
	}
}

func mapPipelineError(err error) *apperrors.AppError {
	var shapeErr *generator.ShapeError
	if errors.As(err, &shapeErr) {
		return apperrors.NewGenerationShapeFailure(shapeErr.Unit, shapeErr.Err)
	}
	if errors.Is(err, retriever.ErrTimeout) {
		return apperrors.NewRetrievalTimeout("evidence collection", err)
	}
	if errors.Is(err, retriever.ErrEmbedFailed) {
		return apperrors.NewInternal("embedding provider failed during evidence collection", err)
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.NewInternal("generation pipeline failed", err)
}
