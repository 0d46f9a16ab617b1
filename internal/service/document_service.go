package service

import (
	"context"
	"encoding/json"
	"time"

	"customer-inquiry-be/internal/dto"
	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/internal/pkg/serverutils"
	"customer-inquiry-be/internal/repository/specification"
	"customer-inquiry-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IDocumentService manages the documents behind the search pipeline.
// Writes queue an embedding job; the consumer indexes asynchronously.
type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Update(ctx context.Context, userId uuid.UUID, request *dto.UpdateDocumentRequest) error
	Delete(ctx context.Context, userId uuid.UUID, request *dto.DeleteDocumentRequest) error
	GetOne(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.GetDocumentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllDocumentsResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	logger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           logger,
	}
}

func (ds *documentService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document := &entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     request.Title,
		Content:   request.Content,
		CreatedAt: time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}

	ds.queueEmbedding(ctx, document.Id)

	return &dto.CreateDocumentResponse{Id: document.Id}, nil
}

func (ds *documentService) Update(ctx context.Context, userId uuid.UUID, request *dto.UpdateDocumentRequest) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := ds.findOwned(ctx, uow, userId, request.Id)
	if err != nil {
		return err
	}

	document.Title = request.Title
	document.Content = request.Content

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return err
	}

	ds.queueEmbedding(ctx, document.Id)
	return nil
}

func (ds *documentService) Delete(ctx context.Context, userId uuid.UUID, request *dto.DeleteDocumentRequest) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := ds.findOwned(ctx, uow, userId, request.Id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (ds *documentService) GetOne(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.GetDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := ds.findOwned(ctx, uow, userId, documentId)
	if err != nil {
		return nil, err
	}

	return &dto.GetDocumentResponse{
		Id:        document.Id,
		Title:     document.Title,
		Content:   document.Content,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}, nil
}

func (ds *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllDocumentsResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllDocumentsResponse, 0, len(documents))
	for _, d := range documents {
		response = append(response, &dto.GetAllDocumentsResponse{
			Id:        d.Id,
			Title:     d.Title,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return response, nil
}

func (ds *documentService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, documentId uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, serverutils.NewNotFoundError("document not found")
	}
	return document, nil
}

func (ds *documentService) queueEmbedding(ctx context.Context, documentId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: documentId})
	if err != nil {
		ds.logger.Error("document_service", "failed to marshal embedding job", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err,
		})
		return
	}

	if err := ds.publisherService.Publish(ctx, payload); err != nil {
		// The document is saved; indexing will catch up on the next update.
		ds.logger.Error("document_service", "failed to queue embedding job", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err,
		})
	}
}
