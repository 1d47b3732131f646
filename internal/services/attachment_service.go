package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/storage"
)

// IAttachmentService defines the interface for attachment operations.
// The rest of the system treats attachments as opaque references: Save
// returns documents whose IDs callers attach to payments, bills, purchase
// orders or vendors.
type IAttachmentService interface {
	Save(ctx context.Context, files []*multipart.FileHeader) ([]models.Attachment, error)
	Delete(ctx context.Context, ids []primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attachment, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Attachment, error)
	Query(ctx context.Context, opts db.PageOptions) (*db.Page[models.Attachment], error)
}

const attachmentsCollection = "attachments"

// attachmentService implements IAttachmentService.
type attachmentService struct {
	db      *mongo.Database
	storage storage.IBlobStorage
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(database *mongo.Database, blobStorage storage.IBlobStorage) IAttachmentService {
	return &attachmentService{db: database, storage: blobStorage}
}

// Save uploads each file to blob storage and records an Attachment document
// per file. Files are grouped into folders by their mime type family.
func (s *attachmentService) Save(ctx context.Context, files []*multipart.FileHeader) ([]models.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	collection := s.db.Collection(attachmentsCollection)
	created := make([]models.Attachment, 0, len(files))

	for _, fileHeader := range files {
		contentType := fileHeader.Header.Get("Content-Type")
		key := fmt.Sprintf("uploads/%s/%s_%s", folderForMimeType(contentType), uuid.NewString(), fileHeader.Filename)

		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", fileHeader.Filename, err)
		}
		url, err := s.storage.Upload(ctx, key, contentType, file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment %s: %w", fileHeader.Filename, err)
		}

		attachment := models.Attachment{
			Base:     models.NewBase(),
			Name:     fileHeader.Filename,
			Key:      key,
			MimeType: contentType,
			URL:      url,
		}
		if _, err := collection.InsertOne(ctx, &attachment); err != nil {
			return nil, fmt.Errorf("failed to insert attachment %s: %w", fileHeader.Filename, err)
		}
		created = append(created, attachment)
	}

	return created, nil
}

// Delete removes the attachment documents and their stored objects.
// Missing IDs are skipped; a failed blob delete is logged but does not keep
// the document around.
func (s *attachmentService) Delete(ctx context.Context, ids []primitive.ObjectID) error {
	collection := s.db.Collection(attachmentsCollection)

	for _, id := range ids {
		var attachment models.Attachment
		err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&attachment)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return fmt.Errorf("error finding attachment %s: %w", id.Hex(), err)
		}

		if err := s.storage.Delete(ctx, attachment.Key); err != nil {
			log.Printf("Failed to delete stored object %s for attachment %s: %v", attachment.Key, id.Hex(), err)
		}

		if _, err := collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return fmt.Errorf("failed to delete attachment %s: %w", id.Hex(), err)
		}
	}
	return nil
}

// FindByID fetches a single attachment.
func (s *attachmentService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attachment, error) {
	var attachment models.Attachment
	err := s.db.Collection(attachmentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&attachment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Attachment not found")
		}
		return nil, fmt.Errorf("error finding attachment %s: %w", id.Hex(), err)
	}
	return &attachment, nil
}

// FindByIDs fetches the attachments for a list of references. IDs with no
// matching document are silently absent from the result.
func (s *attachmentService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Attachment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.db.Collection(attachmentsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer cursor.Close(ctx)

	var attachments []models.Attachment
	if err := cursor.All(ctx, &attachments); err != nil {
		return nil, fmt.Errorf("failed to decode attachments: %w", err)
	}
	return attachments, nil
}

// Query returns a page of attachments, newest first.
func (s *attachmentService) Query(ctx context.Context, opts db.PageOptions) (*db.Page[models.Attachment], error) {
	return db.Paginate[models.Attachment](ctx, s.db.Collection(attachmentsCollection), bson.M{}, opts)
}

// folderForMimeType maps a mime type to the storage folder for that family.
func folderForMimeType(mimeType string) string {
	switch strings.SplitN(mimeType, "/", 2)[0] {
	case "image":
		return "images"
	case "video":
		return "videos"
	case "application":
		return "files"
	default:
		return "others"
	}
}
