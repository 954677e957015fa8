package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Deekshi23/portfolio/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GridFSStorage は MongoDB GridFS の既定バケット (fs) に画像を保存する。
type GridFSStorage struct {
	bucket *mongo.GridFSBucket
}

// NewGridFSStorage は db 上の GridFSStorage を生成する。
func NewGridFSStorage(db *mongo.Database) *GridFSStorage {
	return &GridFSStorage{bucket: db.GridFSBucket()}
}

var _ ImageStore = (*GridFSStorage)(nil)

type gridFSMetadata struct {
	ContentType string `bson:"contentType"`
}

func (s *GridFSStorage) Save(ctx context.Context, filename, contentType string, data io.Reader) (*model.ProfileImage, error) {
	opts := options.GridFSUpload().SetMetadata(gridFSMetadata{ContentType: contentType})
	id, err := s.bucket.UploadFromStream(ctx, filename, data, opts)
	if err != nil {
		return nil, fmt.Errorf("storage: gridfs upload: %w", err)
	}

	// サイズとアップロード日時はサーバー側で確定するので files から読み直す
	img, err := s.find(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *GridFSStorage) Open(ctx context.Context, id string) (*model.ProfileImage, io.ReadCloser, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}

	ds, err := s.bucket.OpenDownloadStream(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("storage: gridfs open: %w", err)
	}
	return toProfileImage(ds.GetFile()), ds, nil
}

func (s *GridFSStorage) Latest(ctx context.Context) (*model.ProfileImage, error) {
	return s.find(ctx, bson.D{})
}

// find returns the most recently uploaded file matching filter.
func (s *GridFSStorage) find(ctx context.Context, filter bson.D) (*model.ProfileImage, error) {
	opts := options.GridFSFind().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetLimit(1)
	cur, err := s.bucket.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("storage: gridfs find: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("storage: gridfs find: %w", err)
		}
		return nil, ErrNotFound
	}
	var file mongo.GridFSFile
	if err := cur.Decode(&file); err != nil {
		return nil, fmt.Errorf("storage: gridfs decode: %w", err)
	}
	return toProfileImage(&file), nil
}

func toProfileImage(f *mongo.GridFSFile) *model.ProfileImage {
	img := &model.ProfileImage{
		Filename:   f.Name,
		Size:       f.Length,
		UploadedAt: f.UploadDate.In(time.UTC),
	}
	switch id := f.ID.(type) {
	case bson.ObjectID:
		img.ID = id.Hex()
	default:
		img.ID = fmt.Sprint(id)
	}
	if len(f.Metadata) > 0 {
		var meta gridFSMetadata
		if err := bson.Unmarshal(f.Metadata, &meta); err == nil {
			img.ContentType = meta.ContentType
		}
	}
	return img
}
