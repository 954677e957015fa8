package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoAdminRepository exposes the collections of a MongoDB database.
type MongoAdminRepository struct {
	db *mongo.Database
}

// NewMongoAdminRepository creates a MongoAdminRepository on db.
func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{db: db}
}

var _ AdminRepository = (*MongoAdminRepository)(nil)

func (r *MongoAdminRepository) Collections(ctx context.Context) ([]string, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	return names, nil
}

// Documents returns relaxed extended JSON with ObjectID _id values flattened
// to their hex string.
func (r *MongoAdminRepository) Documents(ctx context.Context, collection string, limit int) ([]json.RawMessage, error) {
	if !ValidCollectionName(collection) {
		return nil, ErrInvalidCollection
	}

	cur, err := r.db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	docs := []json.RawMessage{}
	for cur.Next(ctx) {
		doc, err := documentJSON(cur.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	return docs, nil
}

func documentJSON(raw bson.Raw) (json.RawMessage, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(ext, &m); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if oid, ok := m["_id"].(map[string]any); ok {
		if hex, ok := oid["$oid"].(string); ok {
			m["_id"] = hex
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

func (r *MongoAdminRepository) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	if !ValidCollectionName(collection) {
		return "", ErrInvalidCollection
	}
	res, err := r.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	switch id := res.InsertedID.(type) {
	case bson.ObjectID:
		return id.Hex(), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(id), nil
	}
}

// Delete matches _id against both the ObjectID form of id (when it is valid
// hex) and the plain string, since contact messages use string ids.
func (r *MongoAdminRepository) Delete(ctx context.Context, collection, id string) (bool, error) {
	if !ValidCollectionName(collection) {
		return false, ErrInvalidCollection
	}

	candidates := bson.A{id}
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	res, err := r.db.Collection(collection).DeleteOne(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: candidates}}}})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return res.DeletedCount > 0, nil
}
