package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Deekshi23/portfolio/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// contactDocument is the stored shape of a contact message. The message id
// doubles as the document _id.
type contactDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Subject   string    `bson:"subject"`
	Message   string    `bson:"message"`
	Timestamp time.Time `bson:"timestamp"`
	IsRead    bool      `bson:"isRead"`
	IPAddress string    `bson:"ipAddress,omitempty"`
	UserAgent string    `bson:"userAgent,omitempty"`
}

func toContactDocument(m *model.ContactMessage) contactDocument {
	return contactDocument{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Timestamp: m.Timestamp,
		IsRead:    m.IsRead,
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
	}
}

func (d contactDocument) model() *model.ContactMessage {
	return &model.ContactMessage{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Subject:   d.Subject,
		Message:   d.Message,
		Timestamp: d.Timestamp.UTC(),
		IsRead:    d.IsRead,
		IPAddress: d.IPAddress,
		UserAgent: d.UserAgent,
	}
}

// MongoContactRepository is the MongoDB implementation of ContactRepository.
type MongoContactRepository struct {
	coll *mongo.Collection
}

// NewMongoContactRepository creates a repository on the contact_messages
// collection of db.
func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{coll: db.Collection(contactCollection)}
}

var _ ContactRepository = (*MongoContactRepository)(nil)

// EnsureIndexes creates the descending timestamp index used by List.
func (r *MongoContactRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}
	return nil
}

func (r *MongoContactRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	res, err := r.coll.InsertOne(ctx, toContactDocument(msg))
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	if res.InsertedID == nil {
		return errors.New("insert contact message: no document written")
	}
	return nil
}

func (r *MongoContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	messages := []*model.ContactMessage{}
	// A zero limit means "no limit" to MongoDB; here it means an empty page.
	if opts.Limit <= 0 {
		return messages, nil
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(opts.Skip)).
		SetLimit(int64(opts.Limit))

	cur, err := r.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc contactDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode contact message: %w", err)
		}
		messages = append(messages, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return messages, nil
}

func (r *MongoContactRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}

// MarkRead matches on _id equal to the id string, the same value Create
// stored, and reports whether the document was modified.
func (r *MongoContactRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "isRead", Value: true}}}},
	)
	if err != nil {
		return false, fmt.Errorf("mark contact message read: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoContactRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("delete contact message: %w", err)
	}
	return res.DeletedCount > 0, nil
}
