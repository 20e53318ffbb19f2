package mongo

import (
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kvDocument is one key of the store. Value keeps the raw JSON text so the
// collection can be read without knowing the record schema.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoKVStore implements storage.KeyValueStore on a single collection.
type mongoKVStore struct {
	collection *mongo.Collection
}

// NewMongoKVStore creates a key-value store backed by collection in db.
func NewMongoKVStore(db *mongo.Database, collection string) storage.KeyValueStore {
	return &mongoKVStore{
		collection: db.Collection(collection),
	}
}

func (s *mongoKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(doc.Value), nil
}

func (s *mongoKVStore) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}
