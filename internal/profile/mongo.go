package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brandstudio/internal/domain"
)

const mongoCollection = "brand_profiles"

type profileDocument struct {
	Key       string              `bson:"_id"`
	Profile   domain.BrandProfile `bson:"profile"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

// MongoStore keeps the profile in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
	key  string
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(mongoCollection), key: DefaultKey}
}

// ConnectMongo dials uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func (s *MongoStore) Load(ctx context.Context) (domain.BrandProfile, error) {
	var doc profileDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.DefaultBrandProfile(), nil
	}
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return domain.MergeOverDefaults(doc.Profile), nil
}

func (s *MongoStore) Save(ctx context.Context, p domain.BrandProfile) error {
	doc := profileDocument{Key: s.key, Profile: p, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
