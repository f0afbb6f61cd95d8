package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
)

// MongoConfig configures a MongoDB-backed snapshot store.
type MongoConfig struct {
	// URI is the connection string, e.g. "mongodb://localhost:27017".
	// Empty means localhost.
	URI string

	// Database is the database name. Empty means "curlyarrow".
	Database string

	// Collection is the collection name. Empty means "snapshots".
	Collection string
}

// MongoStore stores snapshots as BSON documents keyed by snapshot ID.
// Use it when saved snapshots need to be queried or retained long-term.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	uri := cfg.URI
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := cfg.Database
	if db == "" {
		db = "curlyarrow"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "snapshots"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

// Save upserts a snapshot document keyed by its ID.
func (s *MongoStore) Save(ctx context.Context, sn snapshot.Snapshot) error {
	if sn.ID == "" {
		return ErrMissingID
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sn.ID}, sn, opts); err != nil {
		return fmt.Errorf("mongo save: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID.
func (s *MongoStore) Load(ctx context.Context, id string) (snapshot.Snapshot, error) {
	var sn snapshot.Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("mongo load: %w", err)
	}
	return sn, nil
}

// List returns every stored snapshot ordered by creation time, then ID.
func (s *MongoStore) List(ctx context.Context) ([]snapshot.Snapshot, error) {
	sort := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, sort)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	var sns []snapshot.Snapshot
	if err := cur.All(ctx, &sns); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return sns, nil
}

// Delete removes a snapshot document.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
