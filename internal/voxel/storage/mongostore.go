package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/serialization"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// MongoConfig holds connection settings for the document-store backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore is the document-database alternative to BadgerStore: each
// chunk is one document keyed by its region coordinates, holding the
// serializer's binary payload as a BSON binary field plus a few indexed
// scalar fields for region-range queries.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type chunkDocument struct {
	RegionX int32  `bson:"region_x"`
	RegionY int32  `bson:"region_y"`
	RegionZ int32  `bson:"region_z"`
	Payload []byte `bson:"payload"`
}

// NewMongoStore connects to uri and ensures the region-coordinate index.
func NewMongoStore(cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "voxelcore"
	}
	if cfg.Collection == "" {
		cfg.Collection = "chunks"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	store := &MongoStore{client: client, collection: collection, ctxTimeout: 5 * time.Second}

	if err := store.ensureIndexes(); err != nil {
		return nil, err
	}
	return store, nil
}

func (m *MongoStore) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()

	regionIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "region_x", Value: 1}, {Key: "region_y", Value: 1}, {Key: "region_z", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("region_coords_unique"),
	}
	_, err := m.collection.Indexes().CreateOne(ctx, regionIdx)
	return err
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Loader implements region.Loader against the document store.
func (m *MongoStore) Loader(cfg chunk.Config) func(voxeltype.RegionKey) (*chunk.Storage, error) {
	return func(key voxeltype.RegionKey) (*chunk.Storage, error) {
		ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
		defer cancel()

		filter := bson.M{"region_x": key.X, "region_y": key.Y, "region_z": key.Z}
		var doc chunkDocument
		err := m.collection.FindOne(ctx, filter).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return chunk.New(cfg), nil
		}
		if err != nil {
			return nil, fmt.Errorf("find chunk document %v: %w", key, err)
		}

		payload := doc.Payload
		if serialization.IsLegacyChunkPayload(payload) {
			migrated, err := serialization.MigrateLegacyChunkPayload(payload)
			if err != nil {
				return nil, fmt.Errorf("migrate legacy chunk document %v: %w", key, err)
			}
			payload = migrated
		}

		s, err := serialization.DeserializeChunk(payload)
		if err != nil {
			return nil, fmt.Errorf("deserialize chunk document %v: %w", key, err)
		}
		return s, nil
	}
}

// Saver implements region.Saver as an upsert keyed by region coordinates.
func (m *MongoStore) Saver() func(voxeltype.RegionKey, *chunk.Storage) error {
	return func(key voxeltype.RegionKey, s *chunk.Storage) error {
		ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
		defer cancel()

		filter := bson.M{"region_x": key.X, "region_y": key.Y, "region_z": key.Z}
		update := bson.M{"$set": chunkDocument{
			RegionX: key.X,
			RegionY: key.Y,
			RegionZ: key.Z,
			Payload: serialization.SerializeChunk(s),
		}}

		_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("upsert chunk document %v: %w", key, err)
		}
		return nil
	}
}
