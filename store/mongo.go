package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/restaurant"
)

const (
	defaultMongoDatabase   = "apismoke"
	defaultMongoCollection = "restaurants"
)

// Mongo stores restaurants as documents keyed by their UUID string.
type Mongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongo wraps a collection handle.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll, now: time.Now}
}

// List returns every restaurant sorted by created_at, newest first.
func (m *Mongo) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list restaurants: %w", err)
	}

	out := make([]restaurant.Restaurant, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode restaurants: %w", err)
	}
	return out, nil
}

// Add inserts the input as a new document.
func (m *Mongo) Add(ctx context.Context, in restaurant.Input) (restaurant.Restaurant, error) {
	rec, err := prepare(in, m.now())
	if err != nil {
		return restaurant.Restaurant{}, err
	}

	// BSON datetimes hold milliseconds; truncate so the echo matches a later List.
	rec.CreatedAt = rec.CreatedAt.Truncate(time.Millisecond)
	rec.UpdatedAt = rec.CreatedAt

	if _, err := m.coll.InsertOne(ctx, rec); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("mongo: insert restaurant: %w", err)
	}
	return rec, nil
}

func openMongo(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.MongoURI == "" {
		return nil, errors.New("store: mongo URI is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("store: connect mongo: %w", err)
	}

	database := cfg.MongoDatabase
	if database == "" {
		database = defaultMongoDatabase
	}
	collection := cfg.MongoCollection
	if collection == "" {
		collection = defaultMongoCollection
	}

	return &Backend{
		Store:  NewMongo(client.Database(database).Collection(collection)),
		Driver: DriverMongo,
		Check:  probe.NewMongoPingProbe(client, readpref.Primary()),
		close:  client.Disconnect,
	}, nil
}
