package mongo

import (
	"context"
	"errors"

	"github.com/tuncerburak97/apistats/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionName = "api_calls"

type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepository(uri, dbName string) (*MongoRepository, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (r *MongoRepository) calls() *mongo.Collection {
	return r.db.Collection(collectionName)
}

func (r *MongoRepository) SaveCall(ctx context.Context, rec *model.CallRecord) error {
	_, err := r.calls().InsertOne(ctx, rec)
	return err
}

func (r *MongoRepository) LastCalled(ctx context.Context) (*model.CallRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "called_at", Value: -1}})

	var rec model.CallRecord
	err := r.calls().FindOne(ctx, bson.D{}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *MongoRepository) MostFrequent(ctx context.Context) (*model.EndpointCount, error) {
	counts, err := r.aggregateCounts(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, nil
	}
	return &counts[0], nil
}

func (r *MongoRepository) Counts(ctx context.Context) ([]model.EndpointCount, error) {
	return r.aggregateCounts(ctx, 0)
}

// aggregateCounts groups records by endpoint, sorted by descending count.
// A limit of 0 returns every bucket.
func (r *MongoRepository) aggregateCounts(ctx context.Context, limit int) ([]model.EndpointCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$endpoint"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := r.calls().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make([]model.EndpointCount, 0)
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Migrate(ctx context.Context) error {
	_, err := r.calls().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "called_at", Value: -1}},
	})
	return err
}

func (r *MongoRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
