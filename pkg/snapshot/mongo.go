package snapshot

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore saves snapshots as documents:
//
//	{screenshot: <png bytes>, metadata: {...}, session_id: "...", timestamp: "2006-01-02 15:04:05"}
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and uses database.collection.
// The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Save implements Store. The returned ID is the hex ObjectID.
func (m *MongoStore) Save(ctx context.Context, s Snapshot) (string, error) {
	res, err := m.collection.InsertOne(ctx, document(stamp(s)))
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func document(s Snapshot) bson.M {
	metadata := bson.M{}
	for k, v := range s.Metadata {
		metadata[k] = v
	}
	return bson.M{
		"screenshot": s.PNG,
		"metadata":   metadata,
		"session_id": s.SessionID,
		"timestamp":  s.CreatedAt.Format(TimeFormat),
	}
}

var _ Store = (*MongoStore)(nil)
