package storage

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/familytree/pkg/errors"
)

// DefaultCollection is the collection snapshots are stored in.
const DefaultCollection = "snapshots"

// MongoOptions configures a MongoArchive.
type MongoOptions struct {
	URI        string // mongodb://host:27017
	Database   string
	Collection string // defaults to DefaultCollection
	Timeout    time.Duration
}

// MongoArchive stores snapshots as documents in one collection.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoArchive connects to MongoDB, pings it and ensures the
// created_at index exists.
func NewMongoArchive(ctx context.Context, opts MongoOptions) (*MongoArchive, error) {
	if opts.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo database is required")
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.Timeout).
		SetServerSelectionTimeout(opts.Timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect %s", opts.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping %s", opts.URI)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create index")
	}
	return &MongoArchive{client: client, coll: coll}, nil
}

// Save inserts s.
func (a *MongoArchive) Save(ctx context.Context, s *Snapshot) error {
	prepare(s)
	if _, err := a.coll.InsertOne(ctx, s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert snapshot %s", s.ID)
	}
	return nil
}

// Get loads the snapshot with id.
func (a *MongoArchive) Get(ctx context.Context, id string) (*Snapshot, error) {
	var s Snapshot
	err := a.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&s)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "snapshot %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find snapshot %s", id)
	}
	return &s, nil
}

// List summarizes the newest snapshots on the server side so that member
// maps and frames are never transferred.
func (a *MongoArchive) List(ctx context.Context, limit int) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.D{
		{Key: "source", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "focus", Value: "$frame.focus"},
		{Key: "members", Value: bson.D{{Key: "$size", Value: bson.D{
			{Key: "$objectToArray", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$data.members", bson.D{}}}}},
		}}}},
	}}})

	cur, err := a.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list snapshots")
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode snapshots")
	}
	return out, nil
}

// Close disconnects the client.
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

var _ Archive = (*MongoArchive)(nil)
