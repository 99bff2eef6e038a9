package loader

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "orgchart"
	DefaultMongoCollection = "nodes"
)

// Mongo loads hierarchies stored as flat records, one document per node:
//
//	{org_id, view_mode, id, parent_id, name, role, avatar_ref, email,
//	 display_order, attributes}
type Mongo struct {
	coll   *mongo.Collection
	client *mongo.Client // set when the loader owns the connection
}

// NewMongo wraps an existing collection.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

// ConnectMongo dials uri and returns a loader over database.collection. The
// caller must Close it.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &Mongo{coll: client.Database(database).Collection(collection), client: client}, nil
}

// EnsureIndexes creates the lookup index on (org_id, view_mode, display_order).
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "view_mode", Value: 1}, {Key: "display_order", Value: 1}},
	})
	return err
}

// Load queries every record of the organization and view mode and builds
// the tree.
func (m *Mongo) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	if err := checkRequest(orgID, mode); err != nil {
		return nil, err
	}
	filter := bson.D{{Key: "org_id", Value: orgID}, {Key: "view_mode", Value: string(mode)}}
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return normalize(orgID, nil, err)
	}
	var records []hierarchy.Record
	if err := cur.All(ctx, &records); err != nil {
		return normalize(orgID, nil, err)
	}
	if len(records) == 0 {
		return nil, errors.EmptyData(orgID)
	}
	root, err := hierarchy.Build(records)
	return normalize(orgID, root, err)
}

// Close disconnects the client if the loader opened it.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
