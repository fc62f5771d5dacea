package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/followgraph/pkg/digraph"
	ferrors "github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/observability"
	"github.com/matzehuels/followgraph/pkg/rngstate"
)

// Collection names.
const (
	GraphsCollection = "graphs"
	StatesCollection = "states"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "followgraph"

type graphDocument struct {
	Name      string      `bson:"_id"`
	Graph     graph.Graph `bson:"graph"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

type stateDocument struct {
	Name      string    `bson:"_id"`
	State     []byte    `bson:"state"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps graphs and states in a MongoDB database, one document
// per name.
type MongoStore struct {
	client *mongo.Client
	graphs *mongo.Collection
	states *mongo.Collection
}

// NewMongoStore connects to uri and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client: client,
		graphs: db.Collection(GraphsCollection),
		states: db.Collection(StatesCollection),
	}, nil
}

// SaveGraph upserts the node-link document for g.
func (s *MongoStore) SaveGraph(ctx context.Context, name string, g *digraph.Graph) error {
	if err := ferrors.ValidateName(name); err != nil {
		return err
	}
	doc := graphDocument{Name: name, Graph: graph.FromGraph(g), UpdatedAt: time.Now().UTC()}
	if err := s.upsert(ctx, s.graphs, name, doc); err != nil {
		return fmt.Errorf("save graph %q: %w", name, err)
	}
	observability.Storage().OnSave(ctx, KindGraph, name, g.NodeCount()+g.EdgeCount())
	return nil
}

// LoadGraph reads the graph called name.
func (s *MongoStore) LoadGraph(ctx context.Context, name string) (*digraph.Graph, error) {
	if err := ferrors.ValidateName(name); err != nil {
		return nil, err
	}
	var doc graphDocument
	if err := s.find(ctx, s.graphs, KindGraph, name, &doc); err != nil {
		return nil, err
	}
	g, err := graph.ToGraph(doc.Graph)
	if err != nil {
		return nil, fmt.Errorf("graph %q: %w", name, err)
	}
	return g, nil
}

// SaveState upserts the binary encoding of st.
func (s *MongoStore) SaveState(ctx context.Context, name string, st *rngstate.State) error {
	if err := ferrors.ValidateName(name); err != nil {
		return err
	}
	data, err := st.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	doc := stateDocument{Name: name, State: data, UpdatedAt: time.Now().UTC()}
	if err := s.upsert(ctx, s.states, name, doc); err != nil {
		return fmt.Errorf("save state %q: %w", name, err)
	}
	observability.Storage().OnSave(ctx, KindState, name, len(data))
	return nil
}

// LoadState reads the state called name.
func (s *MongoStore) LoadState(ctx context.Context, name string) (*rngstate.State, error) {
	if err := ferrors.ValidateName(name); err != nil {
		return nil, err
	}
	var doc stateDocument
	if err := s.find(ctx, s.states, KindState, name, &doc); err != nil {
		return nil, err
	}
	st, err := rngstate.Parse(doc.State)
	if err != nil {
		return nil, fmt.Errorf("state %q: %w", name, err)
	}
	return st, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) upsert(ctx context.Context, coll *mongo.Collection, name string, doc any) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) find(ctx context.Context, coll *mongo.Collection, kind, name string, out any) error {
	err := coll.FindOne(ctx, bson.M{"_id": name}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Storage().OnLoad(ctx, kind, name, false)
		return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %s %q: %w", kind, name, err)
	}
	observability.Storage().OnLoad(ctx, kind, name, true)
	return nil
}

var _ Store = (*MongoStore)(nil)
