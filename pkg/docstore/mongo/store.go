// Package mongo stores documents in a MongoDB collection. The key is kept
// both as the record _id and under the uuid field, so that records written
// by other tools against the same collection stay readable.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

const (
	DefaultDatabase         = "dsx"
	DefaultCollection       = "users"
	DefaultOperationTimeout = 2 * time.Second

	idField = "_id"
)

type Params struct {
	URI        string
	Database   string
	Collection string
	// OperationTimeout bounds every call to the server, connect included.
	OperationTimeout time.Duration
}

type Store struct {
	params Params

	mu         sync.RWMutex
	client     *mongo.Client
	collection *mongo.Collection
}

// NewStore returns an unconnected store. Operations fail with
// docstore.ErrUnavailable until Connect succeeds.
func NewStore(params Params) *Store {
	if params.Database == "" {
		params.Database = DefaultDatabase
	}
	if params.Collection == "" {
		params.Collection = DefaultCollection
	}
	if params.OperationTimeout == 0 {
		params.OperationTimeout = DefaultOperationTimeout
	}
	return &Store{params: params}
}

// Connect dials the server and pings it. An existing client is replaced.
func (s *Store) Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(s.params.URI).
		SetConnectTimeout(s.params.OperationTimeout).
		SetServerSelectionTimeout(s.params.OperationTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.params.OperationTimeout)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s.mu.Lock()
	previous := s.client
	s.client = client
	s.collection = client.Database(s.params.Database).Collection(s.params.Collection)
	s.mu.Unlock()

	if previous != nil {
		if err := previous.Disconnect(context.Background()); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("failed to disconnect previous MongoDB client")
		}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, doc models.Document) error {
	coll, ctx, cancel, err := s.begin(ctx, "upsert")
	if err != nil {
		return err
	}
	defer cancel()

	set := bson.M{models.KeyField: doc.Key}
	for k, v := range doc.Attributes {
		set[k] = v
	}
	_, err = coll.UpdateOne(ctx, byKey(doc.Key), bson.M{"$set": set, "$setOnInsert": bson.M{idField: doc.Key}},
		options.UpdateOne().SetUpsert(true))
	return mapError("upsert", err)
}

func (s *Store) Update(ctx context.Context, key string, attributes models.Attributes) (bool, error) {
	set := models.NewDocument(key, attributes).Attributes.NonNull()
	if len(set) == 0 {
		return false, nil
	}
	coll, ctx, cancel, err := s.begin(ctx, "update")
	if err != nil {
		return false, err
	}
	defer cancel()

	res, err := coll.UpdateOne(ctx, byKey(key), bson.M{"$set": bson.M(set)})
	if err != nil {
		return false, mapError("update", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) FindOne(ctx context.Context, key string) (models.Document, error) {
	coll, ctx, cancel, err := s.begin(ctx, "find one")
	if err != nil {
		return models.Document{}, err
	}
	defer cancel()

	var record bson.M
	err = coll.FindOne(ctx, byKey(key)).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Document{}, docstore.NewErrNotFound(key)
	}
	if err != nil {
		return models.Document{}, mapError("find one", err)
	}
	return toDocument(key, record), nil
}

func (s *Store) FindAll(ctx context.Context) ([]models.Document, error) {
	coll, ctx, cancel, err := s.begin(ctx, "find all")
	if err != nil {
		return nil, err
	}
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, mapError("find all", err)
	}
	var records []bson.M
	if err = cursor.All(ctx, &records); err != nil {
		return nil, mapError("find all", err)
	}

	res := make([]models.Document, 0, len(records))
	for _, record := range records {
		key, ok := record[models.KeyField].(string)
		if !ok {
			log.Ctx(ctx).Warn().Interface("ID", record[idField]).Msgf("skipping record without %q", models.KeyField)
			continue
		}
		res = append(res, toDocument(key, record))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res, nil
}

func (s *Store) DeleteOne(ctx context.Context, key string) error {
	coll, ctx, cancel, err := s.begin(ctx, "delete one")
	if err != nil {
		return err
	}
	defer cancel()

	_, err = coll.DeleteOne(ctx, byKey(key))
	return mapError("delete one", err)
}

func (s *Store) DeleteAll(ctx context.Context) error {
	coll, ctx, cancel, err := s.begin(ctx, "delete all")
	if err != nil {
		return err
	}
	defer cancel()

	_, err = coll.DeleteMany(ctx, bson.M{})
	return mapError("delete all", err)
}

// Available reports whether a client has been connected. Liveness after that
// is tracked by the supervising wrapper from operation failures.
func (s *Store) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client, s.collection = nil, nil
	s.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (s *Store) begin(ctx context.Context, op string) (*mongo.Collection, context.Context, context.CancelFunc, error) {
	s.mu.RLock()
	coll := s.collection
	s.mu.RUnlock()
	if coll == nil {
		return nil, ctx, func() {}, docstore.NewErrUnavailable(op, errors.New("not connected"))
	}
	ctx, cancel := context.WithTimeout(ctx, s.params.OperationTimeout)
	return coll, ctx, cancel, nil
}

func byKey(key string) bson.M {
	return bson.M{models.KeyField: key}
}

// mapError classifies driver failures. Transport failures become
// docstore.ErrUnavailable so the supervisor can start reconnecting.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, context.DeadlineExceeded) {
		return docstore.NewErrUnavailable(op, err)
	}
	return models.WrapBaseError(err, "mongo %s failed", op).
		WithCode(models.DatastoreFailure).
		WithComponent("DocumentStore")
}

func toDocument(key string, record bson.M) models.Document {
	attributes := make(models.Attributes, len(record))
	for k, v := range record {
		if k == idField {
			continue
		}
		attributes[k] = normalize(v)
	}
	return models.NewDocument(key, attributes)
}

// normalize turns driver types into the plain JSON shapes used everywhere
// else in the process.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		res := make(map[string]interface{}, len(t))
		for k, inner := range t {
			res[k] = normalize(inner)
		}
		return res
	case bson.D:
		res := make(map[string]interface{}, len(t))
		for _, e := range t {
			res[e.Key] = normalize(e.Value)
		}
		return res
	case bson.A:
		res := make([]interface{}, len(t))
		for i, inner := range t {
			res[i] = normalize(inner)
		}
		return res
	case []interface{}:
		res := make([]interface{}, len(t))
		for i, inner := range t {
			res[i] = normalize(inner)
		}
		return res
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case bson.ObjectID:
		return t.Hex()
	default:
		return v
	}
}

// compile-time interface check
var _ docstore.Connector = (*Store)(nil)
