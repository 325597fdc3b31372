package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/retry"
)

const closeTimeout = 5 * time.Second

type document struct {
	ID     string            `bson:"_id"`
	Record core.MemoryRecord `bson:"record"`
}

// RecordStore keeps one document per record. Transactions need a replica set
// or a sharded cluster.
type RecordStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewRecordStore(ctx context.Context, uri, database, collection string) (*RecordStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName(core.TuskName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	err = retry.NewDefaultRetrier().Named("mongo ping").Do(ctx, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &RecordStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *RecordStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *RecordStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *RecordStore) Get(ctx context.Context, key core.RecordKey) (*core.MemoryRecord, bool, error) {
	rec, err := findRecord(ctx, s.collection, key)
	if err != nil {
		return nil, false, err
	}
	return rec, rec != nil, nil
}

func (s *RecordStore) RunTransaction(ctx context.Context, key core.RecordKey, fn core.TxFunc) (*core.MemoryRecord, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		current, err := findRecord(sc, s.collection, key)
		if err != nil {
			return nil, err
		}

		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		if next.Key() != key {
			return nil, fmt.Errorf("transaction for %s returned record %s", key, next.Key())
		}

		if current == nil {
			_, err = s.collection.InsertOne(sc, document{ID: key.StoreKey(), Record: *next})
		} else {
			_, err = s.collection.UpdateByID(sc, key.StoreKey(), bson.M{
				"$set": bson.M{
					"record.messages":  next.Messages,
					"record.summaries": next.Summaries,
					"record.userFacts": next.UserFacts,
					"record.updatedAt": next.UpdatedAt,
				},
			})
			next.TenantID = current.TenantID
			next.CreatedAt = current.CreatedAt
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write memory record: %w", err)
		}
		return next, nil
	}, txOpts)
	if err != nil {
		return nil, err
	}

	rec, _ := result.(*core.MemoryRecord)
	return rec, nil
}

func findRecord(ctx context.Context, coll *mongo.Collection, key core.RecordKey) (*core.MemoryRecord, error) {
	var doc document
	err := coll.FindOne(ctx, bson.M{"_id": key.StoreKey()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find memory record: %w", err)
	}
	return &doc.Record, nil
}
