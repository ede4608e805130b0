package main

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/hr-console/internal/domain"
)

var errNoDocument = errors.New("no matching document")

// recordStore is the document access hrctl needs.
type recordStore interface {
	Find(ctx context.Context, filter bson.D, limit int64) ([]bson.M, error)
	FindOne(ctx context.Context, filter bson.D) (bson.M, error)
	Set(ctx context.Context, filter bson.D, set bson.D) (int64, error)
}

type auditRecorder interface {
	Record(ctx context.Context, actor, action, target string, before, after map[string]any) (*domain.AuditEntry, error)
}

type mongoStore struct {
	coll *mongo.Collection
}

func newMongoStore(db *mongo.Database, collection string) *mongoStore {
	return &mongoStore{coll: db.Collection(collection)}
}

func (s *mongoStore) Find(ctx context.Context, filter bson.D, limit int64) ([]bson.M, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *mongoStore) FindOne(ctx context.Context, filter bson.D) (bson.M, error) {
	var doc bson.M
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errNoDocument
		}
		return nil, err
	}
	return doc, nil
}

func (s *mongoStore) Set(ctx context.Context, filter bson.D, set bson.D) (int64, error) {
	res, err := s.coll.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
