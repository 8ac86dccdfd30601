package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaymaart/mummblebotv2/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoStore struct {
	client   *mongo.Client
	database *mongo.Database

	*feedStore
}

func New(ctx context.Context, uri string, db string) (store.Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	database := client.Database(db)
	return &mongoStore{
		client:    client,
		database:  database,
		feedStore: &feedStore{client, database, database.Collection("feeds")},
	}, nil
}

func (m *mongoStore) Init(ctx context.Context) error {
	err := m.database.CreateCollection(ctx, "feeds")
	if err != nil && !errors.As(err, &mongo.CommandError{}) {
		return err
	}

	_, err = m.feedStore.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (m *mongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
