package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionAttendances   = "attendances"
	CollectionUsers         = "users"
	CollectionQRCodes       = "qrcodes"
	CollectionLeaveRequests = "leaverequests"
)

type MongoDB struct {
	Client *mongo.Client
	*mongo.Database
}

func NewMongoDB(ctx context.Context, uri string, name string) (*MongoDB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := &MongoDB{Client: client, Database: client.Database(name)}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on for conflict detection.
func (db *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Collection(CollectionAttendances).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("employee_date_unique"),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create attendance indexes: %w", err)
	}

	_, err = db.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	_, err = db.Collection(CollectionLeaveRequests).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "employee", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create leave request indexes: %w", err)
	}
	return nil
}

func (db *MongoDB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
