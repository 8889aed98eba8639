package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type qrCodeDocument struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty"`
	Location             string                `bson:"location"`
	WorkStartTime        string                `bson:"workStartTime"`
	WorkEndTime          string                `bson:"workEndTime"`
	AllowedNetworkRanges []qrcode.NetworkRange `bson:"allowedNetworkRanges"`
	CreatedAt            time.Time             `bson:"createdAt"`
	UpdatedAt            time.Time             `bson:"updatedAt"`
}

type qrCodeRepository struct {
	col *mongo.Collection
}

func NewQRCodeRepository(db *database.MongoDB) qrcode.QRCodeRepository {
	return &qrCodeRepository{col: db.Collection(database.CollectionQRCodes)}
}

func (r *qrCodeRepository) Create(ctx context.Context, qr qrcode.QRCode) (qrcode.QRCode, error) {
	now := time.Now().UTC()
	doc := qrCodeDocument{
		Location:             qr.Location,
		WorkStartTime:        qr.WorkStartTime,
		WorkEndTime:          qr.WorkEndTime,
		AllowedNetworkRanges: qr.AllowedNetworkRanges,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return qrcode.QRCode{}, fmt.Errorf("failed to create qr code: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		qr.ID = oid.Hex()
	}
	qr.CreatedAt, qr.UpdatedAt = now, now
	return qr, nil
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id string) (qrcode.QRCode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
	}

	var doc qrCodeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
		}
		return qrcode.QRCode{}, fmt.Errorf("failed to get qr code: %w", err)
	}

	return qrcode.QRCode{
		ID:                   doc.ID.Hex(),
		Location:             doc.Location,
		WorkStartTime:        doc.WorkStartTime,
		WorkEndTime:          doc.WorkEndTime,
		AllowedNetworkRanges: doc.AllowedNetworkRanges,
		CreatedAt:            doc.CreatedAt,
		UpdatedAt:            doc.UpdatedAt,
	}, nil
}
