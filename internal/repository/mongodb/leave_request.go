package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type leaveRequestDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Employee   string             `bson:"employee"`
	LeaveType  string             `bson:"leaveType"`
	Reason     string             `bson:"reason"`
	StartDate  time.Time          `bson:"startDate"`
	EndDate    time.Time          `bson:"endDate"`
	Status     string             `bson:"status"`
	Comment    *string            `bson:"comment,omitempty"`
	ReviewedBy *string            `bson:"reviewedBy,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d leaveRequestDocument) toEntity() leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:         d.ID.Hex(),
		EmployeeID: d.Employee,
		Type:       d.LeaveType,
		Reason:     d.Reason,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		Status:     leave.Status(d.Status),
		Comment:    d.Comment,
		ReviewedBy: d.ReviewedBy,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type leaveRequestRepository struct {
	col *mongo.Collection
}

func NewLeaveRequestRepository(db *database.MongoDB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{col: db.Collection(database.CollectionLeaveRequests)}
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	now := time.Now().UTC()
	doc := leaveRequestDocument{
		Employee:  req.EmployeeID,
		LeaveType: req.Type,
		Reason:    req.Reason,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    string(req.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toEntity(), nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}

	var doc leaveRequestDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	query := bson.M{}
	if filter.EmployeeID != nil {
		query["employee"] = *filter.EmployeeID
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	var docs []leaveRequestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode leave requests: %w", err)
	}

	result := make([]leave.LeaveRequest, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toEntity())
	}
	return result, nil
}

func (r *leaveRequestRepository) HasApprovedOverlap(ctx context.Context, employeeID string, windowStart, windowEnd time.Time) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"employee":  employeeID,
		"status":    string(leave.StatusApproved),
		"startDate": bson.M{"$lte": windowEnd},
		"endDate":   bson.M{"$gte": windowStart},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", err)
	}
	return count > 0, nil
}

func (r *leaveRequestRepository) Review(ctx context.Context, id string, status leave.Status, reviewerID *string, comment *string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, leave.ErrLeaveRequestNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(leave.StatusPending)},
		bson.M{"$set": bson.M{
			"status":     string(status),
			"reviewedBy": reviewerID,
			"comment":    comment,
			"updatedAt":  time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to review leave request: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *leaveRequestRepository) RejectPendingEndedBefore(ctx context.Context, cutoff time.Time, comment string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"status": string(leave.StatusPending), "endDate": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{
			"status":    string(leave.StatusRejected),
			"comment":   comment,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject expired leave requests: %w", err)
	}
	return res.ModifiedCount, nil
}
