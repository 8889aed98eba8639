package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type attendanceDocument struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Employee              string             `bson:"employee"`
	Date                  string             `bson:"date"`
	CheckInStatus         string             `bson:"check_in_status"`
	CheckOutStatus        *string            `bson:"check_out_status"`
	TimeIn                *time.Time         `bson:"time_in"`
	TimeOut               *time.Time         `bson:"time_out"`
	CheckInLateDuration   *string            `bson:"checkInLateDuration,omitempty"`
	CheckOutEarlyDuration *string            `bson:"checkOutEarlyDuration,omitempty"`
	QRCode                *string            `bson:"qr_code"`
	Location              *string            `bson:"location,omitempty"`
	IsRemoteCheckout      bool               `bson:"isRemoteCheckout"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`
}

func (d attendanceDocument) toEntity() (attendance.Attendance, error) {
	day, err := utils.ParseDateKey(d.Date)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("invalid date %q on attendance %s: %w", d.Date, d.ID.Hex(), err)
	}
	att := attendance.Attendance{
		ID:                    d.ID.Hex(),
		EmployeeID:            d.Employee,
		Date:                  day,
		CheckInStatus:         attendance.CheckInStatus(d.CheckInStatus),
		TimeIn:                d.TimeIn,
		TimeOut:               d.TimeOut,
		CheckInLateDuration:   d.CheckInLateDuration,
		CheckOutEarlyDuration: d.CheckOutEarlyDuration,
		QRCodeID:              d.QRCode,
		Location:              d.Location,
		IsRemoteCheckout:      d.IsRemoteCheckout,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	if d.CheckOutStatus != nil {
		s := attendance.CheckOutStatus(*d.CheckOutStatus)
		att.CheckOutStatus = &s
	}
	return att, nil
}

func checkOutValue(s *attendance.CheckOutStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// workingOpen matches records the missed-checkout sweep may still touch.
func workingOpen() bson.M {
	return bson.M{
		"time_out":         nil,
		"check_in_status":  bson.M{"$nin": bson.A{string(attendance.CheckInAbsent), string(attendance.CheckInOnLeave)}},
		"check_out_status": bson.M{"$ne": string(attendance.CheckOutMissed)},
	}
}

type attendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{col: db.Collection(database.CollectionAttendances)}
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	now := time.Now().UTC()
	doc := attendanceDocument{
		Employee:              att.EmployeeID,
		Date:                  utils.DateKey(att.Date),
		CheckInStatus:         string(att.CheckInStatus),
		CheckOutStatus:        checkOutValue(att.CheckOutStatus),
		TimeIn:                att.TimeIn,
		TimeOut:               att.TimeOut,
		CheckInLateDuration:   att.CheckInLateDuration,
		CheckOutEarlyDuration: att.CheckOutEarlyDuration,
		QRCode:                att.QRCodeID,
		Location:              att.Location,
		IsRemoteCheckout:      att.IsRemoteCheckout,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateAttendance
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toEntity()
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	var doc attendanceDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return doc.toEntity()
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	var doc attendanceDocument
	err := r.col.FindOne(ctx, bson.M{"employee": employeeID, "date": utils.DateKey(date)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	att, err := doc.toEntity()
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	query := bson.M{}
	if filter.EmployeeID != nil {
		query["employee"] = *filter.EmployeeID
	}

	dateCond := bson.M{}
	if filter.Date != nil {
		dateCond["$eq"] = utils.DateKey(*filter.Date)
	}
	if filter.From != nil {
		dateCond["$gte"] = utils.DateKey(*filter.From)
	}
	if filter.To != nil {
		dateCond["$lte"] = utils.DateKey(*filter.To)
	}
	if len(dateCond) > 0 {
		query["date"] = dateCond
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time_in", Value: 1}, {Key: "createdAt", Value: 1}})
	return r.find(ctx, query, opts)
}

// ListOpenByDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	query := workingOpen()
	query["date"] = utils.DateKey(date)
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *attendanceRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]attendance.Attendance, error) {
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}

	var docs []attendanceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode attendances: %w", err)
	}

	result := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		att, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, nil
}

// CompleteCheckout implements attendance.AttendanceRepository.
func (r *attendanceRepository) CompleteCheckout(ctx context.Context, att attendance.Attendance) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(att.ID)
	if err != nil {
		return false, attendance.ErrAttendanceNotFound
	}

	update := bson.M{"$set": bson.M{
		"time_out":              att.TimeOut,
		"check_out_status":      checkOutValue(att.CheckOutStatus),
		"checkOutEarlyDuration": att.CheckOutEarlyDuration,
		"location":              att.Location,
		"isRemoteCheckout":      att.IsRemoteCheckout,
		"updatedAt":             time.Now().UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "time_out": nil}, update)
	if err != nil {
		return false, fmt.Errorf("failed to complete checkout: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// MarkMissedCheckout implements attendance.AttendanceRepository.
func (r *attendanceRepository) MarkMissedCheckout(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, attendance.ErrAttendanceNotFound
	}

	query := workingOpen()
	query["_id"] = oid

	res, err := r.col.UpdateOne(ctx, query, bson.M{"$set": bson.M{
		"check_out_status": string(attendance.CheckOutMissed),
		"updatedAt":        time.Now().UTC(),
	}})
	if err != nil {
		return false, fmt.Errorf("failed to mark missed checkout: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return attendance.ErrAttendanceNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if res.DeletedCount == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
