package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	Name                    string             `bson:"name"`
	Email                   string             `bson:"email"`
	Role                    string             `bson:"role"`
	IsAllowedRemoteCheckout bool               `bson:"isAllowedRemoteCheckout"`
	ChatID                  *string            `bson:"chat_id,omitempty"`
	CreatedAt               time.Time          `bson:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt"`
}

func (d userDocument) toEntity() employee.Employee {
	return employee.Employee{
		ID:                      d.ID.Hex(),
		Name:                    d.Name,
		Email:                   d.Email,
		Role:                    employee.Role(d.Role),
		IsAllowedRemoteCheckout: d.IsAllowedRemoteCheckout,
		ChatID:                  d.ChatID,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}

type employeeRepository struct {
	col *mongo.Collection
}

func NewEmployeeRepository(db *database.MongoDB) employee.EmployeeRepository {
	return &employeeRepository{col: db.Collection(database.CollectionUsers)}
}

func (r *employeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	now := time.Now().UTC()
	doc := userDocument{
		Name:                    emp.Name,
		Email:                   emp.Email,
		Role:                    string(emp.Role),
		IsAllowedRemoteCheckout: emp.IsAllowedRemoteCheckout,
		ChatID:                  emp.ChatID,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toEntity(), nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}

	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	return r.find(ctx, bson.M{})
}

func (r *employeeRepository) ListByRole(ctx context.Context, role employee.Role) ([]employee.Employee, error) {
	return r.find(ctx, bson.M{"role": string(role)})
}

func (r *employeeRepository) find(ctx context.Context, query bson.M) ([]employee.Employee, error) {
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	result := make([]employee.Employee, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toEntity())
	}
	return result, nil
}
