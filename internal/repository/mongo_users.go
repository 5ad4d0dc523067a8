package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUsers is the MongoDB UserRepository.
type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{coll: db.Collection(usersCollection)}
}

func (r *MongoUsers) find(ctx context.Context, q bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, q).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *MongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"_id": oid})
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *MongoUsers) FindByReporterID(ctx context.Context, reporterID string) (*models.User, error) {
	return r.find(ctx, bson.M{"reporterId": reporterID})
}

func (r *MongoUsers) List(ctx context.Context, role string) ([]*models.User, error) {
	q := bson.M{}
	if role != "" {
		q["role"] = role
	}
	cur, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]*models.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUsers) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	stamp(&u.CreatedAt, &u.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, u)
	return mapWriteErr("insert user", err)
}

func (r *MongoUsers) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":       u.Name,
		"role":       u.Role,
		"isApproved": u.IsApproved,
		"approvedAt": u.ApprovedAt,
		"region":     u.Region,
		"pressRole":  u.PressRole,
		"avatar":     refOrNil(u.Avatar),
		"updatedAt":  u.UpdatedAt,
	}
	if u.ReporterID != "" {
		set["reporterId"] = u.ReporterID
	}
	res, err := r.coll.UpdateByID(ctx, u.ID, bson.M{"$set": set})
	if err != nil {
		return mapWriteErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *MongoUsers) DeleteByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return &u, nil
}
