package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCategories is the MongoDB CategoryRepository.
type MongoCategories struct {
	coll *mongo.Collection
}

func NewMongoCategories(db *mongo.Database) *MongoCategories {
	return &MongoCategories{coll: db.Collection(categoriesCollection)}
}

func (r *MongoCategories) List(ctx context.Context) ([]*models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*models.Category, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

func (r *MongoCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (r *MongoCategories) Insert(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, c)
	return mapWriteErr("insert category", err)
}

// MongoContacts is the MongoDB ContactRepository.
type MongoContacts struct {
	coll *mongo.Collection
}

func NewMongoContacts(db *mongo.Database) *MongoContacts {
	return &MongoContacts{coll: db.Collection(contactsCollection)}
}

func (r *MongoContacts) Insert(ctx context.Context, c *models.Contact) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, c)
	return mapWriteErr("insert contact", err)
}

func (r *MongoContacts) List(ctx context.Context) ([]*models.Contact, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*models.Contact, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	return out, nil
}
