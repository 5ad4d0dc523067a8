package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	newsCollection       = "news"
	usersCollection      = "users"
	categoriesCollection = "categories"
	contactsCollection   = "contacts"
)

// MongoNews is the MongoDB NewsRepository.
type MongoNews struct {
	coll *mongo.Collection
}

func NewMongoNews(db *mongo.Database) *MongoNews {
	return &MongoNews{coll: db.Collection(newsCollection)}
}

// EnsureIndexes creates the unique and listing indexes for every collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	news := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "shortId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "isUjala", Value: 1}, {Key: "approved", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(newsCollection).Indexes().CreateMany(ctx, news); err != nil {
		return fmt.Errorf("create news indexes: %w", err)
	}

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reporterId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	categories := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order", Value: 1}}},
	}
	if _, err := db.Collection(categoriesCollection).Indexes().CreateMany(ctx, categories); err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}

	contacts := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	if _, err := db.Collection(contactsCollection).Indexes().CreateOne(ctx, contacts); err != nil {
		return fmt.Errorf("create contact indexes: %w", err)
	}
	return nil
}

// mapWriteErr turns driver write errors into application errors.
func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("duplicate key", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *MongoNews) FindByID(ctx context.Context, id string) (*models.News, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoNews) FindOne(ctx context.Context, f Filter) (*models.News, error) {
	return r.findOne(ctx, f.toBSON())
}

func (r *MongoNews) findOne(ctx context.Context, q bson.M) (*models.News, error) {
	var n models.News
	if err := r.coll.FindOne(ctx, q).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("news not found")
		}
		return nil, fmt.Errorf("find news: %w", err)
	}
	return &n, nil
}

func (r *MongoNews) FindMany(ctx context.Context, f Filter, opts ListOptions) ([]*models.News, error) {
	fo := options.Find().SetSort(sortDoc(opts.Sort))
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}

	cur, err := r.coll.Find(ctx, f.toBSON(), fo)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*models.News, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}
	return items, nil
}

func (r *MongoNews) Count(ctx context.Context, f Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, f.toBSON())
	if err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return n, nil
}

func (r *MongoNews) Insert(ctx context.Context, n *models.News) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.Kind == "" {
		n.Kind = models.KindPlain
	}
	stamp(&n.CreatedAt, &n.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, n)
	return mapWriteErr("insert news", err)
}

func (r *MongoNews) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*models.News, error) {
	var n models.News
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, p.update(time.Now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("news not found")
	}
	if err != nil {
		return nil, mapWriteErr("update news", err)
	}
	return &n, nil
}

func (r *MongoNews) DeleteByID(ctx context.Context, id string) (*models.News, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var n models.News
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("news not found")
		}
		return nil, fmt.Errorf("delete news: %w", err)
	}
	return &n, nil
}

func (r *MongoNews) SlugExists(ctx context.Context, slug string, exceptID primitive.ObjectID) (bool, error) {
	q := bson.M{"slug": slug}
	if !exceptID.IsZero() {
		q["_id"] = bson.M{"$ne": exceptID}
	}
	n, err := r.coll.CountDocuments(ctx, q, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

func (r *MongoNews) IncrementViews(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"views": 1})

	var out struct {
		Views int64 `bson:"views"`
	}
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperr.NotFound("news not found")
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return out.Views, nil
}
