package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-task-manager-api/app/db"
	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/auth"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ UserRepo = (*MongoUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	auth.AuthRepo

	// EmailTakenByOther reports whether a user other than excludeID owns email.
	EmailTakenByOther(ctx context.Context, email, excludeID string) (bool, error)
	// UpdateProfile sets name and email and returns the updated user.
	// Returns types.ErrNotFound if the user doesn't exist and
	// types.ErrConflict if the email belongs to someone else.
	UpdateProfile(ctx context.Context, userID, name, email string) (*types.User, error)
	// UpdatePassword replaces the stored hash.
	// Returns types.ErrNotFound if the user doesn't exist.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toUser() *types.User {
	return &types.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type MongoUserRepo struct {
	logger     *slog.Logger
	collection *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database, logger *slog.Logger) *MongoUserRepo {
	return &MongoUserRepo{
		logger:     logger,
		collection: db.Collection(database.UsersCollection),
	}
}

func (r *MongoUserRepo) findOne(ctx context.Context, operation string, filter bson.M) (user *types.User, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", operation, start, err) }(time.Now())

	var doc userDocument
	if err = r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return doc.toUser(), nil
}

func (r *MongoUserRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, types.ErrNotFound
	}
	return r.findOne(ctx, "GetUserByID", bson.M{"_id": oid})
}

func (r *MongoUserRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.findOne(ctx, "GetUserByEmail", bson.M{"email": email})
}

func (r *MongoUserRepo) CreateUser(ctx context.Context, user *types.User) (created *types.User, err error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemMongoDB,
		attribute.String("db.operation", "insert"),
		attribute.String("db.collection", database.UsersCollection),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "CreateUser", start, err) }(time.Now())

	now := time.Now().UTC()
	doc := userDocument{
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("email %s: %w", user.Email, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid

	r.logger.DebugContext(ctx, "User inserted", slog.String("userID", oid.Hex()))
	return doc.toUser(), nil
}

func (r *MongoUserRepo) EmailTakenByOther(ctx context.Context, email, excludeID string) (taken bool, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "EmailTakenByOther", start, err) }(time.Now())

	filter := bson.M{"email": email}
	if oid, parseErr := primitive.ObjectIDFromHex(excludeID); parseErr == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	err = r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("error checking email ownership: %w", err)
	}
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, userID, name, email string) (user *types.User, err error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemMongoDB,
		attribute.String("db.operation", "findAndModify"),
		attribute.String("db.collection", database.UsersCollection),
		attribute.String("db.user.id", userID),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "UpdateProfile", start, err) }(time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, types.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":      name,
		"email":     email,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, types.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("email %s: %w", email, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	span.SetStatus(codes.Ok, "profile updated")
	return doc.toUser(), nil
}

func (r *MongoUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "UpdatePassword", start, err) }(time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return types.ErrNotFound
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password":  passwordHash,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if res.MatchedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}
