package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// CollectionName is the default collection holding User documents.
const CollectionName = "users"

// UserRepoMongo implements the user Repository on a MongoDB collection.
type UserRepoMongo struct {
	coll *mongo.Collection // Collection of User documents
	log  *zap.Logger       // Structured logger for database operations
}

// NewUserRepoMongo creates a new instance of UserRepoMongo.
func NewUserRepoMongo(coll *mongo.Collection, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{coll: coll, log: log}
}

// Create inserts a new user document. The id is generated on insert.
func (r *UserRepoMongo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	doc := user.User{Name: u.Name, Email: u.Email}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		r.logger(ctx).Error("failed to insert user", zap.Error(err))
		return nil, storeFailure("failed to create user", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.NewStoreError(apperrors.KindStoreFailure, "failed to create user",
			fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	doc.ID = id

	r.logger(ctx).Info("user inserted", zap.String("id", id.Hex()))
	return &doc, nil
}

// GetByID finds a single user document by its hex id.
func (r *UserRepoMongo) GetByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, r.mapError(ctx, err, id, "failed to get user")
	}

	return &u, nil
}

// Update replaces name and email of the document and returns it after the update.
func (r *UserRepoMongo) Update(ctx context.Context, id string, f user.Fields) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u user.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDocument(f), opts).Decode(&u); err != nil {
		return nil, r.mapError(ctx, err, id, "failed to update user")
	}

	r.logger(ctx).Info("user updated", zap.String("id", id))
	return &u, nil
}

// Delete removes the document and returns it as it was before removal.
func (r *UserRepoMongo) Delete(ctx context.Context, id string) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, r.mapError(ctx, err, id, "failed to delete user")
	}

	r.logger(ctx).Info("user deleted", zap.String("id", id))
	return &u, nil
}

// List returns every user document in natural order.
func (r *UserRepoMongo) List(ctx context.Context) ([]user.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		r.logger(ctx).Error("failed to list users", zap.Error(err))
		return nil, storeFailure("failed to list users", err)
	}
	defer cursor.Close(ctx)

	users := []user.User{}
	if err := cursor.All(ctx, &users); err != nil {
		r.logger(ctx).Error("failed to decode users", zap.Error(err))
		return nil, storeFailure("failed to list users", err)
	}

	return users, nil
}

// updateDocument builds a full-replace update of name and email:
// supplied fields are set, missing ones are removed.
func updateDocument(f user.Fields) bson.M {
	set := bson.M{}
	unset := bson.M{}

	if f.Name != nil {
		set["name"] = *f.Name
	} else {
		unset["name"] = ""
	}
	if f.Email != nil {
		set["email"] = *f.Email
	} else {
		unset["email"] = ""
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *UserRepoMongo) mapError(ctx context.Context, err error, id, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.logger(ctx).Debug("user not found", zap.String("id", id))
		return apperrors.NewNotFoundError("user", "User not found")
	}
	r.logger(ctx).Error(message, zap.String("id", id), zap.Error(err))
	return storeFailure(message, err)
}

func (r *UserRepoMongo) logger(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, r.log)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewStoreError(apperrors.KindInvalidID,
			fmt.Sprintf("invalid user id %q", id), err)
	}
	return oid, nil
}

func storeFailure(message string, err error) error {
	return apperrors.NewStoreError(apperrors.KindStoreFailure, message, err)
}
