package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"myflix/internal/models"
)

// userDocument is the stored shape of a user. Field names match the
// collection written by earlier versions of the API.
type userDocument struct {
	ID             bson.ObjectID   `bson:"_id,omitempty"`
	Username       string          `bson:"Username"`
	Password       string          `bson:"Password"`
	Email          string          `bson:"Email"`
	Birthday       *time.Time      `bson:"Birthday,omitempty"`
	FavoriteMovies []bson.ObjectID `bson:"FavoriteMovies"`
}

func (d userDocument) toModel() models.User {
	favorites := make([]string, 0, len(d.FavoriteMovies))
	for _, id := range d.FavoriteMovies {
		favorites = append(favorites, id.Hex())
	}
	return models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		PasswordHash:   d.Password,
		Email:          d.Email,
		Birthday:       d.Birthday,
		FavoriteMovies: favorites,
	}
}

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates the repository and ensures the unique
// Username index exists; the index is what finally enforces uniqueness.
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (*MongoUserRepository, error) {
	collection := db.Collection(userCollection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}

	return &MongoUserRepository{collection: collection}, nil
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	favorites, err := toObjectIDs(user.FavoriteMovies)
	if err != nil {
		return err
	}

	doc := userDocument{
		Username:       user.Username,
		Password:       user.PasswordHash,
		Email:          user.Email,
		Birthday:       user.Birthday,
		FavoriteMovies: favorites,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return translateMongoError(err, "failed to create user")
	}

	oid, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	user.ID = oid.Hex()
	user.FavoriteMovies = doc.toModel().FavoriteMovies
	return nil
}

// GetAll returns every user document.
func (r *MongoUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

// GetByUsername returns the user with the given username.
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, bson.M{"Username": username}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, fmt.Sprintf("user %s", username))
	}
	user := doc.toModel()
	return &user, nil
}

// Update replaces the account fields of a user in a single $set.
func (r *MongoUserRepository) Update(ctx context.Context, username string, params UpdateUserParams) (*models.User, error) {
	set := bson.M{
		"Username": params.Username,
		"Password": params.PasswordHash,
		"Email":    params.Email,
		"Birthday": params.Birthday,
	}
	return r.findOneAndUpdate(ctx, username, bson.M{"$set": set})
}

// Delete removes the user with the given username.
func (r *MongoUserRepository) Delete(ctx context.Context, username string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"Username": username})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}

// AddFavorite appends movieID with $push; duplicates are kept.
func (r *MongoUserRepository) AddFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	oid, err := parseObjectID(movieID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, username, bson.M{"$push": bson.M{"FavoriteMovies": oid}})
}

// RemoveFavorite removes every occurrence of movieID with $pull.
func (r *MongoUserRepository) RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	oid, err := parseObjectID(movieID)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, username, bson.M{"$pull": bson.M{"FavoriteMovies": oid}})
}

func (r *MongoUserRepository) findOneAndUpdate(ctx context.Context, username string, update bson.M) (*models.User, error) {
	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"Username": username},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var doc userDocument
	if err := result.Decode(&doc); err != nil {
		return nil, translateMongoError(err, fmt.Sprintf("user %s", username))
	}
	user := doc.toModel()
	return &user, nil
}

func toObjectIDs(ids []string) ([]bson.ObjectID, error) {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseObjectID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}
