package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"myflix/internal/models"
)

type movieDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"Title"`
	Description string        `bson:"Description"`
	Genre       struct {
		Name        string `bson:"Name"`
		Description string `bson:"Description"`
	} `bson:"Genre"`
	Director struct {
		Name  string `bson:"Name"`
		Bio   string `bson:"Bio"`
		Birth string `bson:"Birth,omitempty"`
		Death string `bson:"Death,omitempty"`
	} `bson:"Director"`
	Actors    []string `bson:"Actors"`
	ImagePath string   `bson:"ImagePath,omitempty"`
	Featured  bool     `bson:"Featured"`
}

func (d movieDocument) toModel() models.Movie {
	return models.Movie{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Genre:       models.Genre{Name: d.Genre.Name, Description: d.Genre.Description},
		Director: models.Director{
			Name:  d.Director.Name,
			Bio:   d.Director.Bio,
			Birth: d.Director.Birth,
			Death: d.Director.Death,
		},
		Actors:    d.Actors,
		ImagePath: d.ImagePath,
		Featured:  d.Featured,
	}
}

// MongoMovieRepository is a MongoDB implementation of MovieRepository.
type MongoMovieRepository struct {
	collection *mongo.Collection
}

// NewMongoMovieRepository creates a new instance of MongoMovieRepository.
func NewMongoMovieRepository(db *mongo.Database) *MongoMovieRepository {
	return &MongoMovieRepository{collection: db.Collection(movieCollection)}
}

// Create inserts a movie document.
func (r *MongoMovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	var doc movieDocument
	if movie.ID != "" {
		oid, err := parseObjectID(movie.ID)
		if err != nil {
			return err
		}
		doc.ID = oid
	}
	doc.Title = movie.Title
	doc.Description = movie.Description
	doc.Genre.Name = movie.Genre.Name
	doc.Genre.Description = movie.Genre.Description
	doc.Director.Name = movie.Director.Name
	doc.Director.Bio = movie.Director.Bio
	doc.Director.Birth = movie.Director.Birth
	doc.Director.Death = movie.Director.Death
	doc.Actors = movie.Actors
	doc.ImagePath = movie.ImagePath
	doc.Featured = movie.Featured

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return translateMongoError(err, "failed to create movie")
	}
	oid, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	movie.ID = oid.Hex()
	return nil
}

// GetAll returns every movie document.
func (r *MongoMovieRepository) GetAll(ctx context.Context) ([]models.Movie, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all movies: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode movies: %w", err)
	}

	movies := make([]models.Movie, 0, len(docs))
	for _, d := range docs {
		movies = append(movies, d.toModel())
	}
	return movies, nil
}

// FindOneByTitle returns the first movie with the given title.
func (r *MongoMovieRepository) FindOneByTitle(ctx context.Context, title string) (*models.Movie, error) {
	return r.findOne(ctx, bson.M{"Title": title}, title)
}

// FindOneByGenreName returns the first movie of the given genre.
func (r *MongoMovieRepository) FindOneByGenreName(ctx context.Context, name string) (*models.Movie, error) {
	return r.findOne(ctx, bson.M{"Genre.Name": name}, name)
}

// FindOneByDirectorName returns the first movie by the given director.
func (r *MongoMovieRepository) FindOneByDirectorName(ctx context.Context, name string) (*models.Movie, error) {
	return r.findOne(ctx, bson.M{"Director.Name": name}, name)
}

func (r *MongoMovieRepository) findOne(ctx context.Context, filter bson.M, value string) (*models.Movie, error) {
	var doc movieDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err, fmt.Sprintf("movie %s", value))
	}
	movie := doc.toModel()
	return &movie, nil
}
