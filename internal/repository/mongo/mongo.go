package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
)

type Config struct {
	URI        string
	Database   string
	Collection string
}

// Connect opens a client and pings the primary
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Store keeps one document per user, keyed by user id
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

// New returns a store over the configured collection and ensures the email index
func New(ctx context.Context, client *mongo.Client, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = "popdoc"
	}
	if cfg.Collection == "" {
		cfg.Collection = "users"
	}

	s := &Store{
		client: client,
		users:  client.Database(cfg.Database).Collection(cfg.Collection),
	}

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("idx_email").SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}
	return s, nil
}

func (s *Store) Load(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, user *model.User) error {
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		err = mapError(err)
		if errors.Is(err, repository.ErrDuplicateID) {
			n, cerr := s.users.CountDocuments(ctx, bson.M{"email": user.Email})
			if cerr == nil && n > 0 {
				return repository.ErrEmailTaken
			}
		}
		return err
	}
	return nil
}

func (s *Store) Save(ctx context.Context, user *model.User) error {
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) List(ctx context.Context) ([]*model.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mapError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email") {
			return repository.ErrEmailTaken
		}
		return repository.ErrDuplicateID
	}
	return fmt.Errorf("failed to write user: %w", err)
}
