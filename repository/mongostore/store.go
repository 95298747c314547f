// Package mongostore implements the blog stores on MongoDB. Documents
// use the UUID string of each record as their _id, so records move
// between the SQL and Mongo backends without remapping.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blog "github.com/goliatone/go-blog"
)

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	postsCollection      = "posts"
	commentsCollection   = "comments"
	likesCollection      = "likes"
)

// DefaultTimeout bounds Connect and Ping when no timeout is given
const DefaultTimeout = 10 * time.Second

// Store groups the Mongo collections behind blog.RepositoryManager
type Store struct {
	client     *mongo.Client
	db         *mongo.Database
	users      *UserStore
	categories *CategoryStore
	posts      *PostStore
	comments   *CommentStore
	likes      *LikeStore
}

var _ blog.RepositoryManager = (*Store)(nil)

// Connect dials uri, pings the primary and makes sure the indexes
// exist
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	store := New(client.Database(database))
	store.client = client

	if err := store.EnsureIndexes(cctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return store, nil
}

// New builds a Store over an existing database handle
func New(db *mongo.Database) *Store {
	users := NewUserStore(db)
	categories := NewCategoryStore(db)
	posts := NewPostStore(db, users, categories)
	return &Store{
		db:         db,
		users:      users,
		categories: categories,
		posts:      posts,
		comments:   NewCommentStore(db, users),
		likes:      NewLikeStore(db, users),
	}
}

// EnsureIndexes creates the unique and lookup indexes
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}
	lookup := func(key string, order int) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: key, Value: order}}}
	}

	indexes := map[string][]mongo.IndexModel{
		usersCollection:      {unique("username"), unique("email")},
		categoriesCollection: {unique("name"), unique("slug")},
		postsCollection:      {unique("slug"), lookup("created_at", -1)},
		commentsCollection:   {lookup("post_id", 1)},
		likesCollection:      {unique("user_id", "post_id"), lookup("post_id", 1)},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Validate() error {
	if s.db == nil {
		return errors.New("mongo database should be initialized")
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() blog.UserStore {
	return s.users
}

func (s *Store) Categories() blog.CategoryStore {
	return s.categories
}

func (s *Store) Posts() blog.PostStore {
	return s.posts
}

func (s *Store) Comments() blog.CommentStore {
	return s.comments
}

func (s *Store) Likes() blog.LikeStore {
	return s.likes
}

// translate maps driver errors to the blog store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return blog.ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", blog.ErrDuplicateRecord, err)
	}
	return err
}
