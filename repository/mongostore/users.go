package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blog "github.com/goliatone/go-blog"
)

type UserStore struct {
	collection *mongo.Collection
}

var _ blog.UserStore = (*UserStore)(nil)

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{collection: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *blog.User) (*blog.User, error) {
	if _, err := s.collection.InsertOne(ctx, newUserDoc(user)); err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*blog.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
}

// publicByIDs loads users keyed by id with credentials stripped
func (s *UserStore) publicByIDs(ctx context.Context, ids []string) (map[string]*blog.User, error) {
	out := make(map[string]*blog.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.collection.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"password_hash": 0}),
	)
	if err != nil {
		return nil, translate(err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	for _, doc := range docs {
		out[doc.ID] = doc.model().Public()
	}
	return out, nil
}

func (s *UserStore) findOne(ctx context.Context, filter any) (*blog.User, error) {
	var doc userDoc
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}
