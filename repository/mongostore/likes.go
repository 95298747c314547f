package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blog "github.com/goliatone/go-blog"
)

// LikeStore relies on the unique (user_id, post_id) index to reject
// a second like
type LikeStore struct {
	collection *mongo.Collection
	users      *UserStore
}

var _ blog.LikeStore = (*LikeStore)(nil)

func NewLikeStore(db *mongo.Database, users *UserStore) *LikeStore {
	return &LikeStore{
		collection: db.Collection(likesCollection),
		users:      users,
	}
}

func (s *LikeStore) Create(ctx context.Context, like *blog.Like) (*blog.Like, error) {
	if _, err := s.collection.InsertOne(ctx, newLikeDoc(like)); err != nil {
		return nil, translate(err)
	}
	return like, nil
}

func (s *LikeStore) Find(ctx context.Context, postID, userID uuid.UUID) (*blog.Like, error) {
	var doc likeDoc
	err := s.collection.FindOne(ctx, pairFilter(postID, userID)).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

func (s *LikeStore) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	res, err := s.collection.DeleteOne(ctx, pairFilter(postID, userID))
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return blog.ErrRecordNotFound
	}
	return nil
}

func (s *LikeStore) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"post_id": postID.String()})
	if err != nil {
		return 0, translate(err)
	}
	return int(n), nil
}

func (s *LikeStore) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*blog.Like, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.collection.Find(ctx, bson.M{"post_id": postID.String()}, opts)
	if err != nil {
		return nil, translate(err)
	}

	var docs []likeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.UserID)
	}
	users, err := s.users.publicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	likes := make([]*blog.Like, 0, len(docs))
	for _, doc := range docs {
		like := doc.model()
		like.User = users[doc.UserID]
		likes = append(likes, like)
	}
	return likes, nil
}

func pairFilter(postID, userID uuid.UUID) bson.M {
	return bson.M{"post_id": postID.String(), "user_id": userID.String()}
}
