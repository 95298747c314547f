package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blog "github.com/goliatone/go-blog"
)

type CommentStore struct {
	collection *mongo.Collection
	users      *UserStore
}

var _ blog.CommentStore = (*CommentStore)(nil)

func NewCommentStore(db *mongo.Database, users *UserStore) *CommentStore {
	return &CommentStore{
		collection: db.Collection(commentsCollection),
		users:      users,
	}
}

func (s *CommentStore) Create(ctx context.Context, comment *blog.Comment) (*blog.Comment, error) {
	if _, err := s.collection.InsertOne(ctx, newCommentDoc(comment)); err != nil {
		return nil, translate(err)
	}
	return s.GetByID(ctx, comment.ID)
}

func (s *CommentStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.Comment, error) {
	var doc commentDoc
	if err := s.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translate(err)
	}

	comments, err := s.withAuthors(ctx, []commentDoc{doc})
	if err != nil {
		return nil, err
	}
	return comments[0], nil
}

func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*blog.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.collection.Find(ctx, bson.M{"post_id": postID.String()}, opts)
	if err != nil {
		return nil, translate(err)
	}

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	return s.withAuthors(ctx, docs)
}

func (s *CommentStore) Update(ctx context.Context, comment *blog.Comment) (*blog.Comment, error) {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": comment.ID.String()},
		bson.M{"$set": bson.M{
			"content":    comment.Content,
			"updated_at": comment.UpdatedAt,
		}},
	)
	if err != nil {
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, blog.ErrRecordNotFound
	}
	return s.GetByID(ctx, comment.ID)
}

func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return blog.ErrRecordNotFound
	}
	return nil
}

func (s *CommentStore) withAuthors(ctx context.Context, docs []commentDoc) ([]*blog.Comment, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.AuthorID)
	}

	authors, err := s.users.publicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	comments := make([]*blog.Comment, 0, len(docs))
	for _, doc := range docs {
		comment := doc.model()
		comment.Author = authors[doc.AuthorID]
		comments = append(comments, comment)
	}
	return comments, nil
}
