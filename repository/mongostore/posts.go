package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blog "github.com/goliatone/go-blog"
)

// PostStore keeps category ids inside each post document and loads
// authors and categories with follow up queries.
type PostStore struct {
	collection *mongo.Collection
	comments   *mongo.Collection
	likes      *mongo.Collection
	users      *UserStore
	categories *CategoryStore
}

var _ blog.PostStore = (*PostStore)(nil)

func NewPostStore(db *mongo.Database, users *UserStore, categories *CategoryStore) *PostStore {
	return &PostStore{
		collection: db.Collection(postsCollection),
		comments:   db.Collection(commentsCollection),
		likes:      db.Collection(likesCollection),
		users:      users,
		categories: categories,
	}
}

func (s *PostStore) Create(ctx context.Context, post *blog.Post) (*blog.Post, error) {
	if _, err := s.collection.InsertOne(ctx, newPostDoc(post)); err != nil {
		return nil, translate(err)
	}
	return s.GetByID(ctx, post.ID)
}

func (s *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *PostStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": id.String()}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (s *PostStore) List(ctx context.Context, offset, limit int) ([]*blog.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate(err)
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	return s.populate(ctx, docs)
}

func (s *PostStore) Count(ctx context.Context) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, translate(err)
	}
	return int(n), nil
}

func (s *PostStore) Update(ctx context.Context, post *blog.Post, replaceCategories bool) (*blog.Post, error) {
	set := bson.M{
		"title":      post.Title,
		"slug":       post.Slug,
		"content":    post.Content,
		"image_url":  post.ImageURL,
		"updated_at": post.UpdatedAt,
	}
	if replaceCategories {
		set["category_ids"] = idStrings(post.CategoryIDs)
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": post.ID.String()}, bson.M{"$set": set})
	if err != nil {
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, blog.ErrRecordNotFound
	}
	return s.GetByID(ctx, post.ID)
}

// Delete removes the post first so a concurrent reader never sees
// comments or likes whose post is still listed
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return blog.ErrRecordNotFound
	}

	filter := bson.M{"post_id": id.String()}
	if _, err := s.comments.DeleteMany(ctx, filter); err != nil {
		return translate(err)
	}
	if _, err := s.likes.DeleteMany(ctx, filter); err != nil {
		return translate(err)
	}
	return nil
}

func (s *PostStore) findOne(ctx context.Context, filter any) (*blog.Post, error) {
	var doc postDoc
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}

	posts, err := s.populate(ctx, []postDoc{doc})
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

func (s *PostStore) populate(ctx context.Context, docs []postDoc) ([]*blog.Post, error) {
	authorIDs := make([]string, 0, len(docs))
	categoryIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, doc := range docs {
		authorIDs = append(authorIDs, doc.AuthorID)
		for _, id := range doc.CategoryIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			categoryIDs = append(categoryIDs, id)
		}
	}

	authors, err := s.users.publicByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.byIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	posts := make([]*blog.Post, 0, len(docs))
	for _, doc := range docs {
		post := doc.model()
		post.Author = authors[doc.AuthorID]
		post.Categories = pickCategories(categories, doc.CategoryIDs)
		post.CategoryIDs = post.CategoryIDs[:0]
		for _, category := range post.Categories {
			post.CategoryIDs = append(post.CategoryIDs, category.ID)
		}

		posts = append(posts, post)
	}
	return posts, nil
}

// pickCategories returns the entries of sorted whose id is in ids,
// keeping the order of sorted. Unknown ids are dropped.
func pickCategories(sorted []*blog.Category, ids []string) []*blog.Category {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	out := make([]*blog.Category, 0, len(ids))
	for _, category := range sorted {
		if _, ok := want[category.ID.String()]; ok {
			out = append(out, category)
		}
	}
	return out
}
