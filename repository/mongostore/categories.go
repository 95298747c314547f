package mongostore

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blog "github.com/goliatone/go-blog"
)

type CategoryStore struct {
	collection *mongo.Collection
	posts      *mongo.Collection
}

var _ blog.CategoryStore = (*CategoryStore)(nil)

func NewCategoryStore(db *mongo.Database) *CategoryStore {
	return &CategoryStore{
		collection: db.Collection(categoriesCollection),
		posts:      db.Collection(postsCollection),
	}
}

func (s *CategoryStore) Create(ctx context.Context, category *blog.Category) (*blog.Category, error) {
	if _, err := s.collection.InsertOne(ctx, newCategoryDoc(category)); err != nil {
		return nil, translate(err)
	}
	return category, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.Category, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *CategoryStore) FindByNameOrSlug(ctx context.Context, name, slug string) (*blog.Category, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"name": name},
		bson.M{"slug": slug},
	}})
}

func (s *CategoryStore) List(ctx context.Context) ([]*blog.Category, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (s *CategoryStore) Update(ctx context.Context, category *blog.Category) (*blog.Category, error) {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": category.ID.String()},
		bson.M{"$set": bson.M{
			"name":       category.Name,
			"slug":       category.Slug,
			"updated_at": category.UpdatedAt,
		}},
	)
	if err != nil {
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, blog.ErrRecordNotFound
	}
	return category, nil
}

// Delete removes the category and pulls it from every post
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return blog.ErrRecordNotFound
	}

	_, err = s.posts.UpdateMany(ctx,
		bson.M{"category_ids": id.String()},
		bson.M{"$pull": bson.M{"category_ids": id.String()}},
	)
	return translate(err)
}

// byIDs returns the categories sorted by name
func (s *CategoryStore) byIDs(ctx context.Context, ids []string) ([]*blog.Category, error) {
	if len(ids) == 0 {
		return []*blog.Category{}, nil
	}
	categories, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (s *CategoryStore) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*blog.Category, error) {
	cur, err := s.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err)
	}

	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}

	categories := make([]*blog.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, doc.model())
	}
	return categories, nil
}

func (s *CategoryStore) findOne(ctx context.Context, filter any) (*blog.Category, error) {
	var doc categoryDoc
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}
