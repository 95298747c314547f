package blog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/repository"
)

const testPassword = "password123"

// MockConfig implements blog.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetIssuer() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetTokenExpiration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *MockConfig) GetSaltRounds() int {
	return m.Called().Int(0)
}

func (m *MockConfig) GetContextKey() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetTokenLookup() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	return m.Called().String(0)
}

func newMockConfig() *MockConfig {
	cfg := new(MockConfig)
	cfg.On("GetSigningKey").Return("test-signing-key").Maybe()
	cfg.On("GetIssuer").Return("test-issuer").Maybe()
	cfg.On("GetTokenExpiration").Return(time.Hour).Maybe()
	cfg.On("GetSaltRounds").Return(4).Maybe()
	cfg.On("GetContextKey").Return("user").Maybe()
	cfg.On("GetTokenLookup").Return("header:Authorization").Maybe()
	cfg.On("GetAuthScheme").Return("Bearer").Maybe()
	return cfg
}

// MockUserStore implements blog.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *blog.User) (*blog.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*blog.User)
	return u, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*blog.User)
	return u, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*blog.User)
	return u, args.Error(1)
}

func (m *MockUserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*blog.User, error) {
	args := m.Called(ctx, username, email)
	u, _ := args.Get(0).(*blog.User)
	return u, args.Error(1)
}

// MockLogger implements blog.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []blog.ActivityEvent
}

func (r *eventRecorder) Record(_ context.Context, event blog.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []blog.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]blog.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type testEnv struct {
	cfg        *MockConfig
	repo       *repository.Manager
	images     *blog.DiskImageStore
	events     *eventRecorder
	auth       *blog.AuthService
	categories *blog.CategoryService
	posts      *blog.PostService
	comments   *blog.CommentService
	likes      *blog.LikeService
}

// newTestEnv wires every service to a fresh in-memory SQLite database
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.CreateSchema(context.Background(), db))

	env := &testEnv{
		cfg:    newMockConfig(),
		repo:   repository.NewRepositoryManager(db),
		images: blog.NewDiskImageStore(t.TempDir(), "/uploads", 1024),
		events: &eventRecorder{},
	}

	env.auth = blog.NewAuthService(env.repo.Users(), env.cfg).WithActivitySink(env.events)
	env.categories = blog.NewCategoryService(env.repo.Categories()).WithActivitySink(env.events)
	env.posts = blog.NewPostService(env.repo.Posts(), env.repo.Categories(), env.images).WithActivitySink(env.events)
	env.comments = blog.NewCommentService(env.repo.Comments(), env.repo.Posts()).WithActivitySink(env.events)
	env.likes = blog.NewLikeService(env.repo.Likes(), env.repo.Posts()).WithActivitySink(env.events)

	return env
}

func (e *testEnv) register(t *testing.T, username string) *blog.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), blog.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) category(t *testing.T, requester *blog.User, name string) *blog.Category {
	t.Helper()
	category, err := e.categories.Create(context.Background(), requester, blog.CategoryInput{
		Name: name,
		Slug: name,
	})
	require.NoError(t, err)
	return category
}

func (e *testEnv) post(t *testing.T, author *blog.User, slug string, categories ...*blog.Category) *blog.Post {
	t.Helper()
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID.String())
	}
	post, err := e.posts.Create(context.Background(), author, blog.PostInput{
		Title:      "Title " + slug,
		Slug:       slug,
		Content:    "<p>Some post content</p>",
		Categories: ids,
	})
	require.NoError(t, err)
	return post
}

func strPtr(s string) *string {
	return &s
}
