package blog

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var ErrInvalidBody = NewBadRequestError("Invalid request body")

// Controller holds the HTTP handlers for the blog API
type Controller struct {
	Auth       *AuthService
	Categories *CategoryService
	Posts      *PostService
	Comments   *CommentService
	Likes      *LikeService
	Logger     Logger
}

// Services groups the domain services a Controller needs
type Services struct {
	Auth       *AuthService
	Categories *CategoryService
	Posts      *PostService
	Comments   *CommentService
	Likes      *LikeService
}

func NewController(services Services) *Controller {
	return &Controller{
		Auth:       services.Auth,
		Categories: services.Categories,
		Posts:      services.Posts,
		Comments:   services.Comments,
		Likes:      services.Likes,
		Logger:     defLogger{},
	}
}

func (h *Controller) WithLogger(logger Logger) *Controller {
	if logger != nil {
		h.Logger = logger
	}
	return h
}

type registerResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type userSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      userSummary `json:"user"`
}

func (h *Controller) Register(c *fiber.Ctx) error {
	var payload RegisterInput
	if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	user, err := h.Auth.Register(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return SendSuccess(c, fiber.StatusCreated, "User registered successfully", registerResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (h *Controller) Login(c *fiber.Ctx) error {
	var payload LoginInput
	if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	result, err := h.Auth.Login(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return SendSuccess(c, fiber.StatusOK, "Login successful", loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User: userSummary{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
		},
	})
}

func (h *Controller) Me(c *fiber.Ctx) error {
	if user, ok := UserFromLocals(c); ok {
		return SendSuccess(c, fiber.StatusOK, "Current user", user)
	}
	user, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Current user", user)
}

func (h *Controller) ListCategories(c *fiber.Ctx) error {
	categories, err := h.Categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Categories fetched", categories)
}

func (h *Controller) GetCategory(c *fiber.Ctx) error {
	id, err := pathID(c, "id", ErrCategoryNotFound)
	if err != nil {
		return err
	}

	category, err := h.Categories.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Category fetched", category)
}

func (h *Controller) CreateCategory(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	var payload CategoryInput
	if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	category, err := h.Categories.Create(c.UserContext(), requester, payload)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusCreated, "Category created", category)
}

func (h *Controller) UpdateCategory(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	id, err := pathID(c, "id", ErrCategoryNotFound)
	if err != nil {
		return err
	}

	var payload CategoryPatch
	if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	category, err := h.Categories.Update(c.UserContext(), requester, id, payload)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Category updated", category)
}

func (h *Controller) DeleteCategory(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	id, err := pathID(c, "id", ErrCategoryNotFound)
	if err != nil {
		return err
	}

	if err := h.Categories.Delete(c.UserContext(), requester, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Controller) ListPosts(c *fiber.Ctx) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}

	result, err := h.Posts.List(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return SendPage(c, "Posts fetched", result)
}

func (h *Controller) GetPost(c *fiber.Ctx) error {
	id, err := pathID(c, "id", ErrPostNotFound)
	if err != nil {
		return err
	}

	post, err := h.Posts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Post fetched", post)
}

func (h *Controller) CreatePost(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	var payload PostInput
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return ErrInvalidBody
		}
		payload.Title = formValue(form, "title")
		payload.Slug = formValue(form, "slug")
		payload.Content = formValue(form, "content")
		payload.Categories = formValues(form, "categories")

		image, closeImage, err := formImage(form, "image")
		if err != nil {
			return err
		}
		defer closeImage()
		payload.Image = image
	} else if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	post, err := h.Posts.Create(c.UserContext(), requester, payload)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusCreated, "Post created", post)
}

func (h *Controller) UpdatePost(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	id, err := pathID(c, "id", ErrPostNotFound)
	if err != nil {
		return err
	}

	var payload PostPatch
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return ErrInvalidBody
		}
		payload.Title = optionalFormValue(form, "title")
		payload.Slug = optionalFormValue(form, "slug")
		payload.Content = optionalFormValue(form, "content")
		if categories := formValues(form, "categories"); categories != nil {
			payload.Categories = &categories
		}

		image, closeImage, err := formImage(form, "image")
		if err != nil {
			return err
		}
		defer closeImage()
		payload.Image = image
	} else if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	post, err := h.Posts.Update(c.UserContext(), requester, id, payload)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Post updated", post)
}

func (h *Controller) DeletePost(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	id, err := pathID(c, "id", ErrPostNotFound)
	if err != nil {
		return err
	}

	if err := h.Posts.Delete(c.UserContext(), requester, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Controller) CreateComment(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId", ErrPostNotFound)
	if err != nil {
		return err
	}

	var payload CommentInput
	if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	comment, err := h.Comments.Create(c.UserContext(), requester, postID, payload)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusCreated, "Comment added", comment)
}

func (h *Controller) ListComments(c *fiber.Ctx) error {
	postID, err := pathID(c, "postId", ErrPostNotFound)
	if err != nil {
		return err
	}

	comments, err := h.Comments.ListByPost(c.UserContext(), postID)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Comments fetched", comments)
}

func (h *Controller) UpdateComment(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	id, err := pathID(c, "id", ErrCommentNotFound)
	if err != nil {
		return err
	}

	var payload CommentInput
	if err := c.BodyParser(&payload); err != nil {
		return ErrInvalidBody
	}

	comment, err := h.Comments.Update(c.UserContext(), requester, id, payload)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Comment updated", comment)
}

func (h *Controller) DeleteComment(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	id, err := pathID(c, "id", ErrCommentNotFound)
	if err != nil {
		return err
	}

	if err := h.Comments.Delete(c.UserContext(), requester, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Controller) LikePost(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId", ErrPostNotFound)
	if err != nil {
		return err
	}

	like, err := h.Likes.Like(c.UserContext(), requester, postID)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusCreated, "Post liked", fiber.Map{"like": like})
}

func (h *Controller) UnlikePost(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId", ErrLikeNotFound)
	if err != nil {
		return err
	}

	if err := h.Likes.Unlike(c.UserContext(), requester, postID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Controller) CountLikes(c *fiber.Ctx) error {
	postID, err := pathID(c, "postId", ErrPostNotFound)
	if err != nil {
		return err
	}

	total, err := h.Likes.Count(c.UserContext(), postID)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Likes counted", fiber.Map{"total": total})
}

func (h *Controller) HasLiked(c *fiber.Ctx) error {
	requester, err := RequesterFromContext(c.UserContext())
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId", ErrPostNotFound)
	if err != nil {
		return err
	}

	liked, err := h.Likes.HasLiked(c.UserContext(), requester, postID)
	if err != nil {
		return err
	}
	return SendSuccess(c, fiber.StatusOK, "Like status", fiber.Map{"liked": liked})
}

func (h *Controller) ListLikers(c *fiber.Ctx) error {
	postID, err := pathID(c, "postId", ErrPostNotFound)
	if err != nil {
		return err
	}

	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}

	result, err := h.Likes.ListLikers(c.UserContext(), postID, page, limit)
	if err != nil {
		return err
	}
	return SendPage(c, "Likes fetched", result)
}

// pathID parses a path parameter as an identifier. A malformed value
// can not resolve to a record, so it fails with notFound.
func pathID(c *fiber.Ctx, name string, notFound *goerrors.Error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

func pageQuery(c *fiber.Ctx) (int, int, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, ErrInvalidPagination
	}
	return v, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func formValue(form *multipart.Form, key string) string {
	if v := optionalFormValue(form, key); v != nil {
		return *v
	}
	return ""
}

func optionalFormValue(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// formValues reads a repeated field, accepting both key and key[]
func formValues(form *multipart.Form, key string) []string {
	values, ok := form.Value[key]
	if !ok {
		values, ok = form.Value[key+"[]"]
	}
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// formImage opens the first file under key. The returned func closes
// it and is safe to call when no file was sent.
func formImage(form *multipart.Form, key string) (*ImageUpload, func(), error) {
	noop := func() {}

	files := form.File[key]
	if len(files) == 0 {
		return nil, noop, nil
	}

	header := files[0]
	f, err := header.Open()
	if err != nil {
		return nil, noop, NewBadRequestError("Unable to read uploaded image")
	}

	return &ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}
