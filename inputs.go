package blog

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterInput is the payload to create an account
type RegisterInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r *RegisterInput) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = NormalizeEmail(r.Email)
}

// Validate the register payload
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(3, 30)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(6, 0), validation.Length(0, MaxPasswordBytes)),
	)
}

// LoginInput is the payload to exchange credentials for a token
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// CategoryInput creates a category
type CategoryInput struct {
	Name string `json:"name" form:"name"`
	Slug string `json:"slug" form:"slug"`
}

func (r *CategoryInput) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = NormalizeSlug(r.Slug)
}

func (r CategoryInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(2, 50)),
		validation.Field(&r.Slug, validation.Required, validation.RuneLength(2, 50)),
	)
}

// CategoryPatch updates a category. Nil fields are left as is.
type CategoryPatch struct {
	Name *string `json:"name" form:"name"`
	Slug *string `json:"slug" form:"slug"`
}

func (r *CategoryPatch) normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Slug != nil {
		slug := NormalizeSlug(*r.Slug)
		r.Slug = &slug
	}
}

func (r CategoryPatch) Validate() error {
	if r.Name == nil && r.Slug == nil {
		return ErrEmptyUpdate
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.RuneLength(2, 50)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.RuneLength(2, 50)),
	)
}

// PostInput creates a post. Categories hold raw identifiers as
// sent by the client.
type PostInput struct {
	Title      string       `json:"title" form:"title"`
	Slug       string       `json:"slug" form:"slug"`
	Content    string       `json:"content" form:"content"`
	Categories []string     `json:"categories" form:"categories"`
	Image      *ImageUpload `json:"-" form:"-"`
}

func (r *PostInput) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = NormalizeSlug(r.Slug)
}

func (r PostInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(3, 100)),
		validation.Field(&r.Slug, validation.Required, validation.RuneLength(3, 100)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(10, 0)),
	)
}

// PostPatch updates a post. Nil fields are left as is; a non nil
// Categories replaces the whole set.
type PostPatch struct {
	Title      *string      `json:"title" form:"title"`
	Slug       *string      `json:"slug" form:"slug"`
	Content    *string      `json:"content" form:"content"`
	Categories *[]string    `json:"categories" form:"categories"`
	Image      *ImageUpload `json:"-" form:"-"`
}

func (r *PostPatch) normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Slug != nil {
		slug := NormalizeSlug(*r.Slug)
		r.Slug = &slug
	}
}

func (r PostPatch) Validate() error {
	if r.Title == nil && r.Slug == nil && r.Content == nil && r.Categories == nil && r.Image == nil {
		return ErrEmptyUpdate
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(3, 100)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.RuneLength(3, 100)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.RuneLength(10, 0)),
	)
}

// CommentInput creates or edits a comment
type CommentInput struct {
	Content string `json:"content" form:"content"`
}

func (r *CommentInput) normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

func (r CommentInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, 500)),
	)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeSlug trims and lowercases a slug
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// validationError turns ozzo validation output into a 400 rich error
// with one metadata entry per failing field.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	if IsValidation(err) {
		return err
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, ferr := range fieldErrs {
			if ferr != nil {
				fields[name] = ferr.Error()
			}
		}
		return NewFieldsError(fieldErrs.Error(), fields)
	}

	return NewValidationError(err.Error())
}
