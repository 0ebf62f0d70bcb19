package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"lifeboard/internal/models"
	"lifeboard/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLen = 3
	maxTitleLen    = 200
	maxNicknameLen = 64
)

// CreatePostInput is the payload for a new post.
type CreatePostInput struct {
	ClientReqID string `json:"client_req_id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Nickname    string `json:"nickname"`
	Password    string `json:"password"`
}

// UpdatePostInput carries the editable post fields. Nil pointers leave the
// field untouched.
type UpdatePostInput struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	Password string  `json:"password"`
}

// CommentInput is the payload for creating or editing a comment.
type CommentInput struct {
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
	Password string `json:"password"`
}

// PostService owns the post and comment lifecycle: anonymous authorship with
// per-resource password gates, soft deletion, and upload garbage collection
// tied to content changes.
type PostService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	uploads    *UploadService
	sanitize   *SanitizePolicies
}

// NewPostService wires the lifecycle service.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
	uploads *UploadService,
	sanitize *SanitizePolicies,
) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		categories: categories,
		uploads:    uploads,
		sanitize:   sanitize,
	}
}

// Create stores a new post. When the client supplies a request token and the
// insert loses a uniqueness race, the winner's row is re-read and returned so
// a retried submit never produces a duplicate.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	nickname := strings.TrimSpace(in.Nickname)
	switch {
	case title == "":
		return nil, models.NewValidationError("Title is required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		return nil, models.NewValidationError("Title is too long")
	case strings.TrimSpace(in.Content) == "":
		return nil, models.NewValidationError("Content is required")
	case nickname == "":
		return nil, models.NewValidationError("Nickname is required")
	case utf8.RuneCountInString(nickname) > maxNicknameLen:
		return nil, models.NewValidationError("Nickname is too long")
	case len(in.Password) < minPasswordLen:
		return nil, models.NewValidationError("Password must be at least 3 characters")
	}

	cat, err := s.categories.GetByCode(ctx, strings.TrimSpace(in.Category))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewValidationError("Unknown category")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	post := &models.Post{
		CategoryID:   cat.ID,
		Category:     *cat,
		Title:        title,
		Content:      s.sanitize.Rich.Sanitize(in.Content),
		AuthorNick:   nickname,
		PasswordHash: string(hash),
	}
	if token := strings.TrimSpace(in.ClientReqID); token != "" {
		post.ClientReqID = &token
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.ClientReqID != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, rerr := s.posts.GetByClientReqID(ctx, *post.ClientReqID)
			if rerr != nil {
				return nil, models.NewInternalError(rerr)
			}
			s.attachCount(ctx, existing)
			return existing, nil
		}
		return nil, models.NewInternalError(err)
	}

	return post, nil
}

// Get returns a live post and bumps its view counter. The increment hits the
// store directly so concurrent readers never lose counts to a stale row.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.activePost(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return nil, models.NewInternalError(err)
	}
	post.Views++

	s.attachCount(ctx, post)
	return post, nil
}

// Update applies the provided fields after password verification. Replacing
// the content garbage-collects any upload the old body referenced and the new
// body does not.
func (s *PostService) Update(ctx context.Context, id uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.verifyPost(ctx, id, in.Password)
	if err != nil {
		return nil, err
	}

	oldContent := post.Content
	changed := false

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return nil, models.NewValidationError("Title is too long")
		}
		post.Title = title
		changed = true
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("Content is required")
		}
		post.Content = s.sanitize.Rich.Sanitize(*in.Content)
		changed = true
	}
	if in.Category != nil {
		cat, err := s.categories.GetByCode(ctx, strings.TrimSpace(*in.Category))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("Unknown category")
		}
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		post.CategoryID = cat.ID
		post.Category = *cat
		changed = true
	}

	if !changed {
		s.attachCount(ctx, post)
		return post, nil
	}

	post.Edited = true
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	if in.Content != nil {
		s.uploads.CleanupOrphans(oldContent, post.Content)
	}

	s.attachCount(ctx, post)
	return post, nil
}

// Delete soft-deletes the post after password verification and removes every
// upload its content referenced. The row itself is retained.
func (s *PostService) Delete(ctx context.Context, id uint, password string) error {
	post, err := s.verifyPost(ctx, id, password)
	if err != nil {
		return err
	}

	if err := s.posts.SoftDelete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}

	s.uploads.RemoveAll(post.Content)
	return nil
}

// Verify checks the post password without mutating anything. Lets clients
// gate their edit UI before submitting.
func (s *PostService) Verify(ctx context.Context, id uint, password string) error {
	_, err := s.verifyPost(ctx, id, password)
	return err
}

// Like atomically increments the like counter and returns the new value.
func (s *PostService) Like(ctx context.Context, id uint) (int, error) {
	likes, err := s.posts.IncrementLikes(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return likes, nil
}

// Unlike atomically decrements the like counter, never below zero, and
// returns the new value.
func (s *PostService) Unlike(ctx context.Context, id uint) (int, error) {
	likes, err := s.posts.DecrementLikes(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return likes, nil
}

// ListComments returns the active comments of a live post, oldest first.
func (s *PostService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.activePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListActiveByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// CreateComment adds a comment to a live post. Comment bodies are plain text;
// any markup is stripped outright.
func (s *PostService) CreateComment(ctx context.Context, postID uint, in CommentInput) (*models.Comment, error) {
	nickname := strings.TrimSpace(in.Nickname)
	content := strings.TrimSpace(s.sanitize.Plain.Sanitize(in.Content))
	switch {
	case nickname == "":
		return nil, models.NewValidationError("Nickname is required")
	case utf8.RuneCountInString(nickname) > maxNicknameLen:
		return nil, models.NewValidationError("Nickname is too long")
	case content == "":
		return nil, models.NewValidationError("Content is required")
	case len(in.Password) < minPasswordLen:
		return nil, models.NewValidationError("Password must be at least 3 characters")
	}

	if _, err := s.activePost(ctx, postID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	comment := &models.Comment{
		PostID:       postID,
		Nickname:     nickname,
		PasswordHash: string(hash),
		Content:      content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// UpdateComment edits a comment after password verification. The comment must
// belong to the post named in the request.
func (s *PostService) UpdateComment(ctx context.Context, postID, commentID uint, in CommentInput) (*models.Comment, error) {
	comment, err := s.verifyComment(ctx, postID, commentID, in.Password)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(s.sanitize.Plain.Sanitize(in.Content))
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	comment.Content = content
	comment.Edited = true
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// DeleteComment soft-deletes a comment after password verification.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID uint, password string) error {
	comment, err := s.verifyComment(ctx, postID, commentID, password)
	if err != nil {
		return err
	}
	if err := s.comments.SoftDelete(ctx, comment.ID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// activePost loads a post and maps deleted rows to NotFound. Deleted content
// is indistinguishable from never-existed content on the public surface.
func (s *PostService) activePost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if post.Deleted {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func (s *PostService) verifyPost(ctx context.Context, id uint, password string) (*models.Post, error) {
	post, err := s.activePost(ctx, id)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(post.PasswordHash), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid password")
	}
	return post, nil
}

func (s *PostService) verifyComment(ctx context.Context, postID, commentID uint, password string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comment.Deleted {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if comment.PostID != postID {
		return nil, models.NewConflictError("Comment does not belong to this post")
	}
	if bcrypt.CompareHashAndPassword([]byte(comment.PasswordHash), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid password")
	}
	return comment, nil
}

func (s *PostService) attachCount(ctx context.Context, post *models.Post) {
	counts, err := s.comments.CountActiveByPostIDs(ctx, []uint{post.ID})
	if err != nil {
		return
	}
	post.CommentCount = counts[post.ID]
}
