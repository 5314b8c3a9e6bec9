package posts

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultStoreTimeout bounds every store call made by PostService
const DefaultStoreTimeout = 5 * time.Second

// PostService implements the post interaction operations. Ownership is
// always checked against the actor id taken from verified claims.
type PostService struct {
	users    UserFinder
	posts    PostStore
	logger   Logger
	activity ActivitySink
	timeout  time.Duration
	now      func() time.Time
}

// NewPostService creates a PostService over the given stores
func NewPostService(users UserFinder, posts PostStore) *PostService {
	return &PostService{
		users:    users,
		posts:    posts,
		logger:   defLogger{},
		activity: noopActivitySink{},
		timeout:  DefaultStoreTimeout,
		now:      time.Now,
	}
}

// WithActivitySink sets the sink receiving post events
func (s *PostService) WithActivitySink(sink ActivitySink) *PostService {
	s.activity = normalizeActivitySink(sink)
	return s
}

func (s *PostService) WithLogger(l Logger) *PostService {
	s.logger = resolveLogger(l)
	return s
}

// WithStoreTimeout sets the bounded wait for store calls, zero disables it
func (s *PostService) WithStoreTimeout(d time.Duration) *PostService {
	s.timeout = d
	return s
}

// CreatePost stores a new post authored by actorID. Name and avatar are
// copied from the author at creation time.
func (s *PostService) CreatePost(ctx context.Context, actorID, text string) (*Post, error) {
	if err := (PostTextRequest{Text: text}).Validate(); err != nil {
		return nil, err
	}

	author, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:        uuid.New(),
		UserID:    author.ID,
		Text:      strings.TrimSpace(text),
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now().UTC(),
	}

	var created *Post
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.posts.Create(ctx, post)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeError("create post", err)
	}

	s.record(ctx, ActivityEventPostCreated, author.ID, created.ID, uuid.Nil)

	return created.ensureCollections(), nil
}

// ListPosts returns all posts, newest first
func (s *PostService) ListPosts(ctx context.Context) ([]*Post, error) {
	var records []*Post
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.posts.List(ctx)
		return err
	})
	if err != nil {
		return nil, s.storeError("list posts", err)
	}

	if records == nil {
		records = []*Post{}
	}
	for _, p := range records {
		p.ensureCollections()
	}
	return records, nil
}

// GetPost returns a single post. Malformed ids are reported as not found.
func (s *PostService) GetPost(ctx context.Context, postID string) (*Post, error) {
	pid, err := parseID(postID, ErrPostNotFound)
	if err != nil {
		return nil, err
	}
	return s.loadPost(ctx, pid)
}

// DeletePost removes a post owned by actorID together with its likes and comments
func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	actor, err := parseID(actorID, ErrInvalidToken)
	if err != nil {
		return err
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != actor {
		s.logger.Info("delete post rejected", "post_id", post.ID, "actor_id", actor)
		return ErrNotAuthorized
	}

	err = s.withTimeout(ctx, func(ctx context.Context) error {
		return s.posts.Delete(ctx, post.ID)
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return s.storeError("delete post", err)
	}

	s.record(ctx, ActivityEventPostDeleted, actor, post.ID, uuid.Nil)

	return nil
}

// LikePost adds a like by actorID and returns the updated likes
func (s *PostService) LikePost(ctx context.Context, actorID, postID string) ([]*Like, error) {
	actor, post, err := s.actorAndPost(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	var inserted bool
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = s.posts.AddLike(ctx, post.ID, actor)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, s.storeError("add like", err)
	}

	if !inserted {
		return nil, ErrAlreadyLiked
	}

	s.record(ctx, ActivityEventPostLiked, actor, post.ID, uuid.Nil)

	return s.likes(ctx, post.ID)
}

// UnlikePost removes the like by actorID and returns the updated likes
func (s *PostService) UnlikePost(ctx context.Context, actorID, postID string) ([]*Like, error) {
	actor, post, err := s.actorAndPost(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	var removed bool
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.posts.RemoveLike(ctx, post.ID, actor)
		return err
	})
	if err != nil {
		return nil, s.storeError("remove like", err)
	}

	if !removed {
		return nil, ErrNotYetLiked
	}

	s.record(ctx, ActivityEventPostUnliked, actor, post.ID, uuid.Nil)

	return s.likes(ctx, post.ID)
}

// AddComment appends a comment by actorID and returns the updated comments
func (s *PostService) AddComment(ctx context.Context, actorID, postID, text string) ([]*Comment, error) {
	if err := (PostTextRequest{Text: text}).Validate(); err != nil {
		return nil, err
	}

	author, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	pid, err := parseID(postID, ErrPostNotFound)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadPost(ctx, pid); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.New(),
		PostID:    pid,
		UserID:    author.ID,
		Text:      strings.TrimSpace(text),
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now().UTC(),
	}

	err = s.withTimeout(ctx, func(ctx context.Context) error {
		_, err := s.posts.AddComment(ctx, comment)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, s.storeError("add comment", err)
	}

	s.record(ctx, ActivityEventCommentAdded, author.ID, pid, comment.ID)

	return s.comments(ctx, pid)
}

// RemoveComment deletes the addressed comment if actorID authored it and
// returns the remaining comments
func (s *PostService) RemoveComment(ctx context.Context, actorID, postID, commentID string) ([]*Comment, error) {
	actor, post, err := s.actorAndPost(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	cid, err := parseID(commentID, ErrCommentNotFound)
	if err != nil {
		return nil, err
	}

	comment, ok := post.FindComment(cid)
	if !ok {
		return nil, ErrCommentNotFound
	}

	if comment.UserID != actor {
		s.logger.Info("remove comment rejected", "comment_id", cid, "actor_id", actor)
		return nil, ErrNotAuthorized
	}

	// removes the addressed comment, not the first one by the same author
	var removed bool
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.posts.RemoveComment(ctx, post.ID, cid, actor)
		return err
	})
	if err != nil {
		return nil, s.storeError("remove comment", err)
	}

	if !removed {
		return nil, ErrCommentNotFound
	}

	s.record(ctx, ActivityEventCommentRemoved, actor, post.ID, cid)

	return s.comments(ctx, post.ID)
}

func (s *PostService) actorAndPost(ctx context.Context, actorID, postID string) (uuid.UUID, *Post, error) {
	actor, err := parseID(actorID, ErrInvalidToken)
	if err != nil {
		return uuid.Nil, nil, err
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	return actor, post, nil
}

func (s *PostService) actor(ctx context.Context, actorID string) (*User, error) {
	uid, err := parseID(actorID, ErrInvalidToken)
	if err != nil {
		return nil, err
	}

	var user *User
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, uid)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeError("get user", err)
	}

	return user, nil
}

func (s *PostService) loadPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post *Post
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		post, err = s.posts.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, s.storeError("get post", err)
	}
	return post.ensureCollections(), nil
}

func (s *PostService) likes(ctx context.Context, postID uuid.UUID) ([]*Like, error) {
	var records []*Like
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.posts.ListLikes(ctx, postID)
		return err
	})
	if err != nil {
		return nil, s.storeError("list likes", err)
	}
	if records == nil {
		records = []*Like{}
	}
	return records, nil
}

func (s *PostService) comments(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	var records []*Comment
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.posts.ListComments(ctx, postID)
		return err
	})
	if err != nil {
		return nil, s.storeError("list comments", err)
	}
	if records == nil {
		records = []*Comment{}
	}
	return records, nil
}

func (s *PostService) record(ctx context.Context, kind ActivityEventType, actor, postID, commentID uuid.UUID) {
	event := ActivityEvent{
		EventType:  kind,
		ActorID:    actor.String(),
		PostID:     postID.String(),
		OccurredAt: s.now().UTC(),
	}
	if commentID != uuid.Nil {
		event.CommentID = commentID.String()
	}
	recordActivity(ctx, s.activity, s.logger, event)
}

func (s *PostService) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// storeError logs the cause and hides it behind ErrServerError
func (s *PostService) storeError(op string, err error) error {
	s.logger.Error("post store failure", "op", op, "error", err, "timeout", errors.Is(err, context.DeadlineExceeded))
	return ErrServerError
}
