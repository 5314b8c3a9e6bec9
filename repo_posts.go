package posts

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Posts is the bun implementation of PostStore
type Posts interface {
	PostStore
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

// Post rows go through the generic repository. Like and comment rows are
// written with single conditional statements on top of it.
type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

var _ Posts = (*posts)(nil)

// NewPostsRepository returns a bun backed post store
func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post {
			return &Post{}
		},
		GetID: func(record *Post) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Post, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

func (r *posts) Create(ctx context.Context, post *Post) (*Post, error) {
	if post == nil {
		return nil, errors.New("post record is required", errors.CategoryBadInput)
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	created, err := r.Repository.Create(ctx, post)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert post")
	}

	return created.ensureCollections(), nil
}

// List returns every post with its likes and comments, newest first
func (r *posts) List(ctx context.Context) ([]*Post, error) {
	records, _, err := r.Repository.List(ctx,
		repository.Paginate(0, 0),
		r.withRelations,
		r.newestFirst,
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *posts) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record, err := r.Repository.GetByID(ctx, id.String(), r.withRelations)
	if err != nil {
		return nil, recordNotFound(err)
	}
	return record, nil
}

// Delete removes the post and its likes and comments in one transaction
func (r *posts) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return r.DeleteTx(ctx, tx, id)
	})
}

func (r *posts) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	if _, err := tx.NewDelete().Model((*Like)(nil)).Where("post_id = ?", id).Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*Comment)(nil)).Where("post_id = ?", id).Exec(ctx); err != nil {
		return err
	}

	res, err := tx.NewDelete().Model((*Post)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n := rowsAffected(res); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// AddLike inserts the like unless the pair already exists. It reports
// whether a row was written.
func (r *posts) AddLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	like := &Like{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.db.NewInsert().
		Model(like).
		On("CONFLICT (post_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrRecordNotFound
		}
		return false, err
	}
	return rowsAffected(res) > 0, nil
}

// RemoveLike deletes the like for the pair and reports whether one existed
func (r *posts) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Like)(nil)).
		Where("post_id = ?", postID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res) > 0, nil
}

func (r *posts) ListLikes(ctx context.Context, postID uuid.UUID) ([]*Like, error) {
	records := []*Like{}
	err := r.newestFirst(r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.post_id = ?", postID)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *posts) AddComment(ctx context.Context, comment *Comment) (*Comment, error) {
	if comment == nil {
		return nil, errors.New("comment record is required", errors.CategoryBadInput)
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert comment")
	}
	return comment, nil
}

// RemoveComment deletes the comment only when it belongs to postID and was
// written by userID
func (r *posts) RemoveComment(ctx context.Context, postID, commentID, userID uuid.UUID) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Comment)(nil)).
		Where("id = ?", commentID).
		Where("post_id = ?", postID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res) > 0, nil
}

func (r *posts) ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	records := []*Comment{}
	err := r.newestFirst(r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.post_id = ?", postID)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *posts) withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Likes", r.newestFirst).
		Relation("Comments", r.newestFirst)
}

// newestFirst orders by creation time, breaking ties by insertion order on
// SQLite and by id elsewhere
func (r *posts) newestFirst(q *bun.SelectQuery) *bun.SelectQuery {
	if r.db.Dialect().Name() == dialect.SQLite {
		return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.rowid DESC")
	}
	return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.id DESC")
}

// isForeignKeyViolation reports a missing parent row. pgx exposes the SQLSTATE,
// the SQLite drivers only the message.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

const pgForeignKeyViolation = "23503"

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
