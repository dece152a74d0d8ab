package db

import (
	"context"

	"github.com/google/uuid"
)

const createForumPost = `
INSERT INTO forum_posts (id, author_id, title, body)
VALUES ($1, $2, $3, $4)
RETURNING id, author_id, title, body, created_at
`

type CreateForumPostParams struct {
	ID       uuid.UUID
	AuthorID string
	Title    string
	Body     string
}

func (q *Queries) CreateForumPost(ctx context.Context, arg CreateForumPostParams) (ForumPost, error) {
	row := q.db.QueryRow(ctx, createForumPost, arg.ID, arg.AuthorID, arg.Title, arg.Body)

	var p ForumPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt)
	return p, err
}

const getForumPostByID = `
SELECT id, author_id, title, body, created_at
FROM forum_posts
WHERE id = $1
`

func (q *Queries) GetForumPostByID(ctx context.Context, id uuid.UUID) (ForumPost, error) {
	row := q.db.QueryRow(ctx, getForumPostByID, id)

	var p ForumPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt)
	return p, err
}

const listForumPosts = `
SELECT id, author_id, title, body, created_at
FROM forum_posts
ORDER BY created_at DESC
`

func (q *Queries) ListForumPosts(ctx context.Context) ([]ForumPost, error) {
	rows, err := q.db.Query(ctx, listForumPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []ForumPost{}
	for rows.Next() {
		var p ForumPost
		if err = rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

const deleteForumPost = `
DELETE FROM forum_posts
WHERE id = $1
`

func (q *Queries) DeleteForumPost(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteForumPost, id)
	return err
}

const createForumReply = `
INSERT INTO forum_replies (id, post_id, author_id, body)
VALUES ($1, $2, $3, $4)
RETURNING id, post_id, author_id, body, created_at
`

type CreateForumReplyParams struct {
	ID       uuid.UUID
	PostID   uuid.UUID
	AuthorID string
	Body     string
}

func (q *Queries) CreateForumReply(ctx context.Context, arg CreateForumReplyParams) (ForumReply, error) {
	row := q.db.QueryRow(ctx, createForumReply, arg.ID, arg.PostID, arg.AuthorID, arg.Body)

	var r ForumReply
	err := row.Scan(&r.ID, &r.PostID, &r.AuthorID, &r.Body, &r.CreatedAt)
	return r, err
}

const listForumRepliesByPost = `
SELECT id, post_id, author_id, body, created_at
FROM forum_replies
WHERE post_id = $1
ORDER BY created_at
`

func (q *Queries) ListForumRepliesByPost(ctx context.Context, postID uuid.UUID) ([]ForumReply, error) {
	rows, err := q.db.Query(ctx, listForumRepliesByPost, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []ForumReply{}
	for rows.Next() {
		var r ForumReply
		if err = rows.Scan(&r.ID, &r.PostID, &r.AuthorID, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}

	return replies, rows.Err()
}
