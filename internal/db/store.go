package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by query methods, satisfied by both
// *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries holds the single-statement query methods bound to a connection
// pool or an open transaction.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Querier lists every single-statement query.
type Querier interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUserIDsByRole(ctx context.Context, role UserRole) ([]string, error)

	CreateComponent(ctx context.Context, arg CreateComponentParams) (Component, error)
	GetComponentByID(ctx context.Context, id uuid.UUID) (Component, error)
	GetComponentBySlug(ctx context.Context, slug string) (Component, error)
	ListComponentsOnSale(ctx context.Context) ([]Component, error)
	ListBidsByComponent(ctx context.Context, componentID uuid.UUID) ([]Bid, error)
	DeleteComponent(ctx context.Context, id uuid.UUID) error

	CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error)
	ListNotificationsByRecipient(ctx context.Context, recipientID string) ([]Notification, error)
	GetNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) (Notification, error)
	DeleteNotification(ctx context.Context, id uuid.UUID) error

	CreateShop(ctx context.Context, arg CreateShopParams) (Shop, error)
	GetShopByID(ctx context.Context, id uuid.UUID) (Shop, error)
	ListShops(ctx context.Context) ([]Shop, error)
	DeleteShop(ctx context.Context, id uuid.UUID) error

	CreateForumPost(ctx context.Context, arg CreateForumPostParams) (ForumPost, error)
	GetForumPostByID(ctx context.Context, id uuid.UUID) (ForumPost, error)
	ListForumPosts(ctx context.Context) ([]ForumPost, error)
	DeleteForumPost(ctx context.Context, id uuid.UUID) error
	CreateForumReply(ctx context.Context, arg CreateForumReplyParams) (ForumReply, error)
	ListForumRepliesByPost(ctx context.Context, postID uuid.UUID) ([]ForumReply, error)
}

// Store provides all functions to execute db queries and transactions.
type Store interface {
	Querier

	PlaceBidTx(ctx context.Context, arg PlaceBidTxParams) (PlaceBidTxResult, error)
	BuyNowTx(ctx context.Context, arg BuyNowTxParams) (Component, error)
	FinalizeAuctionTx(ctx context.Context, arg FinalizeAuctionTxParams) (FinalizeAuctionTxResult, error)
	GetComponentDetailsByID(ctx context.Context, id uuid.UUID) (ComponentDetails, error)

	Ping(ctx context.Context) error
}

type SQLStore struct {
	*Queries
	connPool *pgxpool.Pool
}

// NewStore creates a new Store.
func NewStore(connPool *pgxpool.Pool) Store {
	return &SQLStore{
		Queries:  New(connPool),
		connPool: connPool,
	}
}

// Ping checks if the database connection is alive.
func (store *SQLStore) Ping(ctx context.Context) error {
	return store.connPool.Ping(ctx)
}

// ExecTx executes a function within a database transaction.
func (store *SQLStore) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := store.connPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	qTx := New(tx)
	if err = fn(qTx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}
