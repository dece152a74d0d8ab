package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	UniqueViolationCode = "23505"
)

const (
	UniqueEmailConstraint = "users_email_key"
)

var ErrRecordNotFound = pgx.ErrNoRows

var (
	// ErrBidTooLow is returned when a bid no longer exceeds the current
	// price at commit time (another bid won the race).
	ErrBidTooLow = errors.New("bid amount does not exceed the current price")

	// ErrAuctionEnded is returned when the auction end time has passed.
	ErrAuctionEnded = errors.New("auction has ended")

	// ErrComponentNotOnSale is returned when the component status rules the
	// operation out.
	ErrComponentNotOnSale = errors.New("component is not for sale")

	// ErrComponentNotAvailable is returned by the direct-purchase path when
	// the component is in auction or already sold.
	ErrComponentNotAvailable = errors.New("component is not available for purchase")
)

// ErrorDescription returns the error code and constraint name from a
// Postgres error.
func ErrorDescription(err error) (errCode string, constraintName string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	return
}
