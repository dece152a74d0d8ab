package db

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleMember   UserRole = "user"
	UserRoleAdmin    UserRole = "admin"
	UserRoleRecycler UserRole = "recycler"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	ContactInfo    *string   `json:"contact_info"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ComponentStatus string

const (
	ComponentStatusAvailable ComponentStatus = "available"
	ComponentStatusInAuction ComponentStatus = "in-auction"
	ComponentStatusSold      ComponentStatus = "sold"
)

type ComponentCondition string

const (
	ComponentConditionNew         ComponentCondition = "new"
	ComponentConditionUsed        ComponentCondition = "used"
	ComponentConditionRefurbished ComponentCondition = "refurbished"
	ComponentConditionForParts    ComponentCondition = "for-parts"
)

// Component is a sellable listed item, the subject of bidding and purchase.
type Component struct {
	ID              uuid.UUID          `json:"id"`
	Slug            string             `json:"slug"`
	Name            string             `json:"name"`
	Description     *string            `json:"description"`
	Condition       ComponentCondition `json:"condition"`
	Price           int64              `json:"price"`
	CurrentPrice    int64              `json:"current_price"`
	Status          ComponentStatus    `json:"status"`
	SellerID        string             `json:"seller_id"`
	ImageURL        string             `json:"image_url"`
	AuctionEndTime  *time.Time         `json:"auction_end_time"`
	HighestBidderID *string            `json:"highest_bidder_id"`
	BuyerID         *string            `json:"buyer_id"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Bid is a single offer on a component. Rows are append-only.
type Bid struct {
	ID          uuid.UUID `json:"id"`
	ComponentID uuid.UUID `json:"component_id"`
	BidderID    string    `json:"bidder_id"`
	Amount      int64     `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// BidDetails is a bid with the bidder name resolved for presentation.
type BidDetails struct {
	Bid
	BidderName string `json:"bidder_name"`
}

// ComponentDetails is the read shape returned to clients: the component with
// seller/bidder identifiers resolved to display names.
type ComponentDetails struct {
	Component
	SellerName        string       `json:"seller_name"`
	HighestBidderName *string      `json:"highest_bidder_name"`
	Bids              []BidDetails `json:"bids"`
}

type NotificationType string

const (
	NotificationTypeOutbid       NotificationType = "outbid"
	NotificationTypeOrderPlaced  NotificationType = "order_placed"
	NotificationTypeAuctionWon   NotificationType = "auction_won"
	NotificationTypeAuctionEnded NotificationType = "auction_ended"
	NotificationTypeForumReply   NotificationType = "forum_reply"
	NotificationTypeSystem       NotificationType = "system"
)

// Notification is a durable user-visible event record. Immutable once
// created except for the read flag.
type Notification struct {
	ID            uuid.UUID        `json:"id"`
	RecipientID   string           `json:"recipient_id"`
	SenderID      *string          `json:"sender_id"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	ReferenceID   *string          `json:"reference_id"`
	ReferenceKind *string          `json:"reference_kind"`
	IsRead        bool             `json:"is_read"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Shop is a recycling shop that can be located on the map.
type Shop struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Categories  []string  `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
}

type ForumPost struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type ForumReply struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ForumPostDetails is a post with author name and flat replies resolved.
type ForumPostDetails struct {
	ForumPost
	AuthorName string       `json:"author_name"`
	Replies    []ForumReply `json:"replies"`
}
