package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/greencycle/ewaste-BE/internal/worker"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	components map[uuid.UUID]db.Component
	bids       map[uuid.UUID][]db.Bid
	users      map[string]db.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		components: make(map[uuid.UUID]db.Component),
		bids:       make(map[uuid.UUID][]db.Bid),
		users:      make(map[string]db.User),
	}
}

func (s *fakeStore) GetComponentByID(_ context.Context, id uuid.UUID) (db.Component, error) {
	component, ok := s.components[id]
	if !ok {
		return db.Component{}, db.ErrRecordNotFound
	}
	return component, nil
}

func (s *fakeStore) GetComponentDetailsByID(ctx context.Context, id uuid.UUID) (db.ComponentDetails, error) {
	component, err := s.GetComponentByID(ctx, id)
	if err != nil {
		return db.ComponentDetails{}, err
	}

	details := db.ComponentDetails{Component: component}
	for _, bid := range s.bids[id] {
		details.Bids = append(details.Bids, db.BidDetails{Bid: bid})
	}
	return details, nil
}

func (s *fakeStore) CreateComponent(_ context.Context, arg db.CreateComponentParams) (db.Component, error) {
	component := db.Component{
		ID:             arg.ID,
		Slug:           arg.Slug,
		Name:           arg.Name,
		Description:    arg.Description,
		Condition:      arg.Condition,
		Price:          arg.Price,
		CurrentPrice:   arg.Price,
		Status:         db.ComponentStatusAvailable,
		SellerID:       arg.SellerID,
		ImageURL:       arg.ImageURL,
		AuctionEndTime: arg.AuctionEndTime,
	}
	s.components[arg.ID] = component
	return component, nil
}

func (s *fakeStore) DeleteComponent(_ context.Context, id uuid.UUID) error {
	delete(s.components, id)
	delete(s.bids, id)
	return nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (db.User, error) {
	user, ok := s.users[id]
	if !ok {
		return db.User{}, db.ErrRecordNotFound
	}
	return user, nil
}

// PlaceBidTx mirrors the row-locked transaction: state preconditions are
// re-checked against the stored component before anything mutates.
func (s *fakeStore) PlaceBidTx(_ context.Context, arg db.PlaceBidTxParams) (db.PlaceBidTxResult, error) {
	component, ok := s.components[arg.ComponentID]
	if !ok {
		return db.PlaceBidTxResult{}, db.ErrRecordNotFound
	}
	if component.Status == db.ComponentStatusSold {
		return db.PlaceBidTxResult{}, db.ErrComponentNotOnSale
	}
	if component.AuctionEndTime != nil && time.Now().After(*component.AuctionEndTime) {
		return db.PlaceBidTxResult{}, db.ErrAuctionEnded
	}
	if arg.Amount <= component.CurrentPrice {
		return db.PlaceBidTxResult{}, db.ErrBidTooLow
	}

	result := db.PlaceBidTxResult{
		PreviousBidderID: component.HighestBidderID,
		FirstBid:         component.HighestBidderID == nil,
	}

	bid := db.Bid{
		ID:          uuid.New(),
		ComponentID: component.ID,
		BidderID:    arg.BidderID,
		Amount:      arg.Amount,
		CreatedAt:   time.Now(),
	}
	s.bids[component.ID] = append(s.bids[component.ID], bid)

	component.CurrentPrice = arg.Amount
	component.HighestBidderID = &arg.BidderID
	component.Status = db.ComponentStatusInAuction
	s.components[component.ID] = component

	result.Bid = bid
	result.Component = component
	return result, nil
}

func (s *fakeStore) BuyNowTx(_ context.Context, arg db.BuyNowTxParams) (db.Component, error) {
	component, ok := s.components[arg.ComponentID]
	if !ok {
		return db.Component{}, db.ErrRecordNotFound
	}
	if component.Status != db.ComponentStatusAvailable {
		return db.Component{}, db.ErrComponentNotAvailable
	}

	component.Status = db.ComponentStatusSold
	component.BuyerID = &arg.BuyerID
	s.components[component.ID] = component
	return component, nil
}

type fakeDistributor struct {
	notifications []worker.PayloadSendNotification
	finalizes     []worker.PayloadFinalizeAuction
}

func (d *fakeDistributor) DistributeTaskSendNotification(_ context.Context, payload *worker.PayloadSendNotification, _ ...asynq.Option) error {
	d.notifications = append(d.notifications, *payload)
	return nil
}

func (d *fakeDistributor) DistributeTaskFinalizeAuction(_ context.Context, payload *worker.PayloadFinalizeAuction, _ ...asynq.Option) error {
	d.finalizes = append(d.finalizes, *payload)
	return nil
}

// fakeInspector reports every looked-up task as pending unless told
// otherwise, so delete paths can be observed.
type fakeInspector struct {
	lookups  []string
	deleted  []string
	taskGone bool
}

func (i *fakeInspector) DeleteTask(_ context.Context, _, taskID string) error {
	i.deleted = append(i.deleted, taskID)
	return nil
}

func (i *fakeInspector) GetTaskInfo(_ context.Context, queue, taskID string) (*asynq.TaskInfo, error) {
	i.lookups = append(i.lookups, taskID)
	if i.taskGone {
		return nil, asynq.ErrTaskNotFound
	}
	return &asynq.TaskInfo{ID: taskID, Queue: queue}, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	receipts []string
}

func (m *fakeMailer) SendPurchaseReceipt(buyerEmail string, _ db.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, buyerEmail)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.receipts...)
}

type fakeBroadcaster struct {
	events map[string][][]byte
}

func (b *fakeBroadcaster) Broadcast(topic string, payload []byte) {
	if b.events == nil {
		b.events = make(map[string][][]byte)
	}
	b.events[topic] = append(b.events[topic], payload)
}

type engineFixture struct {
	store       *fakeStore
	distributor *fakeDistributor
	inspector   *fakeInspector
	broadcaster *fakeBroadcaster
	engine      *Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		store:       newFakeStore(),
		distributor: &fakeDistributor{},
		inspector:   &fakeInspector{},
		broadcaster: &fakeBroadcaster{},
	}
	f.engine = NewEngine(f.store, f.distributor, f.inspector, f.broadcaster, nil)
	return f
}

func (f *engineFixture) seedComponent(t *testing.T, sellerID string, price int64, endTime *time.Time) db.Component {
	t.Helper()

	component, err := f.engine.CreateListing(context.Background(), sellerID, CreateListingParams{
		Name:           "Ryzen 5 3600 CPU",
		Condition:      db.ComponentConditionUsed,
		Price:          price,
		ImageURL:       "https://example.com/cpu.jpg",
		AuctionEndTime: endTime,
	})
	require.NoError(t, err)
	return component
}

func TestPlaceBidUpdatesPrice(t *testing.T) {
	f := newEngineFixture(t)
	component := f.seedComponent(t, "seller", 10000, nil)

	details, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
	require.NoError(t, err)
	require.Equal(t, int64(12000), details.CurrentPrice)
	require.Equal(t, db.ComponentStatusInAuction, details.Status)
	require.Equal(t, "alice", *details.HighestBidderID)
	require.Len(t, details.Bids, 1)

	details, err = f.engine.PlaceBid(context.Background(), component.ID, "bob", 15000)
	require.NoError(t, err)
	require.Equal(t, int64(15000), details.CurrentPrice)
	require.Equal(t, "bob", *details.HighestBidderID)
	require.Len(t, details.Bids, 2)

	// Accepted bids are strictly increasing.
	for i := 1; i < len(details.Bids); i++ {
		require.Greater(t, details.Bids[i].Amount, details.Bids[i-1].Amount)
	}
}

func TestPlaceBidTooLowMutatesNothing(t *testing.T) {
	f := newEngineFixture(t)
	component := f.seedComponent(t, "seller", 10000, nil)

	_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
	require.NoError(t, err)

	_, err = f.engine.PlaceBid(context.Background(), component.ID, "bob", 12000)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), util.FormatUSD(12000))

	details, err := f.store.GetComponentDetailsByID(context.Background(), component.ID)
	require.NoError(t, err)
	require.Equal(t, int64(12000), details.CurrentPrice)
	require.Equal(t, "alice", *details.HighestBidderID)
	require.Len(t, details.Bids, 1)
}

func TestPlaceBidRaceLostUnderLock(t *testing.T) {
	f := newEngineFixture(t)
	component := f.seedComponent(t, "seller", 10000, nil)

	// Another bid lands between the precondition read and the transaction.
	_, err := f.store.PlaceBidTx(context.Background(), db.PlaceBidTxParams{
		ComponentID: component.ID,
		BidderID:    "carol",
		Amount:      20000,
	})
	require.NoError(t, err)

	_, err = f.engine.PlaceBid(context.Background(), component.ID, "bob", 15000)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "higher bid")
}

func TestPlaceBidPreconditions(t *testing.T) {
	f := newEngineFixture(t)

	t.Run("component not found", func(t *testing.T) {
		_, err := f.engine.PlaceBid(context.Background(), uuid.New(), "alice", 1000)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("self bid forbidden regardless of amount", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.PlaceBid(context.Background(), component.ID, "seller", 12000)
		require.ErrorIs(t, err, ErrForbidden)

		// The ownership check wins over the amount check.
		_, err = f.engine.PlaceBid(context.Background(), component.ID, "seller", 1)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("sold component not biddable", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.BuyNow(context.Background(), component.ID, "buyer")
		require.NoError(t, err)

		_, err = f.engine.PlaceBid(context.Background(), component.ID, "alice", 20000)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("ended auction not biddable", func(t *testing.T) {
		past := time.Now().Add(time.Millisecond)
		component := f.seedComponent(t, "seller", 10000, &past)
		time.Sleep(5 * time.Millisecond)

		_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 20000)
		require.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestPlaceBidNotifiesDisplacedBidder(t *testing.T) {
	f := newEngineFixture(t)
	component := f.seedComponent(t, "seller", 10000, nil)

	_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
	require.NoError(t, err)
	require.Empty(t, f.distributor.notifications, "first bid displaces nobody")

	_, err = f.engine.PlaceBid(context.Background(), component.ID, "bob", 15000)
	require.NoError(t, err)
	require.Len(t, f.distributor.notifications, 1)
	require.Equal(t, "alice", f.distributor.notifications[0].RecipientID)
	require.Equal(t, string(db.NotificationTypeOutbid), f.distributor.notifications[0].Type)

	// Raising your own bid is not an outbid event.
	_, err = f.engine.PlaceBid(context.Background(), component.ID, "bob", 16000)
	require.NoError(t, err)
	require.Len(t, f.distributor.notifications, 1)
}

func TestPlaceBidBroadcastsToWatchers(t *testing.T) {
	f := newEngineFixture(t)
	component := f.seedComponent(t, "seller", 10000, nil)

	_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
	require.NoError(t, err)

	events := f.broadcaster.events[component.ID.String()]
	require.Len(t, events, 1)
	require.Contains(t, string(events[0]), `"new_bid"`)
}

func TestFirstBidSchedulesFinalize(t *testing.T) {
	f := newEngineFixture(t)
	end := time.Now().Add(time.Hour)
	component := f.seedComponent(t, "seller", 10000, &end)

	_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
	require.NoError(t, err)
	require.Len(t, f.distributor.finalizes, 1)
	require.Equal(t, component.ID, f.distributor.finalizes[0].ComponentID)

	// A second bid must not schedule another finalize.
	_, err = f.engine.PlaceBid(context.Background(), component.ID, "bob", 15000)
	require.NoError(t, err)
	require.Len(t, f.distributor.finalizes, 1)
}

func TestFirstBidWithoutEndTimeSchedulesNothing(t *testing.T) {
	f := newEngineFixture(t)
	component := f.seedComponent(t, "seller", 10000, nil)

	_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
	require.NoError(t, err)
	require.Empty(t, f.distributor.finalizes)
}

func TestBuyNow(t *testing.T) {
	f := newEngineFixture(t)

	t.Run("available component sells", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)

		sold, err := f.engine.BuyNow(context.Background(), component.ID, "buyer")
		require.NoError(t, err)
		require.Equal(t, db.ComponentStatusSold, sold.Status)
		require.Equal(t, "buyer", *sold.BuyerID)

		// Admin fan-out plus the buyer confirmation.
		require.Len(t, f.distributor.notifications, 2)
		require.True(t, f.distributor.notifications[0].AllAdmins)
		require.Equal(t, "buyer", f.distributor.notifications[1].RecipientID)
	})

	t.Run("component in auction is not purchasable", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.PlaceBid(context.Background(), component.ID, "alice", 12000)
		require.NoError(t, err)

		_, err = f.engine.BuyNow(context.Background(), component.ID, "buyer")
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("self purchase forbidden", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.BuyNow(context.Background(), component.ID, "seller")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing component", func(t *testing.T) {
		_, err := f.engine.BuyNow(context.Background(), uuid.New(), "buyer")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("sold is terminal", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.BuyNow(context.Background(), component.ID, "buyer")
		require.NoError(t, err)

		// A second purchase and a late bid both bounce off the sold state.
		_, err = f.engine.BuyNow(context.Background(), component.ID, "latecomer")
		require.ErrorIs(t, err, ErrInvalidState)

		_, err = f.engine.PlaceBid(context.Background(), component.ID, "latecomer", 99999)
		require.ErrorIs(t, err, ErrInvalidState)

		sold, err := f.store.GetComponentByID(context.Background(), component.ID)
		require.NoError(t, err)
		require.Equal(t, "buyer", *sold.BuyerID)
	})
}

func TestBuyNowSendsReceiptEmail(t *testing.T) {
	f := newEngineFixture(t)
	sender := &fakeMailer{}
	f.engine = NewEngine(f.store, f.distributor, f.inspector, f.broadcaster, sender)

	buyerEmail := util.RandomEmail()
	f.store.users["buyer"] = db.User{ID: "buyer", Name: "Buyer", Email: buyerEmail}
	component := f.seedComponent(t, "seller", 10000, nil)

	_, err := f.engine.BuyNow(context.Background(), component.ID, "buyer")
	require.NoError(t, err)

	// The receipt goes out asynchronously after the purchase commits.
	require.Eventually(t, func() bool {
		sent := sender.sentTo()
		return len(sent) == 1 && sent[0] == buyerEmail
	}, time.Second, 10*time.Millisecond)
}

func TestCreateListingValidation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateListing(ctx, "seller", CreateListingParams{
		Name:      "x",
		Condition: db.ComponentConditionUsed,
		Price:     1000,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.engine.CreateListing(ctx, "seller", CreateListingParams{
		Name:      "GeForce GTX 1080",
		Condition: "broken",
		Price:     1000,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.engine.CreateListing(ctx, "seller", CreateListingParams{
		Name:      "GeForce GTX 1080",
		Condition: db.ComponentConditionUsed,
		Price:     -1,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	past := time.Now().Add(-time.Hour)
	_, err = f.engine.CreateListing(ctx, "seller", CreateListingParams{
		Name:           "GeForce GTX 1080",
		Condition:      db.ComponentConditionUsed,
		Price:          1000,
		AuctionEndTime: &past,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	component, err := f.engine.CreateListing(ctx, "seller", CreateListingParams{
		Name:      "GeForce GTX 1080",
		Condition: db.ComponentConditionUsed,
		Price:     1000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1000), component.CurrentPrice)
	require.Equal(t, db.ComponentStatusAvailable, component.Status)
	require.NotEmpty(t, component.Slug)
}

func TestDeleteListing(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	t.Run("stranger forbidden", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.DeleteListing(ctx, "stranger", db.UserRoleMember, component.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("seller may delete", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		deleted, err := f.engine.DeleteListing(ctx, "seller", db.UserRoleMember, component.ID)
		require.NoError(t, err)
		require.Equal(t, component.ImageURL, deleted.ImageURL)

		_, err = f.store.GetComponentByID(ctx, component.ID)
		require.ErrorIs(t, err, db.ErrRecordNotFound)
	})

	t.Run("admin may delete", func(t *testing.T) {
		component := f.seedComponent(t, "seller", 10000, nil)
		_, err := f.engine.DeleteListing(ctx, "someadmin", db.UserRoleAdmin, component.ID)
		require.NoError(t, err)
	})

	t.Run("missing component", func(t *testing.T) {
		_, err := f.engine.DeleteListing(ctx, "seller", db.UserRoleMember, uuid.New())
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("pending finalize task is removed", func(t *testing.T) {
		end := time.Now().Add(time.Hour)
		component := f.seedComponent(t, "seller", 10000, &end)
		_, err := f.engine.PlaceBid(ctx, component.ID, "alice", 12000)
		require.NoError(t, err)

		_, err = f.engine.DeleteListing(ctx, "seller", db.UserRoleMember, component.ID)
		require.NoError(t, err)
		taskID := worker.FinalizeAuctionTaskID(component.ID)
		require.Contains(t, f.inspector.lookups, taskID)
		require.Contains(t, f.inspector.deleted, taskID)
	})

	t.Run("already-run finalize task is left alone", func(t *testing.T) {
		end := time.Now().Add(time.Hour)
		component := f.seedComponent(t, "seller", 10000, &end)
		_, err := f.engine.PlaceBid(ctx, component.ID, "alice", 12000)
		require.NoError(t, err)

		f.inspector.taskGone = true
		defer func() { f.inspector.taskGone = false }()

		_, err = f.engine.DeleteListing(ctx, "seller", db.UserRoleMember, component.ID)
		require.NoError(t, err)
		require.NotContains(t, f.inspector.deleted, worker.FinalizeAuctionTaskID(component.ID))
	})
}
