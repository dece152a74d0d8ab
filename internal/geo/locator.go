package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shopGeoKey = "shops:geo"

// ShopStore is the slice of the database the locator needs.
type ShopStore interface {
	ListShops(ctx context.Context) ([]db.Shop, error)
}

// NearbyShop pairs a shop ID with its distance from the search point.
type NearbyShop struct {
	ShopID     uuid.UUID
	DistanceKm float64
}

// Locator maintains a Redis geospatial index of recycling shops and answers
// radius queries against it. Postgres stays the source of truth; the index
// is rebuilt periodically and on every shop write.
type Locator struct {
	rdb   *redis.Client
	store ShopStore
}

func NewLocator(rdb *redis.Client, store ShopStore) *Locator {
	return &Locator{rdb: rdb, store: store}
}

// Index adds or updates a single shop in the geo index.
func (l *Locator) Index(ctx context.Context, shop db.Shop) error {
	err := l.rdb.GeoAdd(ctx, shopGeoKey, &redis.GeoLocation{
		Name:      shop.ID.String(),
		Longitude: shop.Longitude,
		Latitude:  shop.Latitude,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index shop %s: %w", shop.ID, err)
	}

	return nil
}

// Remove drops a shop from the geo index.
func (l *Locator) Remove(ctx context.Context, shopID uuid.UUID) error {
	return l.rdb.ZRem(ctx, shopGeoKey, shopID.String()).Err()
}

// Nearby returns shop IDs within radiusKm of the given point, closest first.
func (l *Locator) Nearby(ctx context.Context, latitude, longitude, radiusKm float64, limit int) ([]NearbyShop, error) {
	locations, err := l.rdb.GeoSearchLocation(ctx, shopGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  longitude,
			Latitude:   latitude,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}

	shops := make([]NearbyShop, 0, len(locations))
	for _, loc := range locations {
		id, err := uuid.Parse(loc.Name)
		if err != nil {
			// Stale or foreign member in the index; skip it.
			log.Warn().Str("member", loc.Name).Msg("invalid shop ID in geo index")
			continue
		}
		shops = append(shops, NearbyShop{ShopID: id, DistanceKm: loc.Dist})
	}

	return shops, nil
}

// ReindexAll rebuilds the geo index from Postgres.
func (l *Locator) ReindexAll(ctx context.Context) error {
	shops, err := l.store.ListShops(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shops: %w", err)
	}

	locations := make([]*redis.GeoLocation, 0, len(shops))
	for _, shop := range shops {
		locations = append(locations, &redis.GeoLocation{
			Name:      shop.ID.String(),
			Longitude: shop.Longitude,
			Latitude:  shop.Latitude,
		})
	}

	pipe := l.rdb.TxPipeline()
	pipe.Del(ctx, shopGeoKey)
	if len(locations) > 0 {
		pipe.GeoAdd(ctx, shopGeoKey, locations...)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild geo index: %w", err)
	}

	log.Info().Int("shops", len(locations)).Msg("shop geo index rebuilt")
	return nil
}

// StartReindexer runs ReindexAll once immediately, then on the given
// interval until the scheduler is shut down.
func (l *Locator) StartReindexer(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := l.ReindexAll(ctx); err != nil {
				log.Err(err).Msg("scheduled shop reindex failed")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reindex job: %w", err)
	}

	scheduler.Start()
	return scheduler, nil
}
