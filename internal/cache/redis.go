package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airbooking-modify/config"
	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client        *redis.Client
	faresTTL      time.Duration
	bookingsTTL   time.Duration
	draftTTL      time.Duration
	processingTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl config.ModificationConfig) *RedisCache {
	return &RedisCache{
		client:        redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		faresTTL:      ttl.FaresCacheTTL,
		bookingsTTL:   ttl.BookingViewTTL,
		draftTTL:      ttl.DraftTTL,
		processingTTL: ttl.ProcessingTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFares returns nil, nil on a cache miss.
func (c *RedisCache) GetFares(ctx context.Context, origin, destination string) ([]domain.Fare, error) {
	var fares []domain.Fare
	ok, err := c.getJSON(ctx, faresKey(origin, destination), &fares)
	if err != nil || !ok {
		return nil, err
	}
	return fares, nil
}

func (c *RedisCache) SetFares(ctx context.Context, origin, destination string, fares []domain.Fare) error {
	return c.setJSON(ctx, faresKey(origin, destination), fares, c.faresTTL)
}

// GetBookings returns the cached booking list of a user, nil, nil on a miss.
func (c *RedisCache) GetBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	ok, err := c.getJSON(ctx, bookingsKey(userID), &bookings)
	if err != nil || !ok {
		return nil, err
	}
	return bookings, nil
}

func (c *RedisCache) SetBookings(ctx context.Context, userID string, bookings []domain.Booking) error {
	return c.setJSON(ctx, bookingsKey(userID), bookings, c.bookingsTTL)
}

// PutBooking replaces b in its owner's cached list. A list that does not hold
// b is dropped so the next read reloads it.
func (c *RedisCache) PutBooking(ctx context.Context, b domain.Booking) error {
	bookings, err := c.GetBookings(ctx, b.UserID)
	if err != nil || bookings == nil {
		return err
	}
	for i := range bookings {
		if bookings[i].ID == b.ID {
			bookings[i] = b
			return c.SetBookings(ctx, b.UserID, bookings)
		}
	}
	return c.InvalidateBookings(ctx, b.UserID)
}

func (c *RedisCache) InvalidateBookings(ctx context.Context, userID string) error {
	return c.client.Del(ctx, bookingsKey(userID)).Err()
}

// GetDraft returns the open draft of a booking, nil, nil when there is none.
func (c *RedisCache) GetDraft(ctx context.Context, bookingID string) (*domain.Draft, error) {
	var d domain.Draft
	ok, err := c.getJSON(ctx, draftKey(bookingID), &d)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

// SaveDraft stores the draft and restarts its TTL.
func (c *RedisCache) SaveDraft(ctx context.Context, d *domain.Draft) error {
	return c.setJSON(ctx, draftKey(d.BookingID), d, c.draftTTL)
}

func (c *RedisCache) DeleteDraft(ctx context.Context, bookingID string) error {
	return c.client.Del(ctx, draftKey(bookingID)).Err()
}

// AcquireProcessing takes the per-booking submission guard. It reports false
// when another submission already holds it.
func (c *RedisCache) AcquireProcessing(ctx context.Context, bookingID string) (bool, error) {
	return c.client.SetNX(ctx, processingKey(bookingID), "processing", c.processingTTL).Result()
}

func (c *RedisCache) ReleaseProcessing(ctx context.Context, bookingID string) error {
	return c.client.Del(ctx, processingKey(bookingID)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func faresKey(origin, destination string) string {
	return fmt.Sprintf("cache:fares:%s:%s", strings.ToLower(origin), strings.ToLower(destination))
}

func bookingsKey(userID string) string {
	return fmt.Sprintf("cache:bookings:user:%s", userID)
}

func draftKey(bookingID string) string {
	return fmt.Sprintf("draft:booking:%s", bookingID)
}

func processingKey(bookingID string) string {
	return fmt.Sprintf("lock:booking:%s:processing", bookingID)
}
