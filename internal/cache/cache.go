package cache

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/julianstephens/bookly/internal/config"
	"github.com/julianstephens/bookly/internal/constants"
)

// Kind groups keys that are invalidated together.
type Kind string

const (
	KindBusiness             Kind = "business"
	KindBusinessList         Kind = "businesses"
	KindServices             Kind = "services"
	KindReviews              Kind = "reviews"
	KindShifts               Kind = "shifts"
	KindShiftTimes           Kind = "shift-times"
	KindWorkers              Kind = "workers"
	KindAppointments         Kind = "appointments"
	KindBusinessAppointments Kind = "business-appointments"
	KindFavorites            Kind = "favorites"
	KindProfile              Kind = "profile"
)

// Kinds lists every kind, for callers that wipe per-user data.
var Kinds = []Kind{
	KindBusiness, KindBusinessList, KindServices, KindReviews, KindShifts, KindShiftTimes,
	KindWorkers, KindAppointments, KindBusinessAppointments, KindFavorites, KindProfile,
}

// UserKinds hold results that belong to one signed-in user. Their keys carry
// the user's ID as Owner.
var UserKinds = []Kind{KindAppointments, KindBusinessAppointments, KindFavorites, KindProfile}

// Key identifies one cached query result.
type Key struct {
	Kind  Kind
	ID    string
	Owner string
}

// String renders kind[@owner][:id]. The owner is query-escaped so it can
// never contain the separators or a glob metacharacter.
func (k Key) String() string {
	s := string(k.Kind)
	if k.Owner != "" {
		s += "@" + url.QueryEscape(k.Owner)
	}
	if k.ID != "" {
		s += ":" + k.ID
	}
	return s
}

// PerUser reports whether the key's kind is scoped to a single user.
func (k Key) PerUser() bool {
	return slices.Contains(UserKinds, k.Kind)
}

func BusinessKey(id string) Key         { return Key{Kind: KindBusiness, ID: id} }
func BusinessListKey() Key              { return Key{Kind: KindBusinessList} }
func ServicesKey(businessID string) Key { return Key{Kind: KindServices, ID: businessID} }
func ReviewsKey(businessID string) Key  { return Key{Kind: KindReviews, ID: businessID} }
func ShiftsKey(businessID string) Key   { return Key{Kind: KindShifts, ID: businessID} }
func ShiftTimesKey() Key                { return Key{Kind: KindShiftTimes} }
func WorkersKey(businessID string) Key  { return Key{Kind: KindWorkers, ID: businessID} }
func AppointmentsKey(userID string) Key { return Key{Kind: KindAppointments, Owner: userID} }
func FavoritesKey(userID string) Key    { return Key{Kind: KindFavorites, Owner: userID} }
func ProfileKey(userID string) Key      { return Key{Kind: KindProfile, Owner: userID} }

func BusinessAppointmentsKey(userID, businessID string) Key {
	return Key{Kind: KindBusinessAppointments, ID: businessID, Owner: userID}
}

// Cache stores JSON-encoded query results. Expired entries are misses.
type Cache interface {
	// Get decodes the entry for key into dst and reports whether it was found.
	Get(ctx context.Context, key Key, dst any) (bool, error)
	Set(ctx context.Context, key Key, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...Key) error
	DeleteKind(ctx context.Context, kinds ...Kind) error
	// DeleteOwner removes every entry cached for one user.
	DeleteOwner(ctx context.Context, owner string) error
	Clear(ctx context.Context) error
	Close() error
}

// Checker is implemented by backends that can report their own health.
type Checker interface {
	Check(ctx context.Context) error
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (Cache, error) {
	switch cfg.CacheBackend {
	case constants.CacheBackendSQLite:
		return OpenSQLite(ctx, cfg.CachePath)
	case constants.CacheBackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
