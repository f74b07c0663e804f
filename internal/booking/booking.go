package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/logger"
	"github.com/julianstephens/bookly/internal/models"
)

var (
	ErrNoServices     = errors.New("select at least one service")
	ErrUnknownService = errors.New("service is not offered by this business")
	ErrInvalidStatus  = errors.New("invalid appointment status")
)

// Backend is the subset of the REST client the booking flows use.
type Backend interface {
	ListBusinesses(ctx context.Context) ([]models.Business, error)
	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	UpdateBusiness(ctx context.Context, id string, update models.BusinessUpdate) (*models.Business, error)

	ListServices(ctx context.Context, businessID string) ([]models.Service, error)
	CreateService(ctx context.Context, in models.ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, id string, in models.ServiceInput) (*models.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListReviews(ctx context.Context, businessID string) ([]models.Review, error)
	CreateReview(ctx context.Context, in api.NewReview) (*models.Review, error)

	ListShifts(ctx context.Context, businessID string) ([]models.Shift, error)
	CreateShift(ctx context.Context, in models.ShiftInput) (*models.Shift, error)
	UpdateShift(ctx context.Context, id string, in models.ShiftInput) (*models.Shift, error)
	ListShiftTimes(ctx context.Context) ([]models.ShiftTime, error)

	ListWorkers(ctx context.Context, businessID string) ([]models.Worker, error)
	CreateWorker(ctx context.Context, in models.WorkerInput) (*models.Worker, error)
	DeleteWorker(ctx context.Context, id string) error

	CreateAppointment(ctx context.Context, in models.NewAppointmentRequest, idempotencyKey string) (*models.Appointment, error)
	MyAppointments(ctx context.Context) ([]models.Appointment, error)
	BusinessAppointments(ctx context.Context, businessID string) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, id string, in models.RescheduleRequest) (*models.Appointment, error)

	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, businessID string) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, favoriteID string) error

	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
}

// Viewer names the signed-in user. Per-user results are cached under that
// user's ID and are not cached at all while nobody is signed in.
type Viewer interface {
	User() (models.User, error)
}

type Options struct {
	TTL       time.Duration
	Location  *time.Location
	WeekStart time.Weekday
	Viewer    Viewer
}

// Service composes backend calls, the query cache and the availability
// rules into the flows the CLI and TUI drive.
type Service struct {
	backend   Backend
	cache     cache.Cache
	ttl       time.Duration
	loc       *time.Location
	weekStart time.Weekday
	viewer    Viewer
	now       func() time.Time
	newKey    func() string
}

func New(backend Backend, c cache.Cache, opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		backend:   backend,
		cache:     c,
		ttl:       ttl,
		loc:       loc,
		weekStart: opts.WeekStart,
		viewer:    opts.Viewer,
		now:       time.Now,
		newKey:    uuid.NewString,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) WeekStart() time.Weekday {
	return s.weekStart
}

// Now is the current instant in the configured timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// owner is the signed-in user's ID, or "" when nobody is.
func (s *Service) owner() string {
	if s.viewer == nil {
		return ""
	}
	u, err := s.viewer.User()
	if err != nil {
		return ""
	}
	return u.ID
}

// cached serves key from the cache or stores the result of fetch under it.
// Cache failures degrade to a direct fetch.
func cached[T any](ctx context.Context, s *Service, key cache.Key, fetch func() (T, error)) (T, error) {
	if key.PerUser() && key.Owner == "" {
		return fetch()
	}

	var v T
	ok, err := s.cache.Get(ctx, key, &v)
	if err != nil {
		logger.Warn("Cache read failed", "key", key.String(), "error", err)
	}
	if ok {
		return v, nil
	}

	v, err = fetch()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		logger.Warn("Cache write failed", "key", key.String(), "error", err)
	}
	return v, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...cache.Key) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate cache", "error", err)
	}
}

func (s *Service) invalidateKind(ctx context.Context, kinds ...cache.Kind) {
	if err := s.cache.DeleteKind(ctx, kinds...); err != nil {
		logger.Warn("Failed to invalidate cache", "error", err)
	}
}
