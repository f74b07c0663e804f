package booking

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/logger"
	"github.com/julianstephens/bookly/internal/models"
)

// ListBusinesses returns every business with its rating filled in from the
// reviews endpoint. Reviews are fetched concurrently; a business whose
// reviews cannot be loaded keeps a rating of 0. Only an auth failure aborts
// the whole list.
func (s *Service) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	list, err := cached(ctx, s, cache.BusinessListKey(), func() ([]models.Business, error) {
		return s.backend.ListBusinesses(ctx)
	})
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.ReviewFetchConcurrency)
	for i := range list {
		g.Go(func() error {
			reviews, err := s.Reviews(gctx, list[i].ID)
			if err != nil {
				if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoSession) {
					return err
				}
				logger.Warn("Failed to load reviews", "business", list[i].ID, "error", err)
				return nil
			}
			list[i].Rating, list[i].ReviewCount = models.AverageRating(reviews)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return list, nil
}

// Business returns one business with its rating. A failed review fetch
// leaves the rating at 0.
func (s *Service) Business(ctx context.Context, id string) (*models.Business, error) {
	b, err := cached(ctx, s, cache.BusinessKey(id), func() (*models.Business, error) {
		return s.backend.GetBusiness(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if reviews, err := s.Reviews(ctx, id); err == nil {
		b.Rating, b.ReviewCount = models.AverageRating(reviews)
	} else {
		logger.Warn("Failed to load reviews", "business", id, "error", err)
	}
	return b, nil
}

func (s *Service) UpdateBusiness(ctx context.Context, id string, update models.BusinessUpdate) (*models.Business, error) {
	b, err := s.backend.UpdateBusiness(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.BusinessKey(id), cache.BusinessListKey())
	return b, nil
}

func (s *Service) Services(ctx context.Context, businessID string) ([]models.Service, error) {
	return cached(ctx, s, cache.ServicesKey(businessID), func() ([]models.Service, error) {
		return s.backend.ListServices(ctx, businessID)
	})
}

// ActiveServices filters Services to the ones that can be booked.
func (s *Service) ActiveServices(ctx context.Context, businessID string) ([]models.Service, error) {
	all, err := s.Services(ctx, businessID)
	if err != nil {
		return nil, err
	}
	active := make([]models.Service, 0, len(all))
	for _, svc := range all {
		if svc.IsActive {
			active = append(active, svc)
		}
	}
	return active, nil
}

func (s *Service) Reviews(ctx context.Context, businessID string) ([]models.Review, error) {
	return cached(ctx, s, cache.ReviewsKey(businessID), func() ([]models.Review, error) {
		return s.backend.ListReviews(ctx, businessID)
	})
}

func (s *Service) AddReview(ctx context.Context, businessID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	r, err := s.backend.CreateReview(ctx, api.NewReview{BusinessID: businessID, Rating: rating, Comment: comment})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.ReviewsKey(businessID))
	return r, nil
}

func (s *Service) Workers(ctx context.Context, businessID string) ([]models.Worker, error) {
	return cached(ctx, s, cache.WorkersKey(businessID), func() ([]models.Worker, error) {
		return s.backend.ListWorkers(ctx, businessID)
	})
}

func (s *Service) Shifts(ctx context.Context, businessID string) ([]models.Shift, error) {
	return cached(ctx, s, cache.ShiftsKey(businessID), func() ([]models.Shift, error) {
		return s.backend.ListShifts(ctx, businessID)
	})
}

func (s *Service) ShiftTimes(ctx context.Context) ([]models.ShiftTime, error) {
	return cached(ctx, s, cache.ShiftTimesKey(), func() ([]models.ShiftTime, error) {
		return s.backend.ListShiftTimes(ctx)
	})
}

func (s *Service) Favorites(ctx context.Context) ([]models.Favorite, error) {
	return cached(ctx, s, cache.FavoritesKey(s.owner()), func() ([]models.Favorite, error) {
		return s.backend.ListFavorites(ctx)
	})
}

// ToggleFavorite adds the business to the user's favorites, or removes it
// when it is already there. It reports whether the business is now a favorite.
func (s *Service) ToggleFavorite(ctx context.Context, businessID string) (bool, error) {
	favs, err := s.backend.ListFavorites(ctx)
	if err != nil {
		return false, err
	}
	defer s.invalidate(ctx, cache.FavoritesKey(s.owner()))

	for _, f := range favs {
		if f.BusinessID == businessID {
			return false, s.backend.RemoveFavorite(ctx, f.ID)
		}
	}
	if _, err := s.backend.AddFavorite(ctx, businessID); err != nil {
		return false, err
	}
	return true, nil
}

// SetFavorite makes the business a favorite or not, whatever its current
// state. It reports whether anything changed.
func (s *Service) SetFavorite(ctx context.Context, businessID string, favorite bool) (bool, error) {
	favs, err := s.backend.ListFavorites(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.BusinessID != businessID {
			continue
		}
		if favorite {
			return false, nil
		}
		if err := s.backend.RemoveFavorite(ctx, f.ID); err != nil {
			return false, err
		}
		s.invalidate(ctx, cache.FavoritesKey(s.owner()))
		return true, nil
	}
	if !favorite {
		return false, nil
	}
	if _, err := s.backend.AddFavorite(ctx, businessID); err != nil {
		return false, err
	}
	s.invalidate(ctx, cache.FavoritesKey(s.owner()))
	return true, nil
}

func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	return cached(ctx, s, cache.ProfileKey(s.owner()), func() (*models.User, error) {
		return s.backend.GetProfile(ctx)
	})
}

func (s *Service) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	u, err := s.backend.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.ProfileKey(s.owner()))
	return u, nil
}
