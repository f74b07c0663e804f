package booking

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/models"
)

// fakeBackend is an in-memory stand-in for the REST client.
type fakeBackend struct {
	mu sync.Mutex

	businesses   []models.Business
	services     map[string][]models.Service
	reviews      map[string][]models.Review
	reviewErrs   map[string]error
	shifts       map[string][]models.Shift
	workers      map[string][]models.Worker
	appointments map[string]models.Appointment
	favorites    []models.Favorite

	calls          map[string]int
	created        []models.NewAppointmentRequest
	idempotency    []string
	statusUpdates  []models.AppointmentStatus
	reschedules    []models.RescheduleRequest
	shiftsCreated  []models.ShiftInput
	shiftsUpdated  map[string]models.ShiftInput
	nextID         int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		services:      map[string][]models.Service{},
		reviews:       map[string][]models.Review{},
		reviewErrs:    map[string]error{},
		shifts:        map[string][]models.Shift{},
		workers:       map[string][]models.Worker{},
		appointments:  map[string]models.Appointment{},
		calls:         map[string]int{},
		shiftsUpdated: map[string]models.ShiftInput{},
	}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func notFound(path string) error {
	return &api.APIError{Status: 404, Message: "not found", Path: path}
}

func (f *fakeBackend) ListBusinesses(context.Context) ([]models.Business, error) {
	f.hit("ListBusinesses")
	return append([]models.Business(nil), f.businesses...), nil
}

func (f *fakeBackend) GetBusiness(_ context.Context, id string) (*models.Business, error) {
	f.hit("GetBusiness")
	for _, b := range f.businesses {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, notFound("/business/" + id)
}

func (f *fakeBackend) UpdateBusiness(_ context.Context, id string, update models.BusinessUpdate) (*models.Business, error) {
	f.hit("UpdateBusiness")
	for i := range f.businesses {
		if f.businesses[i].ID == id {
			if update.Name != nil {
				f.businesses[i].Name = *update.Name
			}
			b := f.businesses[i]
			return &b, nil
		}
	}
	return nil, notFound("/business/" + id)
}

func (f *fakeBackend) ListServices(_ context.Context, businessID string) ([]models.Service, error) {
	f.hit("ListServices")
	return f.services[businessID], nil
}

func (f *fakeBackend) CreateService(_ context.Context, in models.ServiceInput) (*models.Service, error) {
	f.hit("CreateService")
	svc := models.Service{ID: f.id("s"), BusinessID: in.BusinessID, Name: in.Name, Price: in.Price, DurationMinutes: in.DurationMinutes, IsActive: in.IsActive}
	f.services[in.BusinessID] = append(f.services[in.BusinessID], svc)
	return &svc, nil
}

func (f *fakeBackend) UpdateService(_ context.Context, id string, in models.ServiceInput) (*models.Service, error) {
	f.hit("UpdateService")
	list := f.services[in.BusinessID]
	for i := range list {
		if list[i].ID == id {
			list[i].Name, list[i].Price, list[i].DurationMinutes, list[i].IsActive = in.Name, in.Price, in.DurationMinutes, in.IsActive
			svc := list[i]
			return &svc, nil
		}
	}
	return nil, notFound("/services/" + id)
}

func (f *fakeBackend) DeleteService(_ context.Context, id string) error {
	f.hit("DeleteService")
	for bid, list := range f.services {
		for i := range list {
			if list[i].ID == id {
				f.services[bid] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return notFound("/services/" + id)
}

func (f *fakeBackend) ListReviews(_ context.Context, businessID string) ([]models.Review, error) {
	f.hit("ListReviews")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reviewErrs[businessID]; err != nil {
		return nil, err
	}
	return f.reviews[businessID], nil
}

func (f *fakeBackend) CreateReview(_ context.Context, in api.NewReview) (*models.Review, error) {
	f.hit("CreateReview")
	r := models.Review{ID: f.id("r"), BusinessID: in.BusinessID, Rating: in.Rating, Comment: in.Comment}
	f.reviews[in.BusinessID] = append(f.reviews[in.BusinessID], r)
	return &r, nil
}

func (f *fakeBackend) ListShifts(_ context.Context, businessID string) ([]models.Shift, error) {
	f.hit("ListShifts")
	return f.shifts[businessID], nil
}

func (f *fakeBackend) CreateShift(_ context.Context, in models.ShiftInput) (*models.Shift, error) {
	f.hit("CreateShift")
	f.shiftsCreated = append(f.shiftsCreated, in)
	sh := models.Shift{ID: f.id("sh"), BusinessID: in.BusinessID, DayOfWeek: in.DayOfWeek, IsActive: in.IsActive, StartTime: in.StartTime, EndTime: in.EndTime}
	f.shifts[in.BusinessID] = append(f.shifts[in.BusinessID], sh)
	return &sh, nil
}

func (f *fakeBackend) UpdateShift(_ context.Context, id string, in models.ShiftInput) (*models.Shift, error) {
	f.hit("UpdateShift")
	f.shiftsUpdated[id] = in
	sh := models.Shift{ID: id, BusinessID: in.BusinessID, DayOfWeek: in.DayOfWeek, IsActive: in.IsActive, StartTime: in.StartTime, EndTime: in.EndTime}
	return &sh, nil
}

func (f *fakeBackend) ListShiftTimes(context.Context) ([]models.ShiftTime, error) {
	f.hit("ListShiftTimes")
	return nil, nil
}

func (f *fakeBackend) ListWorkers(_ context.Context, businessID string) ([]models.Worker, error) {
	f.hit("ListWorkers")
	return f.workers[businessID], nil
}

func (f *fakeBackend) CreateWorker(_ context.Context, in models.WorkerInput) (*models.Worker, error) {
	f.hit("CreateWorker")
	w := models.Worker{ID: f.id("w"), BusinessID: in.BusinessID, Name: in.Name, IsActive: true}
	f.workers[in.BusinessID] = append(f.workers[in.BusinessID], w)
	return &w, nil
}

func (f *fakeBackend) DeleteWorker(_ context.Context, id string) error {
	f.hit("DeleteWorker")
	return nil
}

func (f *fakeBackend) CreateAppointment(_ context.Context, in models.NewAppointmentRequest, key string) (*models.Appointment, error) {
	f.hit("CreateAppointment")
	f.created = append(f.created, in)
	f.idempotency = append(f.idempotency, key)
	a := models.Appointment{ID: f.id("a"), BusinessID: in.BusinessID, TotalPrice: in.TotalPrice, Status: models.StatusPending, Services: in.Services}
	f.appointments[a.ID] = a
	return &a, nil
}

func (f *fakeBackend) MyAppointments(context.Context) ([]models.Appointment, error) {
	f.hit("MyAppointments")
	var out []models.Appointment
	for _, a := range f.appointments {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeBackend) BusinessAppointments(_ context.Context, businessID string) ([]models.Appointment, error) {
	f.hit("BusinessAppointments")
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.BusinessID == businessID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	f.hit("GetAppointment")
	a, ok := f.appointments[id]
	if !ok {
		return nil, notFound("/appointments/" + id)
	}
	return &a, nil
}

func (f *fakeBackend) UpdateAppointmentStatus(_ context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	f.hit("UpdateAppointmentStatus")
	f.statusUpdates = append(f.statusUpdates, status)
	a, ok := f.appointments[id]
	if !ok {
		return nil, notFound("/appointments/" + id)
	}
	a.Status = status
	f.appointments[id] = a
	return &a, nil
}

func (f *fakeBackend) RescheduleAppointment(_ context.Context, id string, in models.RescheduleRequest) (*models.Appointment, error) {
	f.hit("RescheduleAppointment")
	f.reschedules = append(f.reschedules, in)
	a := f.appointments[id]
	return &a, nil
}

func (f *fakeBackend) ListFavorites(context.Context) ([]models.Favorite, error) {
	f.hit("ListFavorites")
	return append([]models.Favorite(nil), f.favorites...), nil
}

func (f *fakeBackend) AddFavorite(_ context.Context, businessID string) (*models.Favorite, error) {
	f.hit("AddFavorite")
	fav := models.Favorite{ID: f.id("f"), BusinessID: businessID}
	f.favorites = append(f.favorites, fav)
	return &fav, nil
}

func (f *fakeBackend) RemoveFavorite(_ context.Context, favoriteID string) error {
	f.hit("RemoveFavorite")
	for i, fav := range f.favorites {
		if fav.ID == favoriteID {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return notFound("/favorites/" + favoriteID)
}

func (f *fakeBackend) GetProfile(context.Context) (*models.User, error) {
	f.hit("GetProfile")
	return &models.User{ID: "u1", FullName: "Ana"}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, update models.ProfileUpdate) (*models.User, error) {
	f.hit("UpdateProfile")
	u := models.User{ID: "u1"}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	return &u, nil
}
