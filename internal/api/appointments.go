package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/models"
)

// CreateAppointment posts a booking. The idempotency key lets the server
// drop a duplicate if the same booking is submitted twice.
func (c *Client) CreateAppointment(ctx context.Context, in models.NewAppointmentRequest, idempotencyKey string) (*models.Appointment, error) {
	var a models.Appointment
	r := request{method: http.MethodPost, path: "/appointments", body: in, out: &a}
	if idempotencyKey != "" {
		r.headers = http.Header{constants.IdempotencyKeyHeader: []string{idempotencyKey}}
	}
	if err := c.do(ctx, r); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) MyAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.get(ctx, "/appointments/my", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BusinessAppointments(ctx context.Context, businessID string) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.get(ctx, "/appointments/business/"+escape(businessID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := c.get(ctx, "/appointments/"+escape(id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	var a models.Appointment
	body := models.StatusUpdateRequest{Status: status}
	if err := c.send(ctx, http.MethodPatch, "/appointments/"+escape(id)+"/status", body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) RescheduleAppointment(ctx context.Context, id string, in models.RescheduleRequest) (*models.Appointment, error) {
	var a models.Appointment
	if err := c.send(ctx, http.MethodPatch, "/appointments/"+escape(id)+"/reschedule", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	var out []models.Favorite
	if err := c.get(ctx, "/favorites", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddFavorite(ctx context.Context, businessID string) (*models.Favorite, error) {
	var f models.Favorite
	body := map[string]string{"businessId": businessID}
	if err := c.send(ctx, http.MethodPost, "/favorites", body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// RemoveFavorite deletes the favorite with the given favorite id.
func (c *Client) RemoveFavorite(ctx context.Context, favoriteID string) error {
	return c.send(ctx, http.MethodDelete, "/favorites/"+escape(favoriteID), nil, nil)
}
