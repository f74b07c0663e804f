package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/bookly/internal/models"
)

func (c *Client) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	var out []models.Business
	if err := c.get(ctx, "/business", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	var b models.Business
	if err := c.get(ctx, "/business/"+escape(id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBusiness(ctx context.Context, id string, update models.BusinessUpdate) (*models.Business, error) {
	var b models.Business
	if err := c.send(ctx, http.MethodPut, "/business/"+escape(id), update, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ListServices(ctx context.Context, businessID string) ([]models.Service, error) {
	var out []models.Service
	if err := c.get(ctx, "/services/business/"+escape(businessID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateService(ctx context.Context, in models.ServiceInput) (*models.Service, error) {
	var s models.Service
	if err := c.send(ctx, http.MethodPost, "/services", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateService(ctx context.Context, id string, in models.ServiceInput) (*models.Service, error) {
	var s models.Service
	if err := c.send(ctx, http.MethodPut, "/services/"+escape(id), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/services/"+escape(id), nil, nil)
}

func (c *Client) ListReviews(ctx context.Context, businessID string) ([]models.Review, error) {
	var out []models.Review
	if err := c.get(ctx, "/reviews/business/"+escape(businessID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

type NewReview struct {
	BusinessID string `json:"businessId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

func (c *Client) CreateReview(ctx context.Context, in NewReview) (*models.Review, error) {
	var r models.Review
	if err := c.send(ctx, http.MethodPost, "/reviews", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListWorkers(ctx context.Context, businessID string) ([]models.Worker, error) {
	var out []models.Worker
	if err := c.get(ctx, "/workers/business/"+escape(businessID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateWorker(ctx context.Context, in models.WorkerInput) (*models.Worker, error) {
	var w models.Worker
	if err := c.send(ctx, http.MethodPost, "/workers", in, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) DeleteWorker(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/workers/"+escape(id), nil, nil)
}
