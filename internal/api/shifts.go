package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/bookly/internal/models"
)

func (c *Client) ListShifts(ctx context.Context, businessID string) ([]models.Shift, error) {
	var out []models.Shift
	if err := c.get(ctx, "/business-shifts/business/"+escape(businessID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateShift(ctx context.Context, in models.ShiftInput) (*models.Shift, error) {
	var s models.Shift
	if err := c.send(ctx, http.MethodPost, "/business-shifts", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateShift(ctx context.Context, id string, in models.ShiftInput) (*models.Shift, error) {
	var s models.Shift
	if err := c.send(ctx, http.MethodPut, "/business-shifts/"+escape(id), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListShiftTimes(ctx context.Context) ([]models.ShiftTime, error) {
	var out []models.ShiftTime
	if err := c.get(ctx, "/shift-times", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateShiftTime(ctx context.Context, start, end string) (*models.ShiftTime, error) {
	var st models.ShiftTime
	body := models.ShiftTime{StartTime: start, EndTime: end}
	if err := c.send(ctx, http.MethodPost, "/shift-times", body, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
