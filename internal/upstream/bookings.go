package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dormgate/internal/models"
)

func (c *Client) ListBookings(ctx context.Context, token string, page, limit int) ([]models.Booking, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/tenant/bookings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Bookings []bookingWire `json:"bookings"`
		Data     []bookingWire `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, path, token, nil, &resp, callOpts{resource: "bookings"}); err != nil {
		return nil, err
	}

	wires := resp.Bookings
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.Booking, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) GetBooking(ctx context.Context, token string, id int64) (*models.Booking, error) {
	var resp struct {
		Booking bookingWire `json:"booking"`
	}
	path := fmt.Sprintf("/tenant/bookings/%d", id)
	if err := c.call(ctx, http.MethodGet, path, token, nil, &resp, callOpts{resource: "bookings"}); err != nil {
		return nil, err
	}
	b := resp.Booking.toModel()
	return &b, nil
}

type CreateBookingRequest struct {
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
	Notes    string
}

func (c *Client) CreateBooking(ctx context.Context, token string, req CreateBookingRequest) (*models.Booking, error) {
	// Explicit field mapping to the backend's snake_case contract.
	body := map[string]any{
		"room_id":   req.RoomID,
		"check_in":  req.CheckIn.Format(time.RFC3339),
		"check_out": req.CheckOut.Format(time.RFC3339),
	}
	if req.Notes != "" {
		body["notes"] = req.Notes
	}

	var resp struct {
		Booking bookingWire `json:"booking"`
	}
	if err := c.call(ctx, http.MethodPost, "/tenant/bookings", token, body, &resp, callOpts{resource: "bookings"}); err != nil {
		return nil, err
	}
	b := resp.Booking.toModel()
	return &b, nil
}

func (c *Client) CancelBooking(ctx context.Context, token string, id int64, reason string) error {
	body := map[string]string{"reason": reason}
	path := fmt.Sprintf("/tenant/bookings/%d/cancel", id)
	return c.call(ctx, http.MethodPost, path, token, body, nil, callOpts{resource: "bookings"})
}

// FetchAgreementTemplate downloads the rental agreement PDF template.
func (c *Client) FetchAgreementTemplate(ctx context.Context, token string) ([]byte, string, error) {
	return c.download(ctx, "/tenant/agreement-template", token, "agreement")
}
