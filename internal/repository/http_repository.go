package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/room_desk/internal/logger"
)

const maxErrorBody = 1 << 20

// HTTPRepository is the REST client for the bookings backend.
// It does not retry and does not cache.
type HTTPRepository struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPRepository creates a gateway against baseURL, e.g. http://api:8000.
func NewHTTPRepository(baseURL string, timeout time.Duration) (*HTTPRepository, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute: %q", baseURL)
	}
	return &HTTPRepository{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (r *HTTPRepository) ListRooms(ctx context.Context, page, limit int) (Page[Room], error) {
	var out Page[Room]
	err := r.do(ctx, http.MethodGet, "/rooms/", pageQuery(page, limit), nil, &out)
	return out, err
}

func (r *HTTPRepository) GetRoom(ctx context.Context, id int) (Room, error) {
	var out Room
	err := r.do(ctx, http.MethodGet, "/rooms/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (r *HTTPRepository) CreateRoom(ctx context.Context, room RoomCreate) (Room, error) {
	var out Room
	err := r.do(ctx, http.MethodPost, "/rooms/", nil, room, &out)
	return out, err
}

func (r *HTTPRepository) UpdateRoom(ctx context.Context, id int, patch RoomUpdate) (Room, error) {
	var out Room
	err := r.do(ctx, http.MethodPatch, "/rooms/"+strconv.Itoa(id), nil, patch, &out)
	return out, err
}

func (r *HTTPRepository) DeleteRoom(ctx context.Context, id int) (Room, error) {
	var out Room
	err := r.do(ctx, http.MethodDelete, "/rooms/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (r *HTTPRepository) ListBookings(ctx context.Context, page, limit int) (Page[Booking], error) {
	var out Page[Booking]
	err := r.do(ctx, http.MethodGet, "/bookings/", pageQuery(page, limit), nil, &out)
	return out, err
}

func (r *HTTPRepository) GetBooking(ctx context.Context, id int) (Booking, error) {
	var out Booking
	err := r.do(ctx, http.MethodGet, "/bookings/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (r *HTTPRepository) CreateBooking(ctx context.Context, booking BookingCreate) (Booking, error) {
	var out Booking
	err := r.do(ctx, http.MethodPost, "/bookings/", nil, booking, &out)
	return out, err
}

func (r *HTTPRepository) UpdateBooking(ctx context.Context, id int, patch BookingUpdate) (Booking, error) {
	var out Booking
	err := r.do(ctx, http.MethodPatch, "/bookings/"+strconv.Itoa(id), nil, patch, &out)
	return out, err
}

func (r *HTTPRepository) DeleteBooking(ctx context.Context, id int) (Booking, error) {
	var out Booking
	err := r.do(ctx, http.MethodDelete, "/bookings/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

func (r *HTTPRepository) endpoint(path string, query url.Values) string {
	u := *r.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawPath = ""
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (r *HTTPRepository) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.WithComponent("gateway").Debugf("%s %s", method, req.URL.String())
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(resp.StatusCode, parseDetail(raw))
		logger.WithComponent("gateway").Debugf("%s %s failed: %v", method, path, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s %s: empty response body", method, path)
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// parseDetail reads {"detail": "..."}; for validation error lists it takes the
// first item's msg.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
