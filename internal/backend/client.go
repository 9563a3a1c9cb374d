package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/sly-barbershop/internal/observability/metrics"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

const (
	defaultBaseURL = "http://localhost:3000/api"
	defaultTimeout = 15 * time.Second

	pathServices       = "/services"
	pathBarbers        = "/barbers"
	pathAvailableSlots = "/appointments/available-slots"
	pathAppointments   = "/appointments"
	pathReservations   = "/reservas/"
)

// Client wraps the REST calls used by the booking site and the admin screen.
// No retries and no caching: every failure is returned to the caller as is.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	adminBaseURL string
	logger       *logging.Logger
	metrics      *metrics.BackendMetrics
	provider     trace.TracerProvider
	tracer       trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithAdminBaseURL points the /reservas family at a separate backend.
func WithAdminBaseURL(base string) Option {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.adminBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout sets the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. A nil Transport is
// replaced by a traced default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider traces calls with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.provider = tp
		}
	}
}

// NewClient constructs a booking API client rooted at baseURL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		provider:   otel.GetTracerProvider(),
	}
	c.adminBaseURL = c.baseURL
	for _, opt := range opts {
		opt(c)
	}
	c.tracer = c.provider.Tracer("slybarber.internal.backend")
	if c.httpClient.Transport == nil {
		c.httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(c.provider))
	}
	return c
}

type tokenKey struct{}

// WithToken attaches an admin bearer token to requests made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// ListServices returns the bookable services.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.doJSON(ctx, "list_services", http.MethodGet, c.baseURL, pathServices, nil, nil, &services); err != nil {
		return nil, err
	}
	if services == nil {
		services = []Service{}
	}
	return services, nil
}

// ListBarbers returns the staff members that take bookings.
func (c *Client) ListBarbers(ctx context.Context) ([]Barber, error) {
	var barbers []Barber
	if err := c.doJSON(ctx, "list_barbers", http.MethodGet, c.baseURL, pathBarbers, nil, nil, &barbers); err != nil {
		return nil, err
	}
	if barbers == nil {
		barbers = []Barber{}
	}
	return barbers, nil
}

// AvailableSlots returns the open time labels for a barber on a date, in server order.
func (c *Client) AvailableSlots(ctx context.Context, barberID ID, date string) ([]string, error) {
	q := url.Values{}
	q.Set("barberId", string(barberID))
	q.Set("appointmentDate", date)

	var wrapped struct {
		AvailableSlots []string `json:"availableSlots"`
	}
	if err := c.doJSON(ctx, "available_slots", http.MethodGet, c.baseURL, pathAvailableSlots, q, nil, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.AvailableSlots == nil {
		return []string{}, nil
	}
	return wrapped.AvailableSlots, nil
}

// CreateAppointment books a slot and returns the server-assigned id.
func (c *Client) CreateAppointment(ctx context.Context, req BookingRequest) (*BookingConfirmation, error) {
	var resp BookingConfirmation
	if err := c.doJSON(ctx, "create_appointment", http.MethodPost, c.baseURL, pathAppointments, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAppointments returns one filtered page plus the filtered total.
func (c *Client) ListAppointments(ctx context.Context, lq ListQuery) (*Page, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(lq.Skip))
	if lq.Limit > 0 {
		q.Set("limit", strconv.Itoa(lq.Limit))
	}
	if lq.Date != "" {
		q.Set("fecha", lq.Date)
	}
	if lq.Status != "" {
		q.Set("estado", lq.Status.wire())
	}

	var wrapped struct {
		Appointments []Appointment `json:"reservas"`
		Total        int           `json:"total"`
	}
	if err := c.doJSON(ctx, "list_appointments", http.MethodGet, c.adminBaseURL, pathReservations, q, nil, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Appointments == nil {
		wrapped.Appointments = []Appointment{}
	}
	return &Page{Appointments: wrapped.Appointments, Total: wrapped.Total}, nil
}

// GetAppointment fetches a single reservation.
func (c *Client) GetAppointment(ctx context.Context, id ID) (*Appointment, error) {
	var appt Appointment
	if err := c.doJSON(ctx, "get_appointment", http.MethodGet, c.adminBaseURL, reservationPath(id), nil, nil, &appt); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, &NotFoundError{Resource: "appointment", ID: id, Err: err}
		}
		return nil, err
	}
	return &appt, nil
}

// UpdateAppointment replaces the editable fields of a reservation.
func (c *Client) UpdateAppointment(ctx context.Context, id ID, update AppointmentUpdate) (*Appointment, error) {
	var appt Appointment
	if err := c.doJSON(ctx, "update_appointment", http.MethodPut, c.adminBaseURL, reservationPath(id), nil, update, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// CancelAppointment marks a reservation as cancelled.
func (c *Client) CancelAppointment(ctx context.Context, id ID) (*Appointment, error) {
	var appt Appointment
	if err := c.doJSON(ctx, "cancel_appointment", http.MethodPatch, c.adminBaseURL, reservationPath(id)+"/cancelar", nil, nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// DeleteAppointment removes a reservation permanently.
func (c *Client) DeleteAppointment(ctx context.Context, id ID) error {
	return c.doJSON(ctx, "delete_appointment", http.MethodDelete, c.adminBaseURL, reservationPath(id), nil, nil, nil)
}

func reservationPath(id ID) string {
	return pathReservations + url.PathEscape(string(id))
}

func (c *Client) doJSON(ctx context.Context, op, method, base, path string, query url.Values, body interface{}, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "backend."+op)
	defer span.End()

	endpoint := base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, 0, time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Warn("booking API unreachable", "operation", op, "path", path, "error", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(op, resp.StatusCode, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeErrorResponse(op, resp.StatusCode, respBody)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		c.logger.Warn("booking API non-2xx response", "operation", op, "status", resp.StatusCode, "path", path)
		return apiErr
	}

	if len(bytes.TrimSpace(respBody)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
