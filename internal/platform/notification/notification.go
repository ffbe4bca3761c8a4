// Package notification delivers referral system notifications with template
// rendering, in-memory storage, retry logic, and Echo HTTP handlers.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/platform/metrics"
)

// ---------------------------------------------------------------------------
// Notification Kinds
// ---------------------------------------------------------------------------

// Kind classifies a notification by the event that produced it.
type Kind string

const (
	KindReferral  Kind = "referral"
	KindDispatch  Kind = "dispatch"
	KindArrival   Kind = "arrival"
	KindEmergency Kind = "emergency"
)

// SubjectFor maps a notification kind to its subject line.
func SubjectFor(kind Kind) string {
	switch kind {
	case KindReferral:
		return "New Patient Referral"
	case KindDispatch:
		return "Ambulance Dispatched"
	case KindArrival:
		return "Patient Arrival Notification"
	default:
		return "Hospital Referral System Notification"
	}
}

// ---------------------------------------------------------------------------
// Notification
// ---------------------------------------------------------------------------

// Notification represents a single outbound notification.
type Notification struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// Sender Interface
// ---------------------------------------------------------------------------

// Sender delivers a notification to its recipient.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// LogSender writes notifications to the structured log. It stands in for an
// SMS or email gateway in deployments that have none configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification.
func (s *LogSender) Send(_ context.Context, n *Notification) error {
	s.logger.Info().
		Str("kind", string(n.Kind)).
		Str("recipient", n.Recipient).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("notification")
	return nil
}

// ---------------------------------------------------------------------------
// Template Engine
// ---------------------------------------------------------------------------

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    Kind   `json:"kind"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "referral-created",
			Name:    "Referral Created",
			Subject: "New Patient Referral",
			Body:    "New referral for {{patient_name}} from {{referring_hospital}} to {{receiving_hospital}}. Condition: {{condition}}.",
			Kind:    KindReferral,
		},
		{
			ID:      "ambulance-dispatched",
			Name:    "Ambulance Dispatched",
			Subject: "Ambulance Dispatched",
			Body:    "Ambulance {{ambulance_id}} with driver {{driver}} has been dispatched for {{patient_name}}. Estimated arrival in {{eta}} minutes.",
			Kind:    KindDispatch,
		},
		{
			ID:      "patient-arrival",
			Name:    "Patient Arrival",
			Subject: "Patient Arrival Notification",
			Body:    "Patient {{patient_name}} has arrived at {{receiving_hospital}} and is ready for handover.",
			Kind:    KindArrival,
		},
		{
			ID:      "emergency-alert",
			Name:    "Emergency Alert",
			Subject: "Hospital Referral System Notification",
			Body:    "EMERGENCY ALERT: {{message}} Patient {{patient_id}}, ambulance {{ambulance_id}}.",
			Kind:    KindEmergency,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

func (e *TemplateEngine) kindOf(templateID string) Kind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Kind
	}
	return ""
}

// ---------------------------------------------------------------------------
// Mock Sender (test double)
// ---------------------------------------------------------------------------

// SendCall records a single call to Send.
type SendCall struct {
	Recipient string
	Subject   string
	Body      string
	Kind      Kind
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{Recipient: n.Recipient, Subject: n.Subject, Body: n.Body, Kind: n.Kind})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

// Notifier orchestrates sending, storage, and retrieval of notifications.
type Notifier struct {
	sender        Sender
	templates     *TemplateEngine
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewNotifier constructs a Notifier.
func NewNotifier(sender Sender, tpl *TemplateEngine) *Notifier {
	return &Notifier{
		sender:        sender,
		templates:     tpl,
		notifications: make(map[string]*Notification),
	}
}

// Send dispatches a notification, assigns an ID and timestamps, and persists
// the result in-memory.
func (m *Notifier) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Subject == "" {
		n.Subject = SubjectFor(n.Kind)
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.Status = "pending"

	sendErr := m.sender.Send(ctx, n)
	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		metrics.NotificationsSentTotal.WithLabelValues(string(n.Kind)).Inc()
	}

	m.mu.Lock()
	m.notifications[n.ID] = n
	m.mu.Unlock()

	return sendErr
}

// Notify builds a notification of the given kind and sends it. The subject
// is derived from the kind. It reports whether delivery succeeded; referral
// flow never blocks on a failed notification.
func (m *Notifier) Notify(ctx context.Context, recipient, message string, kind Kind) bool {
	n := &Notification{
		Kind:      kind,
		Recipient: recipient,
		Subject:   SubjectFor(kind),
		Body:      message,
	}
	return m.Send(ctx, n) == nil
}

// SendFromTemplate renders a template and sends the resulting notification.
func (m *Notifier) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Kind:      m.templates.kindOf(templateID),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}

	if err := m.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a notification by ID.
func (m *Notifier) Get(_ context.Context, id string) (*Notification, error) {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns notifications for a given recipient, up to limit.
func (m *Notifier) ListByRecipient(_ context.Context, recipient string, limit int) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Retry re-sends a failed notification. Returns an error if the notification
// is not in "failed" status.
func (m *Notifier) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != "failed" {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}

	sendErr := m.sender.Send(ctx, n)

	m.mu.Lock()
	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
		metrics.NotificationsSentTotal.WithLabelValues(string(n.Kind)).Inc()
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns notification counts grouped by status and by kind.
func (m *Notifier) Stats(_ context.Context) map[string]map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byStatus := make(map[string]int)
	byKind := make(map[string]int)
	for _, n := range m.notifications {
		byStatus[n.Status]++
		byKind[string(n.Kind)]++
	}
	return map[string]map[string]int{
		"by_status": byStatus,
		"by_kind":   byKind,
	}
}

// ---------------------------------------------------------------------------
// HTTP Handler
// ---------------------------------------------------------------------------

// Handler exposes notification operations over HTTP via Echo.
type Handler struct {
	notifier *Notifier
}

// NewHandler creates a new Handler.
func NewHandler(n *Notifier) *Handler {
	return &Handler{notifier: n}
}

// RegisterRoutes registers all notification routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/notifications/send", h.HandleSend)
	g.POST("/notifications/send-template", h.HandleSendTemplate)
	g.GET("/notifications/stats", h.HandleStats)
	g.GET("/notifications/:id", h.HandleGet)
	g.GET("/notifications", h.HandleList)
	g.POST("/notifications/:id/retry", h.HandleRetry)
}

// sendRequest is the JSON body for POST /notifications/send.
type sendRequest struct {
	Kind      Kind   `json:"kind"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// HandleSend handles POST /notifications/send.
func (h *Handler) HandleSend(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	n := &Notification{
		Kind:      req.Kind,
		Recipient: req.Recipient,
		Body:      req.Message,
	}

	// Return the notification even on a failed send so the caller can see
	// the ID and error.
	_ = h.notifier.Send(c.Request().Context(), n)
	return c.JSON(http.StatusCreated, n)
}

// sendTemplateRequest is the JSON body for POST /notifications/send-template.
type sendTemplateRequest struct {
	TemplateID string            `json:"template_id"`
	Recipient  string            `json:"recipient"`
	Data       map[string]string `json:"data"`
}

// HandleSendTemplate handles POST /notifications/send-template.
func (h *Handler) HandleSendTemplate(c echo.Context) error {
	var req sendTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	n, err := h.notifier.SendFromTemplate(c.Request().Context(), req.TemplateID, req.Data, req.Recipient)
	if err != nil && n == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, n)
}

// HandleGet handles GET /notifications/:id.
func (h *Handler) HandleGet(c echo.Context) error {
	id := c.Param("id")
	n, err := h.notifier.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, n)
}

// HandleList handles GET /notifications?recipient=...
func (h *Handler) HandleList(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient query parameter is required"})
	}

	list, err := h.notifier.ListByRecipient(c.Request().Context(), recipient, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

// HandleRetry handles POST /notifications/:id/retry.
func (h *Handler) HandleRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.notifier.Retry(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	n, _ := h.notifier.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

// HandleStats handles GET /notifications/stats.
func (h *Handler) HandleStats(c echo.Context) error {
	stats := h.notifier.Stats(c.Request().Context())
	return c.JSON(http.StatusOK, stats)
}
