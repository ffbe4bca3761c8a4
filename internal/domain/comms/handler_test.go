package comms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *Service) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New(), svc
}

func TestHandler_SendMessage(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"sender":"Driver","receiver":"Kisumu County Referral Hospital",` +
		`"message":"ETA 10 minutes","message_type":"driver_hospital","patient_id":"PAT1A2B3C4D"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_SendMessage_UnknownType(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"sender":"Driver","receiver":"JOOTRH","message":"hi","message_type":"fax"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SendMessage(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_EmergencyAlert(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"patient_id":"PAT1A2B3C4D","ambulance_id":"KBA 453D"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SendEmergencyAlert(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Control Center") {
		t.Errorf("expected control center in recipients, got %s", rec.Body.String())
	}
}

func TestHandler_ListPatientMessages(t *testing.T) {
	h, e, svc := newTestHandler()
	if _, err := svc.EmergencyAlert(context.Background(), "PAT1A2B3C4D", "KBA 453D", "driver"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("PAT1A2B3C4D")

	if err := h.ListPatientMessages(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
