package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/observability"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func perform(t *testing.T, app *fiber.App, path string) (*nethttp.Response, errorEnvelope) {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test err: %v", err)
	}
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, envelope
}

func TestErrorMiddlewareMapsDomainErrors(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/closed", func(*fiber.Ctx) error {
		return apperrors.NewTicketClosed("t1")
	})

	resp, envelope := perform(t, app, "/closed")
	if resp.StatusCode != nethttp.StatusConflict {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if envelope.Error.Code != "TICKET_CLOSED" {
		t.Fatalf("code: %s", envelope.Error.Code)
	}
	if envelope.Error.Details["ticket_id"] != "t1" {
		t.Fatalf("details: %+v", envelope.Error.Details)
	}
}

func TestErrorMiddlewareWrapsUnknownErrors(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/boom", func(*fiber.Ctx) error {
		return fiber.ErrTeapot
	})

	resp, envelope := perform(t, app, "/boom")
	if resp.StatusCode != nethttp.StatusInternalServerError {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if envelope.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("code: %s", envelope.Error.Code)
	}
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/panic", func(*fiber.Ctx) error {
		panic("unexpected")
	})

	resp, envelope := perform(t, app, "/panic")
	if resp.StatusCode != nethttp.StatusInternalServerError {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if envelope.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("code: %s", envelope.Error.Code)
	}
}
