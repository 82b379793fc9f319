package middleware

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docrepo/internal/access"
	"docrepo/internal/model"
	serviceMocks "docrepo/internal/service/mocks"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})
}

func TestAuthenticated(t *testing.T) {
	newApp := func(mockAuth *serviceMocks.MockAuthService) *fiber.App {
		app := fiber.New()
		app.Get("/protected", Authenticated(mockAuth), func(c *fiber.Ctx) error {
			p, ok := PrincipalFromCtx(c)
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.SendString(p.ID)
		})
		return app
	}

	t.Run("valid token stores principal", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)
		mockAuth.On("ResolvePrincipal", mock.Anything, "good-token").
			Return(access.Principal{ID: "user-1", Role: model.RoleMember, IsActive: true}, &model.User{ID: "user-1"}, nil)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")
		resp, _ := newApp(mockAuth).Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, "user-1", buf.String())
		mockAuth.AssertExpectations(t)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)

		req := httptest.NewRequest("GET", "/protected", nil)
		resp, _ := newApp(mockAuth).Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		mockAuth.AssertNotCalled(t, "ResolvePrincipal")
	})

	t.Run("non-bearer scheme rejected", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Basic dXNlcjpwYXNz")
		resp, _ := newApp(mockAuth).Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejected token", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)
		mockAuth.On("ResolvePrincipal", mock.Anything, "bad-token").
			Return(access.Principal{}, nil, errors.New("invalid token"))

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer bad-token")
		resp, _ := newApp(mockAuth).Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
