package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cmsapi/internal/filter"
	"cmsapi/internal/model"
	"cmsapi/internal/repository"
	"cmsapi/internal/schema"
	"cmsapi/internal/service"
	serviceMocks "cmsapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("wrapped: %w", repository.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{errInvalidID, http.StatusBadRequest, "INVALID_ID"},
		{service.ErrIDRequired, http.StatusBadRequest, "INVALID_ID"},
		{fmt.Errorf("%w: bad", filter.ErrInvalidFilter), http.StatusBadRequest, "INVALID_FILTER"},
		{fmt.Errorf("%w: seller.color", schema.ErrUnknownField), http.StatusBadRequest, "UNKNOWN_FIELD"},
		{fmt.Errorf("x: %w", schema.ErrInvalidRelation), http.StatusBadRequest, "INVALID_RELATION"},
		{errInvalidBody, http.StatusBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("%w: cannot decode", repository.ErrInvalidData), http.StatusBadRequest, "BAD_REQUEST"},
		{fiber.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{fiber.ErrConflict, http.StatusConflict, "REQUEST_ERROR"},
		{fiber.ErrBadGateway, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code, _ := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: password authentication failed")
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "password")
	assert.Contains(t, string(body), "INTERNAL_ERROR")
}

type routedApp struct {
	app     *fiber.App
	sellers *serviceMocks.MockResourceService[model.Seller]
	uploads *serviceMocks.MockUploadService
}

func newRoutedApp(t *testing.T, withUploads bool) routedApp {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := routedApp{
		app:     fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)}),
		sellers: new(serviceMocks.MockResourceService[model.Seller]),
	}
	svcs := Services{
		Customers: new(serviceMocks.MockResourceService[model.Customer]),
		Sellers:   r.sellers,
		Types:     new(serviceMocks.MockResourceService[model.Type]),
	}
	if withUploads {
		r.uploads = new(serviceMocks.MockUploadService)
		svcs.Uploads = r.uploads
	}
	RegisterRoutes(r.app, db, prometheus.NewRegistry(), svcs)
	return r
}

func TestFind(t *testing.T) {
	t.Run("fetch all with every query value", func(t *testing.T) {
		r := newRoutedApp(t, false)
		r.sellers.On("FetchAll", mock.Anything, filter.Params{
			"verified": {"true"},
			"id_in":    {"1", "2"},
		}).Return([]model.Seller{{ID: 1, Name: "Acme"}}, nil).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers?verified=true&id_in=1&id_in=2", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.Len(t, out, 1)
		assert.Equal(t, "Acme", out[0]["name"])
		r.sellers.AssertExpectations(t)
	})

	t.Run("non-empty _q searches", func(t *testing.T) {
		r := newRoutedApp(t, false)
		r.sellers.On("Search", mock.Anything, filter.Params{"_q": {"acme"}}).
			Return([]model.Seller{}, nil).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers?_q=acme", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		r.sellers.AssertExpectations(t)
		r.sellers.AssertNotCalled(t, "FetchAll", mock.Anything, mock.Anything)
	})

	t.Run("empty _q fetches all", func(t *testing.T) {
		r := newRoutedApp(t, false)
		r.sellers.On("FetchAll", mock.Anything, filter.Params{"_q": {""}}).Return(nil, nil).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers?_q=", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "[]", string(body))
		r.sellers.AssertExpectations(t)
	})

	t.Run("invalid filter", func(t *testing.T) {
		r := newRoutedApp(t, false)
		r.sellers.On("FetchAll", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: unknown field \"color\"", filter.ErrInvalidFilter)).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers?color=red", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FILTER", res.Error.Code)
	})
}

func TestCount(t *testing.T) {
	r := newRoutedApp(t, false)
	r.sellers.On("Count", mock.Anything, filter.Params{"verified": {"true"}}).Return(int64(3), nil).Once()

	resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers/count?verified=true", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "3", string(body))
	r.sellers.AssertExpectations(t)
	r.sellers.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestFindOne(t *testing.T) {
	r := newRoutedApp(t, false)

	t.Run("success", func(t *testing.T) {
		r.sellers.On("Fetch", mock.Anything, uint(7)).Return(&model.Seller{ID: 7, Name: "Acme"}, nil).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers/7", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out model.Seller
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, uint(7), out.ID)
	})

	t.Run("not found", func(t *testing.T) {
		r.sellers.On("Fetch", mock.Anything, uint(8)).Return(nil, service.ErrNotFound).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers/8", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-1"} {
			resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers/"+id, nil))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, id)

			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, "INVALID_ID", res.Error.Code, id)
		}
	})

	t.Run("service error", func(t *testing.T) {
		r.sellers.On("Fetch", mock.Anything, uint(9)).Return(nil, errors.New("db error")).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/sellers/9", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	r.sellers.AssertExpectations(t)
}

func TestCreate(t *testing.T) {
	r := newRoutedApp(t, false)

	t.Run("success", func(t *testing.T) {
		r.sellers.On("Add", mock.Anything, map[string]any{
			"name":      "Acme",
			"customers": []any{float64(1), float64(2)},
		}).Return(&model.Seller{ID: 1, Name: "Acme"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/sellers", strings.NewReader(`{"name":"Acme","customers":[1,2]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sellers", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "BAD_REQUEST", res.Error.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		r.sellers.On("Add", mock.Anything, map[string]any{"color": "red"}).
			Return(nil, fmt.Errorf("%w: seller.color", schema.ErrUnknownField)).Once()

		req := httptest.NewRequest(http.MethodPost, "/sellers", strings.NewReader(`{"color":"red"}`))
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNKNOWN_FIELD", res.Error.Code)
	})
	r.sellers.AssertExpectations(t)
}

func TestUpdateAndDestroy(t *testing.T) {
	r := newRoutedApp(t, false)

	r.sellers.On("Edit", mock.Anything, uint(3), map[string]any{"name": "New"}).
		Return(&model.Seller{ID: 3, Name: "New"}, nil).Once()
	resp, _ := r.app.Test(httptest.NewRequest(http.MethodPut, "/sellers/3", strings.NewReader(`{"name":"New"}`)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	r.sellers.On("Remove", mock.Anything, uint(3)).Return(&model.Seller{ID: 3, Name: "New"}, nil).Once()
	resp, _ = r.app.Test(httptest.NewRequest(http.MethodDelete, "/sellers/3", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.Seller
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "New", out.Name)
	r.sellers.AssertExpectations(t)
}

func TestRelationships(t *testing.T) {
	r := newRoutedApp(t, false)
	values := map[string]any{"customers": []any{float64(4)}}
	seller := &model.Seller{ID: 2}

	r.sellers.On("AddRelation", mock.Anything, uint(2), values).Return(seller, nil).Once()
	r.sellers.On("EditRelation", mock.Anything, uint(2), values).Return(seller, nil).Once()
	r.sellers.On("RemoveRelation", mock.Anything, uint(2), values).Return(seller, nil).Once()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/sellers/2/relationships", strings.NewReader(`{"customers":[4]}`))
		resp, _ := r.app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode, method)
	}
	r.sellers.AssertExpectations(t)

	r.sellers.On("AddRelation", mock.Anything, uint(2), map[string]any{"type": []any{float64(1), float64(2)}}).
		Return(nil, fmt.Errorf("%w: type accepts a single reference", schema.ErrInvalidRelation)).Once()
	resp, _ := r.app.Test(httptest.NewRequest(http.MethodPost, "/sellers/2/relationships", strings.NewReader(`{"type":[1,2]}`)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouting(t *testing.T) {
	r := newRoutedApp(t, false)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("upload routes need storage", func(t *testing.T) {
		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
