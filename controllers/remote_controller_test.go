package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
)

type fakeRemoteAPI struct {
	listErr error
	pingErr error
}

func (f *fakeRemoteAPI) ListProducts(_ context.Context, limit, offset int, categoryID int, search string) ([]remote.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []remote.Record{
		remote.RecordFrom(map[string]interface{}{"id": "5", "reference": "R-5", "name": "Chair", "price": "10", "active": "1"}),
	}, nil
}

func (f *fakeRemoteAPI) Product(_ context.Context, id int) (remote.Record, error) {
	if id == 404 {
		return remote.Record{}, &remote.NotFoundError{Resource: "product", ID: id}
	}
	return remote.RecordFrom(map[string]interface{}{"id": "5", "reference": "R-5"}), nil
}

func (f *fakeRemoteAPI) TestConnection(_ context.Context) error { return f.pingErr }

func remoteRouter(api RemoteAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rc := NewRemoteController(api, 1)
	r.GET("/remote/products", rc.ListProducts)
	r.GET("/remote/products/:id", rc.GetProduct)
	r.GET("/remote/ping", rc.Ping)
	return r
}

func TestRemoteListProducts(t *testing.T) {
	r := remoteRouter(&fakeRemoteAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote/products?page=2&perPage=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"R-5"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRemoteListUpstreamError(t *testing.T) {
	r := remoteRouter(&fakeRemoteAPI{listErr: &remote.TransportError{Kind: remote.TransportDNS, Resource: "products", Err: errors.New("no such host")}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote/products", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "dns") {
		t.Errorf("body = %s, want the transport classification", w.Body.String())
	}
}

func TestRemoteGetProductNotFound(t *testing.T) {
	r := remoteRouter(&fakeRemoteAPI{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote/products/404", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote/products/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRemotePing(t *testing.T) {
	r := remoteRouter(&fakeRemoteAPI{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	r = remoteRouter(&fakeRemoteAPI{pingErr: errors.New("unreachable")})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote/ping", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}
