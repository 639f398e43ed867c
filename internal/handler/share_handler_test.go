package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"gallery-service/internal/clock"
	"gallery-service/internal/model"

	"github.com/labstack/echo/v4"
)

type fakeAdminStore struct {
	shares     []model.GalleryShare
	images     []model.GalleryImage
	created    *model.GalleryShare
	createdIDs []uint
	rotated    uint
}

func (f *fakeAdminStore) CreateShare(_ context.Context, share *model.GalleryShare, imageIDs []uint) error {
	share.ID = 1
	share.Name = "CAT/0001"
	f.created = share
	f.createdIDs = imageIDs
	return nil
}

func (f *fakeAdminStore) SharesByCompany(_ context.Context, _ uint) ([]model.GalleryShare, error) {
	return f.shares, nil
}

func (f *fakeAdminStore) RegenerateToken(_ context.Context, shareID, _ uint, _ string) error {
	f.rotated = shareID
	return nil
}

func (f *fakeAdminStore) ImagesByCompany(_ context.Context, _ uint) ([]model.GalleryImage, error) {
	return f.images, nil
}

func withCompany(companyID uint) func(echo.Context) {
	return func(c echo.Context) {
		c.Set("company_id", companyID)
		c.Set("user_id", uint(3))
	}
}

func TestCreateShare(t *testing.T) {
	t.Run("creates link with default expiry", func(t *testing.T) {
		store := &fakeAdminStore{}
		h := NewShareHandler(store, clock.NewFixed(handlerNow), 72*time.Hour)

		body := `{"customer_id": 7, "customer_name": "ACME Stone", "image_ids": [1,2,3]}`
		rec := doRequest(h.CreateShare, http.MethodPost, "/api/shares", body, withCompany(9))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
		}
		if store.created == nil {
			t.Fatalf("share was not created")
		}
		if store.created.CompanyID != 9 {
			t.Fatalf("share must carry the caller's company scope, got %d", store.created.CompanyID)
		}
		if store.created.AccessToken == "" {
			t.Fatalf("expected a generated access token")
		}
		if want := handlerNow.Add(72 * time.Hour); !store.created.ExpirationDate.Equal(want) {
			t.Fatalf("expected default expiry %v, got %v", want, store.created.ExpirationDate)
		}
		if len(store.createdIDs) != 3 {
			t.Fatalf("expected 3 image ids, got %v", store.createdIDs)
		}

		var resp map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		url, _ := resp["url"].(string)
		if !strings.HasPrefix(url, "/gallery/view/") {
			t.Fatalf("unexpected share url %q", url)
		}
	})

	t.Run("rejects empty selection", func(t *testing.T) {
		h := NewShareHandler(&fakeAdminStore{}, clock.NewFixed(handlerNow), 72*time.Hour)

		rec := doRequest(h.CreateShare, http.MethodPost, "/api/shares", `{"customer_id": 7, "image_ids": []}`, withCompany(9))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		h := NewShareHandler(&fakeAdminStore{}, clock.NewFixed(handlerNow), 72*time.Hour)

		rec := doRequest(h.CreateShare, http.MethodPost, "/api/shares", `{"image_ids": [1]}`, withCompany(9))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("requires company context", func(t *testing.T) {
		h := NewShareHandler(&fakeAdminStore{}, clock.NewFixed(handlerNow), 72*time.Hour)

		rec := doRequest(h.CreateShare, http.MethodPost, "/api/shares", `{"customer_id": 7, "image_ids": [1]}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRegenerateToken(t *testing.T) {
	store := &fakeAdminStore{}
	h := NewShareHandler(store, clock.NewFixed(handlerNow), 72*time.Hour)

	rec := doRequest(h.RegenerateToken, http.MethodPost, "/api/shares/4/regenerate_token", "", func(c echo.Context) {
		withCompany(9)(c)
		c.SetParamNames("id")
		c.SetParamValues("4")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.rotated != 4 {
		t.Fatalf("expected share 4 rotated, got %d", store.rotated)
	}
}
