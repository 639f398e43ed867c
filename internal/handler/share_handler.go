package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gallery-service/internal/clock"
	"gallery-service/internal/middleware"
	"gallery-service/internal/model"
	"gallery-service/pkg/logger"
	"gallery-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ShareAdminStore is the store surface of the selector API.
type ShareAdminStore interface {
	CreateShare(ctx context.Context, share *model.GalleryShare, imageIDs []uint) error
	SharesByCompany(ctx context.Context, companyID uint) ([]model.GalleryShare, error)
	RegenerateToken(ctx context.Context, shareID, companyID uint, token string) error
	ImagesByCompany(ctx context.Context, companyID uint) ([]model.GalleryImage, error)
}

// ShareHandler serves the JWT-protected selector API sales users call to
// create and manage gallery links.
type ShareHandler struct {
	store   ShareAdminStore
	clock   clock.Clock
	linkTTL time.Duration
}

func NewShareHandler(store ShareAdminStore, clk clock.Clock, linkTTL time.Duration) *ShareHandler {
	return &ShareHandler{
		store:   store,
		clock:   clk,
		linkTTL: linkTTL,
	}
}

// ShareRequest defines the structure for share creation requests
type ShareRequest struct {
	CustomerID     uint       `json:"customer_id"`
	CustomerName   string     `json:"customer_name"`
	ImageIDs       []uint     `json:"image_ids"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

type shareResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// CreateShare handles creating a new gallery link from selected images
func (h *ShareHandler) CreateShare(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.GetCompanyIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company context required"})
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	var req ShareRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CustomerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id is required"})
	}
	if len(req.ImageIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one image is required"})
	}

	expiration := h.clock.Now().Add(h.linkTTL)
	if req.ExpirationDate != nil && req.ExpirationDate.After(h.clock.Now()) {
		expiration = *req.ExpirationDate
	}

	share := &model.GalleryShare{
		AccessToken:    uuid.New().String(),
		CompanyID:      companyID,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		SalesUserID:    userID,
		ExpirationDate: expiration,
	}

	if err := h.store.CreateShare(c.Request().Context(), share, req.ImageIDs); err != nil {
		log.Error("Failed to create gallery share",
			zap.Uint("customer_id", req.CustomerID),
			zap.Int("images", len(req.ImageIDs)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create share"})
	}

	prometheus.SharesCreatedCounter.Inc()
	log.Info("Gallery share created",
		zap.String("name", share.Name),
		zap.Uint("customer_id", req.CustomerID),
		zap.Int("images", len(req.ImageIDs)),
		zap.Time("expiration_date", expiration))

	return c.JSON(http.StatusCreated, shareResponse{
		ID:             share.ID,
		Name:           share.Name,
		URL:            "/gallery/view/" + share.AccessToken,
		ExpirationDate: share.ExpirationDate,
	})
}

// ListShares handles retrieving all gallery links of the caller's company
func (h *ShareHandler) ListShares(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.GetCompanyIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company context required"})
	}

	shares, err := h.store.SharesByCompany(c.Request().Context(), companyID)
	if err != nil {
		log.Error("Failed to list gallery shares", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve shares"})
	}

	log.Info("Gallery shares retrieved", zap.Int("count", len(shares)))
	return c.JSON(http.StatusOK, shares)
}

// RegenerateToken handles rotating the access token of a link, invalidating
// the previously shared URL
func (h *ShareHandler) RegenerateToken(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.GetCompanyIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company context required"})
	}

	shareID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || shareID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "share not found"})
	}

	token := uuid.New().String()
	if err := h.store.RegenerateToken(c.Request().Context(), uint(shareID), companyID, token); err != nil {
		log.Warn("Failed to regenerate share token",
			zap.Uint64("share_id", shareID),
			zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "share not found"})
	}

	log.Info("Share token regenerated", zap.Uint64("share_id", shareID))
	return c.JSON(http.StatusOK, echo.Map{"url": "/gallery/view/" + token})
}

// ListImages handles the selector feed: published images of the company's lots
func (h *ShareHandler) ListImages(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.GetCompanyIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company context required"})
	}

	images, err := h.store.ImagesByCompany(c.Request().Context(), companyID)
	if err != nil {
		log.Error("Failed to list gallery images", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve images"})
	}

	log.Info("Selector images retrieved", zap.Int("count", len(images)))
	return c.JSON(http.StatusOK, images)
}
