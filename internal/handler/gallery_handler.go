package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gallery-service/internal/clock"
	"gallery-service/internal/gallery"
	"gallery-service/internal/grouping"
	"gallery-service/internal/model"
	"gallery-service/internal/reservation"
	"gallery-service/pkg/logger"
	"gallery-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ShareStore is the read-side store the public routes need.
type ShareStore interface {
	ShareByToken(ctx context.Context, token string) (*model.GalleryShare, error)
	ImageInShare(ctx context.Context, shareID, imageID uint) (*model.GalleryImage, error)
}

// Reserver is the reservation engine boundary.
type Reserver interface {
	Reserve(ctx context.Context, token string, items []reservation.CartItem) (reservation.Confirmation, error)
}

// GalleryHandler serves the unauthenticated customer-facing routes: the
// grouped availability view, the gated image blobs and the reservation
// submission.
type GalleryHandler struct {
	store        ShareStore
	view         *gallery.ViewBuilder
	reservations Reserver
	clock        clock.Clock
}

func NewGalleryHandler(store ShareStore, view *gallery.ViewBuilder, reservations Reserver, clk clock.Clock) *GalleryHandler {
	return &GalleryHandler{
		store:        store,
		view:         view,
		reservations: reservations,
		clock:        clk,
	}
}

type shareInfo struct {
	Name           string    `json:"name"`
	CustomerName   string    `json:"customer_name,omitempty"`
	ExpirationDate time.Time `json:"expiration_date"`
}

type galleryViewResponse struct {
	Status string    `json:"status"`
	Share  shareInfo `json:"share"`
	grouping.Result
}

// ViewGallery handles GET /gallery/view/:token. Unknown tokens degrade to a
// not-found payload, expired links to an expired payload; both are
// informational, not errors.
func (h *GalleryHandler) ViewGallery(c echo.Context) error {
	log := logger.FromContext(c)
	token := c.Param("token")

	defer prometheus.TrackDBOperation("gallery_view")(time.Now())

	share, err := h.store.ShareByToken(c.Request().Context(), token)
	if err != nil {
		log.Error("Failed to resolve gallery link", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load gallery"})
	}
	if share == nil {
		log.Warn("Gallery link not found")
		prometheus.RecordGalleryView("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"status": "not_found", "error": "gallery not found"})
	}
	if share.IsExpired(h.clock.Now()) {
		log.Info("Gallery link expired",
			zap.String("share", share.Name),
			zap.Time("expiration_date", share.ExpirationDate))
		prometheus.RecordGalleryView("expired")
		return c.JSON(http.StatusGone, echo.Map{
			"status":          "expired",
			"error":           "gallery link expired",
			"expiration_date": share.ExpirationDate,
		})
	}

	result, err := h.view.BuildView(c.Request().Context(), share)
	if err != nil {
		log.Error("Failed to build gallery view",
			zap.String("share", share.Name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load gallery"})
	}

	prometheus.RecordGalleryView("ok")
	log.Info("Gallery view served",
		zap.String("share", share.Name),
		zap.Int("categories", len(result.Categories)),
		zap.Int("blocks", len(result.BlockDetails)))

	return c.JSON(http.StatusOK, galleryViewResponse{
		Status: "ok",
		Share: shareInfo{
			Name:           share.Name,
			CustomerName:   share.CustomerName,
			ExpirationDate: share.ExpirationDate,
		},
		Result: result,
	})
}

const imageCacheControl = "public, max-age=604800" // one week

// GalleryImage handles GET /gallery/image/:token/:image_id. The blob is
// served only when the link is valid, unexpired and actually contains the
// image; everything else is a plain not-found.
func (h *GalleryHandler) GalleryImage(c echo.Context) error {
	log := logger.FromContext(c)
	token := c.Param("token")

	imageID, err := strconv.ParseUint(c.Param("image_id"), 10, 32)
	if err != nil || imageID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	}

	share, err := h.store.ShareByToken(c.Request().Context(), token)
	if err != nil {
		log.Error("Failed to resolve gallery link", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load image"})
	}
	if share == nil || share.IsExpired(h.clock.Now()) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	}

	image, err := h.store.ImageInShare(c.Request().Context(), share.ID, uint(imageID))
	if err != nil {
		log.Error("Failed to load image",
			zap.Uint64("image_id", imageID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load image"})
	}
	if image == nil || len(image.Image) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	}

	prometheus.ImagesServedCounter.Inc()
	c.Response().Header().Set(echo.HeaderCacheControl, imageCacheControl)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(image.Image)))
	return c.Blob(http.StatusOK, http.DetectContentType(image.Image), image.Image)
}

// ConfirmReservationRequest is the body of POST /gallery/confirm_reservation
type ConfirmReservationRequest struct {
	Token string                 `json:"token"`
	Items []reservation.CartItem `json:"items"`
}

// ConfirmReservationResponse is always returned with HTTP 200; reservation
// failures are carried in the body so the anonymous client can display them.
type ConfirmReservationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	OrderName string `json:"order_name,omitempty"`
}

// ConfirmReservation handles POST /gallery/confirm_reservation
func (h *GalleryHandler) ConfirmReservation(c echo.Context) error {
	log := logger.FromContext(c)

	var req ConfirmReservationRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid reservation request body", zap.Error(err))
		return c.JSON(http.StatusOK, ConfirmReservationResponse{
			Success: false,
			Message: "Invalid request.",
		})
	}

	conf, err := h.reservations.Reserve(c.Request().Context(), req.Token, req.Items)
	if err != nil {
		return c.JSON(http.StatusOK, h.reservationFailure(c, req, err))
	}

	prometheus.RecordReservation("confirmed")
	prometheus.ReservedLinesCounter.Add(float64(conf.Lines))
	log.Info("Reservation confirmed",
		zap.String("order_name", conf.OrderName),
		zap.Int("lines", conf.Lines))

	return c.JSON(http.StatusOK, ConfirmReservationResponse{
		Success:   true,
		Message:   conf.Message,
		OrderName: conf.OrderName,
	})
}

// reservationFailure maps engine errors to client-safe messages. Internal
// failures are logged with token and lot refs so a created-but-unconfirmed
// order can be reconciled manually.
func (h *GalleryHandler) reservationFailure(c echo.Context, req ConfirmReservationRequest, err error) ConfirmReservationResponse {
	log := logger.FromContext(c)

	switch {
	case errors.Is(err, reservation.ErrShareNotFound), errors.Is(err, reservation.ErrShareExpired):
		prometheus.RecordReservation("invalid_link")
		log.Warn("Reservation against invalid or expired link", zap.Error(err))
		return ConfirmReservationResponse{
			Success: false,
			Message: "This gallery link is invalid or has expired.",
		}
	case errors.Is(err, reservation.ErrEmptyCart):
		prometheus.RecordReservation("empty_cart")
		return ConfirmReservationResponse{
			Success: false,
			Message: "Your selection is empty or invalid.",
		}
	case errors.Is(err, reservation.ErrUnitUnavailable):
		prometheus.RecordReservation("conflict")
		log.Info("Reservation conflict", zap.Error(err))
		var unavailable *reservation.UnitUnavailableError
		if errors.As(err, &unavailable) {
			return ConfirmReservationResponse{
				Success: false,
				Message: unavailable.Error() + " Please refresh your selection and try again.",
			}
		}
		return ConfirmReservationResponse{
			Success: false,
			Message: "One of the selected slabs is no longer available.",
		}
	default:
		prometheus.RecordReservation("error")
		lots := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			lots = append(lots, string(item.LotRef))
		}
		log.Error("Reservation failed",
			zap.String("token", req.Token),
			zap.Strings("lot_refs", lots),
			zap.Error(err))
		return ConfirmReservationResponse{
			Success: false,
			Message: "The reservation could not be completed. Please try again.",
		}
	}
}
