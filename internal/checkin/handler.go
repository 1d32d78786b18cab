package checkin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/canermastan/hotel-operations/internal"
	"github.com/canermastan/hotel-operations/internal/transport"
	"github.com/canermastan/hotel-operations/pkg/logger"
)

// maxPassportUploadBytes bounds multipart uploads; passport scans rarely
// exceed a few megabytes.
const maxPassportUploadBytes = 10 << 20

type ServiceAPI interface {
	Start(reservationID int64, guestEmail string) (*CheckinRecord, error)
	UploadPassport(checkinID int64, image []byte, fileName string) (*CheckinRecord, error)
	StartLivenessVerification(checkinID int64) (*LivenessSession, error)
	CompleteLivenessVerification(checkinID int64, providerPayload string, verified bool) (*CheckinRecord, error)
	Cancel(checkinID int64) (*CheckinRecord, error)
	GetCheckinRecord(checkinID int64) (*CheckinRecord, error)
	GetActiveForReservation(reservationID int64) (*CheckinRecord, error)
	GetCheckinsByReservation(reservationID int64) ([]*CheckinRecord, error)
	GetPassportStatus(checkinID int64) (*PassportStatusResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) StartCheckin(w http.ResponseWriter, r *http.Request) {
	var dto StartCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("StartCheckin: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	rec, err := h.Service.Start(dto.ReservationID, dto.GuestEmail)
	if err != nil {
		h.Logger.Error("StartCheckin: service error", "error", err, "reservation_id", dto.ReservationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("StartCheckin: check-in started",
		"checkin_id", rec.ID,
		"reservation_id", rec.ReservationID,
		"status", rec.Status)

	h.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) UploadPassport(w http.ResponseWriter, r *http.Request) {
	checkinID, ok := h.checkinIDFromURL(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPassportUploadBytes)
	if err := r.ParseMultipartForm(maxPassportUploadBytes); err != nil {
		h.Logger.Error("UploadPassport: invalid multipart form", "error", err, "checkin_id", checkinID)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("passport")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "passport file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Error("UploadPassport: failed to read upload", "error", err, "checkin_id", checkinID)
		h.WriteError(w, http.StatusBadRequest, "failed to read passport file")
		return
	}

	rec, err := h.Service.UploadPassport(checkinID, image, header.Filename)
	if err != nil {
		h.Logger.Error("UploadPassport: service error", "error", err, "checkin_id", checkinID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UploadPassport: passport accepted for verification",
		"checkin_id", rec.ID,
		"file_name", header.Filename,
		"status", rec.Status)

	h.WriteJSON(w, http.StatusAccepted, rec)
}

func (h *Handler) PassportStatus(w http.ResponseWriter, r *http.Request) {
	checkinID, ok := h.checkinIDFromURL(w, r)
	if !ok {
		return
	}

	status, err := h.Service.GetPassportStatus(checkinID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) StartLiveness(w http.ResponseWriter, r *http.Request) {
	checkinID, ok := h.checkinIDFromURL(w, r)
	if !ok {
		return
	}

	session, err := h.Service.StartLivenessVerification(checkinID)
	if err != nil {
		h.Logger.Error("StartLiveness: service error", "error", err, "checkin_id", checkinID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LivenessSessionResponse{
		CheckinID: checkinID,
		AppID:     session.AppID,
		SessionID: session.SessionID,
	})
}

func (h *Handler) CompleteLiveness(w http.ResponseWriter, r *http.Request) {
	checkinID, ok := h.checkinIDFromURL(w, r)
	if !ok {
		return
	}

	var dto CompleteLivenessRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	rec, err := h.Service.CompleteLivenessVerification(checkinID, dto.ProviderPayload, dto.Verified)
	if err != nil {
		h.Logger.Error("CompleteLiveness: service error", "error", err, "checkin_id", checkinID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CompleteLiveness: liveness result processed",
		"checkin_id", rec.ID,
		"verified", dto.Verified,
		"status", rec.Status)

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) CancelCheckin(w http.ResponseWriter, r *http.Request) {
	checkinID, ok := h.checkinIDFromURL(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.Cancel(checkinID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CancelCheckin: check-in cancelled", "checkin_id", rec.ID, "status", rec.Status)
	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) GetCheckin(w http.ResponseWriter, r *http.Request) {
	checkinID, ok := h.checkinIDFromURL(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.GetCheckinRecord(checkinID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) GetCheckinsByReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := h.reservationIDFromURL(w, r)
	if !ok {
		return
	}

	recs, err := h.Service.GetCheckinsByReservation(reservationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, recs)
}

func (h *Handler) GetActiveCheckin(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := h.reservationIDFromURL(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.GetActiveForReservation(reservationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) checkinIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid check-in ID", errors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func (h *Handler) reservationIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reservationId"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid reservation ID", errors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}
