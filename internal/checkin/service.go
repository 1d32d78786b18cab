package checkin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	errors "github.com/canermastan/hotel-operations/internal"
	"github.com/canermastan/hotel-operations/internal/core/events"
	"github.com/canermastan/hotel-operations/internal/reservation"
)

// PassportJob is handed to the document verifier; Done is invoked exactly
// once, from the verifier's worker, with either extracted fields or an error.
type PassportJob struct {
	CheckinID int64
	ImagePath string
	Done      func(checkinID int64, fields map[string]interface{}, err error)
}

// DocumentVerifier runs passport extraction off the request path. Submit must
// not block on the provider call.
type DocumentVerifier interface {
	Submit(job PassportJob)
}

// LivenessSession is the client-side configuration for the capture flow.
type LivenessSession struct {
	AppID     string `json:"app_id"`
	SessionID string `json:"session_id"`
}

type LivenessVerifier interface {
	IssueSession() LivenessSession
}

// StatusUpdate carries the column changes applied together with a status
// transition. Nil fields are left untouched.
type StatusUpdate struct {
	PassportImagePath *string
	PassportData      map[string]interface{}
	PassportVerified  *bool
	SessionID         *string
	LivenessResponse  *string
	VerificationError *string
	CompletedAt       *time.Time
}

// Repository defines the data access methods for check-in records. Every
// transition is a compare-and-set on the current status: it applies only when
// the row still holds one of the expected statuses and reports whether it won.
type Repository interface {
	Create(rec *CheckinRecord) error
	GetByID(id int64) (*CheckinRecord, error)
	GetActiveByReservationID(reservationID int64) (*CheckinRecord, error)
	GetByReservationID(reservationID int64) ([]*CheckinRecord, error)
	TransitionStatus(id int64, from []string, to string, update StatusUpdate) (bool, error)
	// MarkLivenessVerified flips liveness_verified false->true while the
	// record is still pending face verification; at most one caller wins.
	MarkLivenessVerified(id int64, response string) (bool, error)
}

// Service owns the per-reservation check-in state machine.
type Service struct {
	repo         Repository
	reservations reservation.Gateway
	verifier     DocumentVerifier
	liveness     LivenessVerifier
	eventBus     *events.EventBus
	uploadDir    string
	logger       *slog.Logger
}

func NewService(repo Repository, reservations reservation.Gateway, verifier DocumentVerifier, liveness LivenessVerifier, eventBus *events.EventBus, uploadDir string, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		reservations: reservations,
		verifier:     verifier,
		liveness:     liveness,
		eventBus:     eventBus,
		uploadDir:    uploadDir,
		logger:       logger,
	}
}

// Start begins a check-in for a reservation. When a non-terminal record
// already exists it is returned unchanged, so at most one check-in per
// reservation is ever active.
func (s *Service) Start(reservationID int64, guestEmail string) (*CheckinRecord, error) {
	res, err := s.reservations.FindByID(reservationID)
	if err != nil {
		s.logger.Warn("check-in start: reservation not found", "reservation_id", reservationID)
		return nil, errors.ErrReservationNotFound
	}

	if !strings.EqualFold(res.Email, guestEmail) {
		s.logger.Warn("check-in start: email mismatch", "reservation_id", reservationID)
		return nil, errors.ErrEmailMismatch
	}

	existing, err := s.repo.GetActiveByReservationID(reservationID)
	if err != nil {
		s.logger.Error("failed to look up active check-in", "error", err, "reservation_id", reservationID)
		return nil, errors.NewInternalError("failed to look up active check-in", err)
	}
	if existing != nil {
		s.logger.Info("check-in already in progress, returning existing record",
			"checkin_id", existing.ID,
			"reservation_id", reservationID,
			"status", existing.Status)
		return existing, nil
	}

	now := time.Now()
	rec := &CheckinRecord{
		ReservationID: reservationID,
		GuestEmail:    guestEmail,
		Status:        StatusInProgress,
		StartedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(rec); err != nil {
		// A concurrent start may have taken the active slot; the partial
		// unique index rejects the second insert. Fall back to that record.
		if winner, lookupErr := s.repo.GetActiveByReservationID(reservationID); lookupErr == nil && winner != nil {
			s.logger.Info("concurrent check-in start, returning the record that won",
				"checkin_id", winner.ID,
				"reservation_id", reservationID)
			return winner, nil
		}
		s.logger.Error("failed to create check-in record", "error", err, "reservation_id", reservationID)
		return nil, errors.NewInternalError("failed to create check-in record", err)
	}

	s.logger.Info("check-in started",
		"checkin_id", rec.ID,
		"reservation_id", reservationID)

	return rec, nil
}

// UploadPassport stores the image, moves the record to PASSPORT_UPLOADED and
// hands extraction to the document verifier. The caller gets the record back
// immediately; the verification result lands through a later transition.
func (s *Service) UploadPassport(checkinID int64, image []byte, fileName string) (*CheckinRecord, error) {
	rec, err := s.getRecord(checkinID)
	if err != nil {
		return nil, err
	}

	if !rec.CanUploadPassport() {
		s.logger.Warn("invalid check-in status for passport upload",
			"checkin_id", checkinID,
			"status", rec.Status)
		return nil, errors.ErrInvalidCheckinStatus
	}

	imagePath, err := s.savePassportImage(image, fileName, checkinID)
	if err != nil {
		s.logger.Error("failed to save passport image", "error", err, "checkin_id", checkinID)
		return nil, errors.NewInternalError("failed to save passport image", err)
	}

	ok, err := s.repo.TransitionStatus(checkinID,
		[]string{StatusInProgress, StatusPassportUploaded},
		StatusPassportUploaded,
		StatusUpdate{PassportImagePath: &imagePath})
	if err != nil {
		s.logger.Error("failed to persist passport upload", "error", err, "checkin_id", checkinID)
		return nil, errors.NewInternalError("failed to persist passport upload", err)
	}
	if !ok {
		return nil, errors.ErrInvalidCheckinStatus
	}

	s.verifier.Submit(PassportJob{
		CheckinID: checkinID,
		ImagePath: filepath.Join(s.uploadDir, imagePath),
		Done:      s.applyPassportResult,
	})

	s.logger.Info("passport uploaded, verification submitted",
		"checkin_id", checkinID,
		"image_path", imagePath)

	return s.getRecord(checkinID)
}

// applyPassportResult is the verifier's completion path. It only applies when
// the record is still PASSPORT_UPLOADED; a cancel that raced the provider
// call wins silently.
func (s *Service) applyPassportResult(checkinID int64, fields map[string]interface{}, verifyErr error) {
	if verifyErr != nil {
		reason := fmt.Sprintf("Passport processing failed: %v", verifyErr)
		verified := false
		ok, err := s.repo.TransitionStatus(checkinID,
			[]string{StatusPassportUploaded},
			StatusFailed,
			StatusUpdate{PassportVerified: &verified, VerificationError: &reason})
		if err != nil {
			s.logger.Error("failed to record passport verification failure", "error", err, "checkin_id", checkinID)
			return
		}
		if !ok {
			s.logger.Debug("passport result discarded, record no longer awaiting verification", "checkin_id", checkinID)
			return
		}

		s.logger.Error("passport verification failed",
			"checkin_id", checkinID,
			"reason", reason)
		s.publishFailed(checkinID, reason)
		return
	}

	verified := true
	ok, err := s.repo.TransitionStatus(checkinID,
		[]string{StatusPassportUploaded},
		StatusPassportVerified,
		StatusUpdate{PassportVerified: &verified, PassportData: fields})
	if err != nil {
		s.logger.Error("failed to record passport verification", "error", err, "checkin_id", checkinID)
		return
	}
	if !ok {
		s.logger.Debug("passport result discarded, record no longer awaiting verification", "checkin_id", checkinID)
		return
	}

	s.logger.Info("passport verified", "checkin_id", checkinID)
}

// StartLivenessVerification issues a fresh provider session. Allowed whenever
// the passport has been verified, including re-issuing while already pending.
func (s *Service) StartLivenessVerification(checkinID int64) (*LivenessSession, error) {
	rec, err := s.getRecord(checkinID)
	if err != nil {
		return nil, err
	}

	if !rec.PassportVerified || rec.IsTerminal() {
		s.logger.Warn("liveness start rejected",
			"checkin_id", checkinID,
			"status", rec.Status,
			"passport_verified", rec.PassportVerified)
		return nil, errors.ErrPassportNotVerified
	}

	session := s.liveness.IssueSession()

	ok, err := s.repo.TransitionStatus(checkinID,
		[]string{StatusPassportVerified, StatusPendingFaceVerification},
		StatusPendingFaceVerification,
		StatusUpdate{SessionID: &session.SessionID})
	if err != nil {
		s.logger.Error("failed to start liveness verification", "error", err, "checkin_id", checkinID)
		return nil, errors.NewInternalError("failed to start liveness verification", err)
	}
	if !ok {
		return nil, errors.ErrInvalidCheckinStatus
	}

	s.logger.Info("liveness verification started",
		"checkin_id", checkinID,
		"session_id", session.SessionID)

	return &session, nil
}

// CompleteLivenessVerification applies the provider's verdict. A verified
// result also performs the hotel-side check-in; its failure is recorded as a
// distinct downstream failure while liveness_verified stays true. Terminal
// records absorb the call without error.
func (s *Service) CompleteLivenessVerification(checkinID int64, providerPayload string, verified bool) (*CheckinRecord, error) {
	rec, err := s.getRecord(checkinID)
	if err != nil {
		return nil, err
	}

	if rec.IsTerminal() {
		s.logger.Info("liveness completion on terminal record ignored",
			"checkin_id", checkinID,
			"status", rec.Status)
		return rec, nil
	}

	if !verified {
		reason := "Liveness verification failed"
		ok, err := s.repo.TransitionStatus(checkinID,
			[]string{StatusPendingFaceVerification},
			StatusFailed,
			StatusUpdate{LivenessResponse: &providerPayload, VerificationError: &reason})
		if err != nil {
			return nil, errors.NewInternalError("failed to record liveness failure", err)
		}
		if ok {
			s.logger.Warn("liveness verification failed", "checkin_id", checkinID)
			s.publishFailed(checkinID, reason)
		}
		return s.getRecord(checkinID)
	}

	claimed, err := s.repo.MarkLivenessVerified(checkinID, providerPayload)
	if err != nil {
		return nil, errors.NewInternalError("failed to record liveness result", err)
	}
	if !claimed {
		// another caller already ran the completion, or cancel won
		return s.getRecord(checkinID)
	}

	if err := s.reservations.CheckIn(rec.ReservationID); err != nil {
		reason := fmt.Sprintf("Failed to complete hotel check-in: %v", err)
		s.logger.Error("hotel check-in failed after successful verification",
			"error", err,
			"checkin_id", checkinID,
			"reservation_id", rec.ReservationID)

		if _, terr := s.repo.TransitionStatus(checkinID,
			[]string{StatusPendingFaceVerification},
			StatusFailed,
			StatusUpdate{VerificationError: &reason}); terr != nil {
			s.logger.Error("failed to record downstream failure", "error", terr, "checkin_id", checkinID)
		}
		s.publishFailed(checkinID, reason)
		return s.getRecord(checkinID)
	}

	now := time.Now()
	if _, err := s.repo.TransitionStatus(checkinID,
		[]string{StatusPendingFaceVerification},
		StatusCompleted,
		StatusUpdate{CompletedAt: &now}); err != nil {
		return nil, errors.NewInternalError("failed to complete check-in", err)
	}

	s.logger.Info("check-in completed",
		"checkin_id", checkinID,
		"reservation_id", rec.ReservationID)

	if s.eventBus != nil {
		s.eventBus.Publish(context.Background(), events.NewCheckinCompletedEvent(checkinID, rec.ReservationID, rec.GuestEmail))
	}

	return s.getRecord(checkinID)
}

// Cancel moves any non-terminal record to CANCELLED. Cancelling a record that
// is already terminal is accepted and leaves it untouched.
func (s *Service) Cancel(checkinID int64) (*CheckinRecord, error) {
	rec, err := s.getRecord(checkinID)
	if err != nil {
		return nil, err
	}

	if rec.IsTerminal() {
		return rec, nil
	}

	if _, err := s.repo.TransitionStatus(checkinID, ActiveStatuses(), StatusCancelled, StatusUpdate{}); err != nil {
		return nil, errors.NewInternalError("failed to cancel check-in", err)
	}

	s.logger.Info("check-in cancelled", "checkin_id", checkinID)
	return s.getRecord(checkinID)
}

func (s *Service) GetCheckinRecord(checkinID int64) (*CheckinRecord, error) {
	return s.getRecord(checkinID)
}

func (s *Service) GetActiveForReservation(reservationID int64) (*CheckinRecord, error) {
	rec, err := s.repo.GetActiveByReservationID(reservationID)
	if err != nil {
		return nil, errors.NewInternalError("failed to look up active check-in", err)
	}
	if rec == nil {
		return nil, errors.ErrCheckinNotFound
	}
	return rec, nil
}

func (s *Service) GetCheckinsByReservation(reservationID int64) ([]*CheckinRecord, error) {
	records, err := s.repo.GetByReservationID(reservationID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list check-ins", err)
	}
	return records, nil
}

// GetPassportStatus is the polling view for the asynchronous verification.
func (s *Service) GetPassportStatus(checkinID int64) (*PassportStatusResponse, error) {
	rec, err := s.getRecord(checkinID)
	if err != nil {
		return nil, err
	}

	resp := &PassportStatusResponse{
		CheckinID:        rec.ID,
		Status:           rec.Status,
		PassportUploaded: rec.PassportImagePath != nil,
		PassportVerified: rec.PassportVerified,
		PassportData:     rec.PassportData,
	}
	if rec.VerificationErrors != nil {
		resp.Errors = *rec.VerificationErrors
	}
	return resp, nil
}

func (s *Service) getRecord(checkinID int64) (*CheckinRecord, error) {
	rec, err := s.repo.GetByID(checkinID)
	if err != nil {
		return nil, errors.ErrCheckinNotFound
	}
	return rec, nil
}

func (s *Service) publishFailed(checkinID int64, reason string) {
	if s.eventBus == nil {
		return
	}
	rec, err := s.repo.GetByID(checkinID)
	if err != nil {
		return
	}
	s.eventBus.Publish(context.Background(), events.NewCheckinFailedEvent(checkinID, rec.ReservationID, reason))
}

func (s *Service) savePassportImage(image []byte, originalName string, checkinID int64) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}

	fileName := fmt.Sprintf("passport_%d_%d%s", checkinID, time.Now().UnixMilli(), ext)
	if err := os.WriteFile(filepath.Join(s.uploadDir, fileName), image, 0o600); err != nil {
		return "", err
	}

	return fileName, nil
}
