package checkin_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/canermastan/hotel-operations/internal"
	checkinpkg "github.com/canermastan/hotel-operations/internal/checkin"
)

type mockCheckinService struct {
	startError            error
	uploadError           error
	startLivenessError    error
	completeLivenessError error
	cancelError           error
	getError              error
	record                *checkinpkg.CheckinRecord
	records               []*checkinpkg.CheckinRecord
	session               *checkinpkg.LivenessSession
	passportStatus        *checkinpkg.PassportStatusResponse
	uploadedImage         []byte
	uploadedFileName      string
}

func (m *mockCheckinService) Start(reservationID int64, guestEmail string) (*checkinpkg.CheckinRecord, error) {
	if m.startError != nil {
		return nil, m.startError
	}
	return m.record, nil
}

func (m *mockCheckinService) UploadPassport(checkinID int64, image []byte, fileName string) (*checkinpkg.CheckinRecord, error) {
	if m.uploadError != nil {
		return nil, m.uploadError
	}
	m.uploadedImage = image
	m.uploadedFileName = fileName
	return m.record, nil
}

func (m *mockCheckinService) StartLivenessVerification(checkinID int64) (*checkinpkg.LivenessSession, error) {
	if m.startLivenessError != nil {
		return nil, m.startLivenessError
	}
	return m.session, nil
}

func (m *mockCheckinService) CompleteLivenessVerification(checkinID int64, providerPayload string, verified bool) (*checkinpkg.CheckinRecord, error) {
	if m.completeLivenessError != nil {
		return nil, m.completeLivenessError
	}
	return m.record, nil
}

func (m *mockCheckinService) Cancel(checkinID int64) (*checkinpkg.CheckinRecord, error) {
	if m.cancelError != nil {
		return nil, m.cancelError
	}
	return m.record, nil
}

func (m *mockCheckinService) GetCheckinRecord(checkinID int64) (*checkinpkg.CheckinRecord, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.record, nil
}

func (m *mockCheckinService) GetActiveForReservation(reservationID int64) (*checkinpkg.CheckinRecord, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.record, nil
}

func (m *mockCheckinService) GetCheckinsByReservation(reservationID int64) ([]*checkinpkg.CheckinRecord, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.records, nil
}

func (m *mockCheckinService) GetPassportStatus(checkinID int64) (*checkinpkg.PassportStatusResponse, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.passportStatus, nil
}

var _ = ginkgo.Describe("CheckinHandler", func() {
	var (
		handler  *checkinpkg.Handler
		service  *mockCheckinService
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		service = &mockCheckinService{
			record: &checkinpkg.CheckinRecord{
				ID:            1,
				ReservationID: 1,
				GuestEmail:    "guest@ex.com",
				Status:        checkinpkg.StatusInProgress,
			},
		}
		handler = checkinpkg.NewHandler(service)
		recorder = httptest.NewRecorder()

		router = chi.NewRouter()
		router.Post("/api/v1/checkin/start", handler.StartCheckin)
		router.Post("/api/v1/checkin/{id}/passport", handler.UploadPassport)
		router.Get("/api/v1/checkin/{id}/passport/status", handler.PassportStatus)
		router.Post("/api/v1/checkin/{id}/liveness/start", handler.StartLiveness)
		router.Post("/api/v1/checkin/{id}/liveness/complete", handler.CompleteLiveness)
		router.Post("/api/v1/checkin/{id}/cancel", handler.CancelCheckin)
		router.Get("/api/v1/checkin/{id}", handler.GetCheckin)
		router.Get("/api/v1/checkin/reservation/{reservationId}", handler.GetCheckinsByReservation)
		router.Get("/api/v1/checkin/reservation/{reservationId}/active", handler.GetActiveCheckin)
	})

	jsonRequest := func(method, target string, body interface{}) *http.Request {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	multipartRequest := func(target, fieldName, fileName string, content []byte) *http.Request {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile(fieldName, fileName)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		_, err = part.Write(content)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(writer.Close()).To(gomega.Succeed())

		req := httptest.NewRequest("POST", target, &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	ginkgo.Context("StartCheckin", func() {
		ginkgo.When("the request is valid", func() {
			ginkgo.It("should return the created record", func() {
				req := jsonRequest("POST", "/api/v1/checkin/start", map[string]interface{}{
					"reservation_id": 1,
					"guest_email":    "guest@ex.com",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusCreated))
				var response checkinpkg.CheckinRecord
				gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
				gomega.Expect(response.ID).To(gomega.Equal(int64(1)))
				gomega.Expect(response.Status).To(gomega.Equal(checkinpkg.StatusInProgress))
			})
		})

		ginkgo.When("the request body is invalid JSON", func() {
			ginkgo.It("should return bad request", func() {
				req := httptest.NewRequest("POST", "/api/v1/checkin/start", bytes.NewBufferString("not json"))
				req.Header.Set("Content-Type", "application/json")

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the email is malformed", func() {
			ginkgo.It("should return a validation error", func() {
				req := jsonRequest("POST", "/api/v1/checkin/start", map[string]interface{}{
					"reservation_id": 1,
					"guest_email":    "not-an-email",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the email does not match the reservation", func() {
			ginkgo.It("should return a validation error", func() {
				service.startError = apperrors.ErrEmailMismatch
				req := jsonRequest("POST", "/api/v1/checkin/start", map[string]interface{}{
					"reservation_id": 1,
					"guest_email":    "other@ex.com",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the reservation does not exist", func() {
			ginkgo.It("should return not found", func() {
				service.startError = apperrors.ErrReservationNotFound
				req := jsonRequest("POST", "/api/v1/checkin/start", map[string]interface{}{
					"reservation_id": 999,
					"guest_email":    "guest@ex.com",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
			})
		})
	})

	ginkgo.Context("UploadPassport", func() {
		ginkgo.When("a passport file is attached", func() {
			ginkgo.It("should accept the upload for asynchronous verification", func() {
				service.record.Status = checkinpkg.StatusPassportUploaded
				req := multipartRequest("/api/v1/checkin/1/passport", "passport", "scan.jpg", []byte("image-bytes"))

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusAccepted))
				gomega.Expect(service.uploadedFileName).To(gomega.Equal("scan.jpg"))
				gomega.Expect(service.uploadedImage).To(gomega.Equal([]byte("image-bytes")))
			})
		})

		ginkgo.When("the passport field is missing", func() {
			ginkgo.It("should return bad request", func() {
				req := multipartRequest("/api/v1/checkin/1/passport", "document", "scan.jpg", []byte("image-bytes"))

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the body is not multipart", func() {
			ginkgo.It("should return bad request", func() {
				req := jsonRequest("POST", "/api/v1/checkin/1/passport", map[string]interface{}{"image": "x"})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the check-in is already completed", func() {
			ginkgo.It("should return conflict", func() {
				service.uploadError = apperrors.ErrInvalidCheckinStatus
				req := multipartRequest("/api/v1/checkin/1/passport", "passport", "scan.jpg", []byte("image-bytes"))

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusConflict))
			})
		})

		ginkgo.When("the check-in ID is not numeric", func() {
			ginkgo.It("should return bad request", func() {
				req := multipartRequest("/api/v1/checkin/abc/passport", "passport", "scan.jpg", []byte("image-bytes"))

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})
	})

	ginkgo.Context("PassportStatus", func() {
		ginkgo.It("should return the verification view", func() {
			service.passportStatus = &checkinpkg.PassportStatusResponse{
				CheckinID:        1,
				Status:           checkinpkg.StatusPassportVerified,
				PassportUploaded: true,
				PassportVerified: true,
			}
			req := jsonRequest("GET", "/api/v1/checkin/1/passport/status", nil)

			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response checkinpkg.PassportStatusResponse
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.PassportVerified).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("StartLiveness", func() {
		ginkgo.When("the passport is verified", func() {
			ginkgo.It("should return the session configuration", func() {
				service.session = &checkinpkg.LivenessSession{AppID: "app-1", SessionID: "session-1"}
				req := jsonRequest("POST", "/api/v1/checkin/1/liveness/start", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				var response checkinpkg.LivenessSessionResponse
				gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
				gomega.Expect(response.CheckinID).To(gomega.Equal(int64(1)))
				gomega.Expect(response.AppID).To(gomega.Equal("app-1"))
				gomega.Expect(response.SessionID).To(gomega.Equal("session-1"))
			})
		})

		ginkgo.When("the passport is not verified", func() {
			ginkgo.It("should return conflict", func() {
				service.startLivenessError = apperrors.ErrPassportNotVerified
				req := jsonRequest("POST", "/api/v1/checkin/1/liveness/start", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusConflict))
			})
		})
	})

	ginkgo.Context("CompleteLiveness", func() {
		ginkgo.It("should pass the provider verdict to the service", func() {
			service.record.Status = checkinpkg.StatusCompleted
			req := jsonRequest("POST", "/api/v1/checkin/1/liveness/complete", map[string]interface{}{
				"provider_payload": `{"score":0.99}`,
				"verified":         true,
			})

			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response checkinpkg.CheckinRecord
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.Status).To(gomega.Equal(checkinpkg.StatusCompleted))
		})

		ginkgo.It("should return bad request for invalid JSON", func() {
			req := httptest.NewRequest("POST", "/api/v1/checkin/1/liveness/complete", bytes.NewBufferString("not json"))
			req.Header.Set("Content-Type", "application/json")

			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Context("CancelCheckin", func() {
		ginkgo.It("should return the cancelled record", func() {
			service.record.Status = checkinpkg.StatusCancelled
			req := jsonRequest("POST", "/api/v1/checkin/1/cancel", nil)

			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response checkinpkg.CheckinRecord
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.Status).To(gomega.Equal(checkinpkg.StatusCancelled))
		})
	})

	ginkgo.Context("GetActiveCheckin", func() {
		ginkgo.When("no check-in is active", func() {
			ginkgo.It("should return not found", func() {
				service.getError = apperrors.ErrCheckinNotFound
				req := jsonRequest("GET", "/api/v1/checkin/reservation/1/active", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
			})
		})
	})

	ginkgo.Context("GetCheckinsByReservation", func() {
		ginkgo.It("should return the history", func() {
			service.records = []*checkinpkg.CheckinRecord{
				{ID: 2, ReservationID: 1, Status: checkinpkg.StatusInProgress},
				{ID: 1, ReservationID: 1, Status: checkinpkg.StatusCancelled},
			}
			req := jsonRequest("GET", "/api/v1/checkin/reservation/1", nil)

			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response []*checkinpkg.CheckinRecord
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response).To(gomega.HaveLen(2))
		})
	})
})
