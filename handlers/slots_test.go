package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotify/models"
	"slotify/services/slotlock"

	slotlockRepo "slotify/database/repository/slotlock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLockService scripts the service layer so the handler's status-code
// contract can be checked in isolation.
type stubLockService struct {
	acquireRes     *models.SlotReservation
	acquireOutcome slotlockRepo.AcquireOutcome
	acquireErr     error
	extendRes      *models.SlotReservation
	extendErr      error
	releaseErr     error
	availability   *models.SlotAvailability
}

func (s *stubLockService) Acquire(key models.SlotKey, holderID, paymentRef string) (*models.SlotReservation, slotlockRepo.AcquireOutcome, error) {
	return s.acquireRes, s.acquireOutcome, s.acquireErr
}

func (s *stubLockService) Extend(key models.SlotKey, holderID, paymentRef string) (*models.SlotReservation, error) {
	return s.extendRes, s.extendErr
}

func (s *stubLockService) Release(key *models.SlotKey, paymentRef, holderID string) error {
	return s.releaseErr
}

func (s *stubLockService) ReleaseAllForHolder(holderID string) (int64, error) { return 0, nil }

func (s *stubLockService) Status(key models.SlotKey, requesterID string) (*models.SlotAvailability, error) {
	return s.availability, nil
}

func (s *stubLockService) MyLocks(holderID string) ([]models.SlotReservation, error) {
	return nil, nil
}

func (s *stubLockService) AdminList() ([]models.SlotReservation, error) { return nil, nil }
func (s *stubLockService) AdminRelease(id string) error                 { return nil }
func (s *stubLockService) SweepExpired() (int64, error)                 { return 0, nil }

func slotTestRouter(svc slotlock.SlotLockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("customerID", "cust-a")
	})
	h := NewSlotLockHandler(svc)
	r.POST("/slots/lock", h.LockSlot)
	r.POST("/slots/extend", h.ExtendSlot)
	r.POST("/slots/unlock", h.UnlockSlot)
	r.GET("/slots/check", h.CheckSlot)
	return r
}

func lockBody() []byte {
	raw, _ := json.Marshal(map[string]string{
		"serviceOfferingId": "svc-1",
		"date":              "2026-09-01",
		"fromTime":          "10:00",
		"toTime":            "11:00",
	})
	return raw
}

func postJSON(r *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLockSlotGranted(t *testing.T) {
	svc := &stubLockService{
		acquireRes:     &models.SlotReservation{ID: "res-1", HolderID: "cust-a"},
		acquireOutcome: slotlockRepo.OutcomeGranted,
	}
	w := postJSON(slotTestRouter(svc), "/slots/lock", lockBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"granted"`)
}

func TestLockSlotExtended(t *testing.T) {
	svc := &stubLockService{
		acquireRes:     &models.SlotReservation{ID: "res-1", HolderID: "cust-a"},
		acquireOutcome: slotlockRepo.OutcomeExtended,
	}
	w := postJSON(slotTestRouter(svc), "/slots/lock", lockBody())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"extended"`)
}

func TestLockSlotHeldByAnother(t *testing.T) {
	heldUntil := time.Now().Add(5 * time.Minute)
	svc := &stubLockService{acquireErr: &slotlock.SlotHeldError{HeldUntil: heldUntil}}
	w := postJSON(slotTestRouter(svc), "/slots/lock", lockBody())

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Success     bool       `json:"success"`
		LockedUntil *time.Time `json:"lockedUntil"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.LockedUntil, "conflict response must tell the caller when the hold lapses")
	assert.WithinDuration(t, heldUntil, *resp.LockedUntil, time.Second)
}

func TestLockSlotAlreadyBooked(t *testing.T) {
	svc := &stubLockService{acquireErr: slotlock.ErrSlotBooked}
	w := postJSON(slotTestRouter(svc), "/slots/lock", lockBody())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "booked")
}

func TestLockSlotMissingFields(t *testing.T) {
	svc := &stubLockService{}
	w := postJSON(slotTestRouter(svc), "/slots/lock", []byte(`{"serviceOfferingId":"svc-1"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtendSlotOK(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)
	svc := &stubLockService{extendRes: &models.SlotReservation{
		ID: "res-1", HolderID: "cust-a", ExpiresAt: until,
	}}
	w := postJSON(slotTestRouter(svc), "/slots/extend", lockBody())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"res-1"`)
}

func TestExtendSlotNoLiveLock(t *testing.T) {
	svc := &stubLockService{extendErr: slotlock.ErrLockNotFound}
	w := postJSON(slotTestRouter(svc), "/slots/extend", lockBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtendSlotMissingFields(t *testing.T) {
	svc := &stubLockService{}
	w := postJSON(slotTestRouter(svc), "/slots/extend", []byte(`{"serviceOfferingId":"svc-1"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnlockSlotNotFound(t *testing.T) {
	svc := &stubLockService{releaseErr: slotlock.ErrLockNotFound}
	w := postJSON(slotTestRouter(svc), "/slots/unlock", lockBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnlockSlotOK(t *testing.T) {
	svc := &stubLockService{}
	w := postJSON(slotTestRouter(svc), "/slots/unlock", lockBody())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckSlot(t *testing.T) {
	until := time.Now().Add(3 * time.Minute)
	svc := &stubLockService{availability: &models.SlotAvailability{
		Available: false, Locked: true, LockedUntil: &until,
	}}
	r := slotTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/slots/check?serviceOfferingId=svc-1&date=2026-09-01&fromTime=10:00&toTime=11:00", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"locked":true`)
}

func TestCheckSlotIncompleteKey(t *testing.T) {
	r := slotTestRouter(&stubLockService{})
	req := httptest.NewRequest(http.MethodGet, "/slots/check?serviceOfferingId=svc-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
