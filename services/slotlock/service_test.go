package slotlock

import (
	"sync"
	"testing"
	"time"

	"slotify/models"

	appointmentRepo "slotify/database/repository/appointment"
	slotlockRepo "slotify/database/repository/slotlock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLockRepo is an in-memory SlotLockRepository with the same conditional
// semantics as the Mongo implementation: the expiry check happens inside the
// same locked section as the write, and reads treat expired records as absent.
type memLockRepo struct {
	mu    sync.Mutex
	locks map[string]*models.SlotReservation
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{locks: make(map[string]*models.SlotReservation)}
}

func (r *memLockRepo) Acquire(res *models.SlotReservation) (slotlockRepo.AcquireOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := res.SlotKey.String()
	now := time.Now()
	if prev, ok := r.locks[key]; ok && prev.Live(now) {
		if prev.HolderID != res.HolderID {
			return "", slotlockRepo.ErrLockContended
		}
		if res.PaymentRef == "" {
			res.PaymentRef = prev.PaymentRef
		}
		cp := *res
		r.locks[key] = &cp
		return slotlockRepo.OutcomeExtended, nil
	}
	cp := *res
	r.locks[key] = &cp
	return slotlockRepo.OutcomeGranted, nil
}

func (r *memLockRepo) Extend(key models.SlotKey, holderID, paymentRef string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.locks[key.String()]
	if !ok || !res.Live(time.Now()) || res.HolderID != holderID {
		return false, nil
	}
	res.ExpiresAt = expiresAt
	if paymentRef != "" {
		res.PaymentRef = paymentRef
	}
	return true, nil
}

func (r *memLockRepo) GetBySlot(key models.SlotKey) (*models.SlotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.locks[key.String()]
	if !ok || !res.Live(time.Now()) {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *memLockRepo) GetByPaymentRef(ref string) (*models.SlotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, res := range r.locks {
		if res.PaymentRef == ref && res.Live(now) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLockRepo) ListByHolder(holderID string) ([]models.SlotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.SlotReservation
	now := time.Now()
	for _, res := range r.locks {
		if res.HolderID == holderID && res.Live(now) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *memLockRepo) ListAll() ([]models.SlotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.SlotReservation
	for _, res := range r.locks {
		out = append(out, *res)
	}
	return out, nil
}

func (r *memLockRepo) Delete(key models.SlotKey, holderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.locks[key.String()]
	if !ok {
		return false, nil
	}
	if holderID != "" && res.HolderID != holderID {
		return false, nil
	}
	delete(r.locks, key.String())
	return true, nil
}

func (r *memLockRepo) DeleteByPaymentRef(ref, holderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, res := range r.locks {
		if res.PaymentRef != ref {
			continue
		}
		if holderID != "" && res.HolderID != holderID {
			return false, nil
		}
		delete(r.locks, k)
		return true, nil
	}
	return false, nil
}

func (r *memLockRepo) DeleteByID(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, res := range r.locks {
		if res.ID == id {
			delete(r.locks, k)
			return true, nil
		}
	}
	return false, nil
}

func (r *memLockRepo) DeleteAllByHolder(holderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, res := range r.locks {
		if res.HolderID == holderID {
			delete(r.locks, k)
			n++
		}
	}
	return n, nil
}

func (r *memLockRepo) DeleteExpired() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now()
	for k, res := range r.locks {
		if !res.Live(now) {
			delete(r.locks, k)
			n++
		}
	}
	return n, nil
}

// memApptRepo backs the appointment check in Acquire and Status.
type memApptRepo struct {
	mu     sync.Mutex
	active map[string]*models.Appointment
}

func newMemApptRepo() *memApptRepo {
	return &memApptRepo{active: make(map[string]*models.Appointment)}
}

func (r *memApptRepo) Create(appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := appt.SlotKey.String()
	if _, ok := r.active[key]; ok {
		return appointmentRepo.ErrSlotOccupied
	}
	r.active[key] = appt
	return nil
}

func (r *memApptRepo) GetByID(id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, appt := range r.active {
		if appt.ID == id {
			return appt, nil
		}
	}
	return nil, nil
}

func (r *memApptRepo) FindActiveBySlot(key models.SlotKey) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[key.String()], nil
}

func (r *memApptRepo) ListByCustomer(customerID string) ([]models.Appointment, error) {
	return nil, nil
}

func (r *memApptRepo) UpdateStatus(id string, to models.AppointmentStatus, allowedFrom []models.AppointmentStatus, reason string) (bool, error) {
	return false, nil
}

func testKey() models.SlotKey {
	return models.SlotKey{
		ServiceOfferingID: "svc-1",
		Date:              "2026-09-01",
		FromTime:          "10:00",
		ToTime:            "11:00",
	}
}

func newTestService() (*DefaultSlotLockService, *memLockRepo, *memApptRepo) {
	locks := newMemLockRepo()
	appts := newMemApptRepo()
	return &DefaultSlotLockService{Locks: locks, Appointments: appts}, locks, appts
}

func TestAcquireFreshSlot(t *testing.T) {
	svc, _, _ := newTestService()

	res, outcome, err := svc.Acquire(testKey(), "cust-a", "pay-1")
	require.NoError(t, err)
	assert.Equal(t, slotlockRepo.OutcomeGranted, outcome)
	assert.Equal(t, "cust-a", res.HolderID)
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

func TestAcquireIncompleteKey(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Acquire(models.SlotKey{ServiceOfferingID: "svc-1"}, "cust-a", "")
	assert.Error(t, err)
}

func TestAcquireSameHolderExtends(t *testing.T) {
	svc, _, _ := newTestService()

	_, outcome, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)
	require.Equal(t, slotlockRepo.OutcomeGranted, outcome)

	res, outcome, err := svc.Acquire(testKey(), "cust-a", "pay-2")
	require.NoError(t, err)
	assert.Equal(t, slotlockRepo.OutcomeExtended, outcome)
	assert.Equal(t, "pay-2", res.PaymentRef)
}

func TestAcquireRelockKeepsPaymentRef(t *testing.T) {
	svc, locks, _ := newTestService()

	_, outcome, err := svc.Acquire(testKey(), "cust-a", "pay-1")
	require.NoError(t, err)
	require.Equal(t, slotlockRepo.OutcomeGranted, outcome)

	// Re-locking without a ref must not detach the one already attached.
	res, outcome, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)
	assert.Equal(t, slotlockRepo.OutcomeExtended, outcome)
	assert.Equal(t, "pay-1", res.PaymentRef)

	stored, err := locks.GetByPaymentRef("pay-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "cust-a", stored.HolderID)
}

func TestAcquireContendedReportsHeldUntil(t *testing.T) {
	svc, _, _ := newTestService()

	first, _, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)

	_, _, err = svc.Acquire(testKey(), "cust-b", "")
	var held *SlotHeldError
	require.ErrorAs(t, err, &held)
	assert.WithinDuration(t, first.ExpiresAt, held.HeldUntil, time.Second)
}

func TestAcquireExpiredLockIsFree(t *testing.T) {
	svc, locks, _ := newTestService()

	// Seed an already-expired reservation held by someone else. No sweep runs;
	// the conditional acquire alone must treat it as absent.
	locks.locks[testKey().String()] = &models.SlotReservation{
		ID:        "stale",
		SlotKey:   testKey(),
		HolderID:  "cust-a",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, outcome, err := svc.Acquire(testKey(), "cust-b", "")
	require.NoError(t, err)
	assert.Equal(t, slotlockRepo.OutcomeGranted, outcome)
}

func TestAcquireBookedSlot(t *testing.T) {
	svc, _, appts := newTestService()

	require.NoError(t, appts.Create(&models.Appointment{
		ID:      "appt-1",
		SlotKey: testKey(),
		Status:  models.AppointmentConfirmed,
	}))

	_, _, err := svc.Acquire(testKey(), "cust-a", "")
	assert.ErrorIs(t, err, ErrSlotBooked)
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	svc, _, _ := newTestService()

	const n = 50
	outcomes := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Acquire(testKey(), holderName(i), "")
			outcomes <- err
		}(i)
	}
	wg.Wait()
	close(outcomes)

	var granted, held int
	for err := range outcomes {
		switch {
		case err == nil:
			granted++
		default:
			var sh *SlotHeldError
			require.ErrorAs(t, err, &sh)
			held++
		}
	}
	assert.Equal(t, 1, granted, "exactly one concurrent acquirer must win")
	assert.Equal(t, n-1, held)
}

func holderName(i int) string {
	return "cust-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}

func TestReleaseByKeyRestrictedToHolder(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)

	key := testKey()
	err = svc.Release(&key, "", "cust-b")
	assert.ErrorIs(t, err, ErrLockNotFound)

	err = svc.Release(&key, "", "cust-a")
	require.NoError(t, err)

	avail, err := svc.Status(testKey(), "")
	require.NoError(t, err)
	assert.True(t, avail.Available)
}

func TestReleaseByPaymentRef(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Acquire(testKey(), "cust-a", "pay-9")
	require.NoError(t, err)

	require.NoError(t, svc.Release(nil, "pay-9", "cust-a"))
	assert.ErrorIs(t, svc.Release(nil, "pay-9", "cust-a"), ErrLockNotFound)
}

func TestReleaseRequiresKeyOrRef(t *testing.T) {
	svc, _, _ := newTestService()
	assert.Error(t, svc.Release(nil, "", "cust-a"))
}

func TestReleaseAllForHolder(t *testing.T) {
	svc, _, _ := newTestService()

	other := testKey()
	other.FromTime, other.ToTime = "12:00", "13:00"
	_, _, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)
	_, _, err = svc.Acquire(other, "cust-a", "")
	require.NoError(t, err)

	released, err := svc.ReleaseAllForHolder("cust-a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)
}

func TestStatusViews(t *testing.T) {
	svc, _, _ := newTestService()

	avail, err := svc.Status(testKey(), "cust-b")
	require.NoError(t, err)
	assert.True(t, avail.Available)

	res, _, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)

	avail, err = svc.Status(testKey(), "cust-b")
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.True(t, avail.Locked)
	assert.False(t, avail.IsOwnLock)
	require.NotNil(t, avail.LockedUntil)
	assert.WithinDuration(t, res.ExpiresAt, *avail.LockedUntil, time.Second)

	avail, err = svc.Status(testKey(), "cust-a")
	require.NoError(t, err)
	assert.True(t, avail.IsOwnLock)
}

func TestStatusBookedSlot(t *testing.T) {
	svc, _, appts := newTestService()

	require.NoError(t, appts.Create(&models.Appointment{
		ID: "appt-1", SlotKey: testKey(), Status: models.AppointmentPending,
	}))

	avail, err := svc.Status(testKey(), "")
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.True(t, avail.Booked)
}

func TestExtendUnknownLock(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Extend(testKey(), "cust-a", "")
	assert.ErrorIs(t, err, ErrLockNotFound)
}

func TestAdminReleaseIgnoresHolder(t *testing.T) {
	svc, _, _ := newTestService()

	res, _, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)

	require.NoError(t, svc.AdminRelease(res.ID))
	assert.ErrorIs(t, svc.AdminRelease(res.ID), ErrLockNotFound)
}

func TestSweepExpiredRemovesOnlyStale(t *testing.T) {
	svc, locks, _ := newTestService()

	_, _, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)

	stale := testKey()
	stale.Date = "2026-09-02"
	locks.locks[stale.String()] = &models.SlotReservation{
		ID: "stale", SlotKey: stale, HolderID: "cust-b",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	deleted, err := svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	live, err := svc.MyLocks("cust-a")
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestAcquireRetriesWhenConflictExpiresMidFlight(t *testing.T) {
	// The repo reports contention but the conflicting record is already gone
	// by the time the service looks it up. The second attempt must succeed.
	svc, _, _ := newTestService()
	flaky := &contendOnceRepo{memLockRepo: newMemLockRepo()}
	svc.Locks = flaky

	_, outcome, err := svc.Acquire(testKey(), "cust-a", "")
	require.NoError(t, err)
	assert.Equal(t, slotlockRepo.OutcomeGranted, outcome)
}

type contendOnceRepo struct {
	*memLockRepo
	contended bool
}

func (r *contendOnceRepo) Acquire(res *models.SlotReservation) (slotlockRepo.AcquireOutcome, error) {
	if !r.contended {
		r.contended = true
		return "", slotlockRepo.ErrLockContended
	}
	return r.memLockRepo.Acquire(res)
}
