package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
	"github.com/user/facility-scraper/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// fakeListing serves canned listing pages and records every request.
type fakeListing struct {
	pages map[int]*repository.ListingPage
	errOn map[int]error

	mu    sync.Mutex
	calls []int
}

func (f *fakeListing) FetchPage(_ context.Context, page, _ int) (*repository.ListingPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	f.mu.Unlock()

	if err, ok := f.errOn[page]; ok {
		return nil, err
	}
	if pg, ok := f.pages[page]; ok {
		return pg, nil
	}
	return &repository.ListingPage{}, nil
}

func (f *fakeListing) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeAvailability serves canned raw documents per facility ID and records
// which facilities were requested.
type fakeAvailability struct {
	responses map[int64][]byte
	errOn     map[int64]error

	mu        sync.Mutex
	requested []int64
}

func (f *fakeAvailability) FetchDaily(_ context.Context, facilityID int64, _ entity.Session, _ entity.DateWindow) ([]byte, error) {
	f.mu.Lock()
	f.requested = append(f.requested, facilityID)
	f.mu.Unlock()

	if err, ok := f.errOn[facilityID]; ok {
		return nil, err
	}
	if raw, ok := f.responses[facilityID]; ok {
		return raw, nil
	}
	return []byte(`{}`), nil
}

func (f *fakeAvailability) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requested)
}

// fakeSessions returns a fixed session or a fixed error.
type fakeSessions struct {
	session entity.Session
	err     error
	calls   int
}

func (f *fakeSessions) Acquire(context.Context) (entity.Session, error) {
	f.calls++
	if f.err != nil {
		return entity.Session{}, f.err
	}
	return f.session, nil
}

// fakeStore keeps documents in memory as marshaled JSON, mirroring how the
// real backends round-trip values.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string][]byte)}
}

func (f *fakeStore) Read(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.docs[key]
	if !ok {
		return repository.ErrDocumentNotFound
	}
	return json.Unmarshal(data, v)
}

func (f *fakeStore) Write(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[key] = data
	return nil
}

var errNetwork = errors.New("connection reset")

// makeFacilities builds n sequential facilities starting at startID, all
// bookable, spread under the given center.
func makeFacilities(startID int64, n int, center string) []entity.Facility {
	out := make([]entity.Facility, n)
	for i := range out {
		out[i] = entity.Facility{
			ID:         startID + int64(i),
			Name:       fmt.Sprintf("Facility %d", startID+int64(i)),
			TypeName:   "Meeting Room",
			CenterID:   1,
			CenterName: center,
			Bookable:   true,
		}
	}
	return out
}

func dailyDetailsDoc(date string) []byte {
	return []byte(fmt.Sprintf(
		`{"body":{"details":{"daily_details":[{"date":%q,"times":[{"start_time":"09:00:00","end_time":"10:00:00"}]}]}}}`,
		date,
	))
}

func testSession() entity.Session {
	return entity.Session{
		Cookies:    map[string]string{"JSESSIONID": "abc123"},
		AcquiredAt: time.Now(),
	}
}

func testWindow() entity.DateWindow {
	return entity.WindowFromToday(14)
}
