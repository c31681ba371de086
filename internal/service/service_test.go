package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tuncerburak97/apistats/internal/metrics"
	"github.com/tuncerburak97/apistats/internal/model"
)

// fakeRepo is an in-memory CallRepository that mirrors the store contract:
// aggregates computed over saved records, (nil, nil) on empty reads.
type fakeRepo struct {
	mu        sync.Mutex
	saved     []*model.CallRecord
	contacted bool
	saveErr   error
	readErr   error
	pingErr   error
}

func (f *fakeRepo) SaveCall(ctx context.Context, rec *model.CallRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacted = true
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *rec
	f.saved = append(f.saved, &clone)
	return nil
}

func (f *fakeRepo) LastCalled(ctx context.Context) (*model.CallRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacted = true
	if f.readErr != nil {
		return nil, f.readErr
	}
	var last *model.CallRecord
	for _, rec := range f.saved {
		if last == nil || !rec.CalledAt.Before(last.CalledAt) {
			last = rec
		}
	}
	if last == nil {
		return nil, nil
	}
	clone := *last
	return &clone, nil
}

func (f *fakeRepo) MostFrequent(ctx context.Context) (*model.EndpointCount, error) {
	counts, err := f.Counts(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, nil
	}
	return &counts[0], nil
}

func (f *fakeRepo) Counts(ctx context.Context) ([]model.EndpointCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacted = true
	if f.readErr != nil {
		return nil, f.readErr
	}
	byEndpoint := make(map[string]int64)
	for _, rec := range f.saved {
		byEndpoint[rec.Endpoint]++
	}
	counts := make([]model.EndpointCount, 0, len(byEndpoint))
	for endpoint, count := range byEndpoint {
		counts = append(counts, model.EndpointCount{Endpoint: endpoint, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

func (f *fakeRepo) Ping(ctx context.Context) error {
	f.contacted = true
	return f.pingErr
}

func (f *fakeRepo) Migrate(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                      { return nil }

func newTestServices(repo *fakeRepo) (*Recorder, *StatsReader) {
	logger := zerolog.Nop()
	m := metrics.GetMetricsCollector("apistats_test", "apistats_test")
	return NewRecorder(repo, 5*time.Second, &logger, m),
		NewStatsReader(repo, 5*time.Second, &logger, m)
}

func TestRecordPersistsRecord(t *testing.T) {
	repo := &fakeRepo{}
	recorder, reader := newTestServices(repo)

	before := time.Now().UTC()
	err := recorder.Record(context.Background(), &model.CallRecord{
		Endpoint:  "/api/users",
		Method:    "GET",
		IPAddress: "203.0.113.5",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	rec, err := reader.LastCalled(context.Background())
	if err != nil {
		t.Fatalf("LastCalled failed: %v", err)
	}
	if rec == nil {
		t.Fatal("LastCalled returned nil after a successful Record")
	}
	if rec.Endpoint != "/api/users" || rec.Method != "GET" || rec.IPAddress != "203.0.113.5" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.CalledAt.Before(before) {
		t.Errorf("called_at %v is before the call was made (%v)", rec.CalledAt, before)
	}
}

func TestRecordDefaults(t *testing.T) {
	repo := &fakeRepo{}
	recorder, _ := newTestServices(repo)

	if err := recorder.Record(context.Background(), &model.CallRecord{Endpoint: "/a"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	rec := repo.saved[0]
	if rec.Method != model.DefaultMethod {
		t.Errorf("method = %q, want %q", rec.Method, model.DefaultMethod)
	}
	if rec.StatusCode != model.DefaultStatusCode {
		t.Errorf("status_code = %d, want %d", rec.StatusCode, model.DefaultStatusCode)
	}
}

func TestRecordEmptyEndpoint(t *testing.T) {
	repo := &fakeRepo{}
	recorder, _ := newTestServices(repo)

	err := recorder.Record(context.Background(), &model.CallRecord{Method: "GET"})
	if !errors.Is(err, ErrEndpointRequired) {
		t.Fatalf("err = %v, want ErrEndpointRequired", err)
	}
	if repo.contacted {
		t.Error("store was contacted for a doomed write")
	}
}

func TestRecordWriteFailure(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("connection refused")}
	recorder, _ := newTestServices(repo)

	err := recorder.Record(context.Background(), &model.CallRecord{Endpoint: "/a"})
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("err = %v, want ErrWriteFailed", err)
	}
}

func TestLastCalledEmpty(t *testing.T) {
	repo := &fakeRepo{}
	_, reader := newTestServices(repo)

	rec, err := reader.LastCalled(context.Background())
	if err != nil {
		t.Fatalf("LastCalled failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record on empty table, got %+v", rec)
	}
}

func TestCountsEmpty(t *testing.T) {
	repo := &fakeRepo{}
	_, reader := newTestServices(repo)

	counts, err := reader.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts == nil {
		t.Fatal("Counts returned nil, want empty slice")
	}
	if len(counts) != 0 {
		t.Errorf("Counts = %v, want empty", counts)
	}
}

func TestCountsAggregatesAndOrders(t *testing.T) {
	repo := &fakeRepo{}
	recorder, reader := newTestServices(repo)

	for _, endpoint := range []string{"/a", "/a", "/b"} {
		if err := recorder.Record(context.Background(), &model.CallRecord{Endpoint: endpoint}); err != nil {
			t.Fatalf("Record(%s) failed: %v", endpoint, err)
		}
	}

	counts, err := reader.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}

	want := []model.EndpointCount{{Endpoint: "/a", Count: 2}, {Endpoint: "/b", Count: 1}}
	if len(counts) != len(want) {
		t.Fatalf("Counts = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestMostFrequent(t *testing.T) {
	repo := &fakeRepo{}
	recorder, reader := newTestServices(repo)

	for _, endpoint := range []string{"/a", "/a", "/a", "/b"} {
		if err := recorder.Record(context.Background(), &model.CallRecord{Endpoint: endpoint}); err != nil {
			t.Fatalf("Record(%s) failed: %v", endpoint, err)
		}
	}

	ec, err := reader.MostFrequent(context.Background())
	if err != nil {
		t.Fatalf("MostFrequent failed: %v", err)
	}
	if ec == nil || ec.Endpoint != "/a" || ec.Count != 3 {
		t.Errorf("MostFrequent = %+v, want /a with count 3", ec)
	}
}

func TestMostFrequentEmpty(t *testing.T) {
	repo := &fakeRepo{}
	_, reader := newTestServices(repo)

	ec, err := reader.MostFrequent(context.Background())
	if err != nil {
		t.Fatalf("MostFrequent failed: %v", err)
	}
	if ec != nil {
		t.Errorf("expected nil on empty table, got %+v", ec)
	}
}

func TestReadFailure(t *testing.T) {
	repo := &fakeRepo{readErr: errors.New("connection refused")}
	_, reader := newTestServices(repo)

	if _, err := reader.LastCalled(context.Background()); !errors.Is(err, ErrReadFailed) {
		t.Errorf("LastCalled err = %v, want ErrReadFailed", err)
	}
	if _, err := reader.MostFrequent(context.Background()); !errors.Is(err, ErrReadFailed) {
		t.Errorf("MostFrequent err = %v, want ErrReadFailed", err)
	}
	if _, err := reader.Counts(context.Background()); !errors.Is(err, ErrReadFailed) {
		t.Errorf("Counts err = %v, want ErrReadFailed", err)
	}
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		want    bool
	}{
		{name: "reachable", pingErr: nil, want: true},
		{name: "unreachable", pingErr: errors.New("no route to host"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reader := newTestServices(&fakeRepo{pingErr: tt.pingErr})
			if got := reader.CheckHealth(context.Background()); got != tt.want {
				t.Errorf("CheckHealth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConcurrentRecords(t *testing.T) {
	repo := &fakeRepo{}
	recorder, reader := newTestServices(repo)

	var wg sync.WaitGroup
	for _, endpoint := range []string{"/x", "/y"} {
		wg.Add(1)
		go func(endpoint string) {
			defer wg.Done()
			if err := recorder.Record(context.Background(), &model.CallRecord{Endpoint: endpoint}); err != nil {
				t.Errorf("Record(%s) failed: %v", endpoint, err)
			}
		}(endpoint)
	}
	wg.Wait()

	counts, err := reader.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	seen := make(map[string]int64)
	for _, ec := range counts {
		seen[ec.Endpoint] = ec.Count
	}
	if seen["/x"] != 1 || seen["/y"] != 1 {
		t.Errorf("counts = %v, want /x and /y each once", seen)
	}
}
