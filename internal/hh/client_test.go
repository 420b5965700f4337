package hh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:    srv.URL,
		UserAgent:  "vacancydb-test/1.0",
		HTTPClient: srv.Client(),
	}, testLogger())
}

func TestFetchEmployers_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/employers/1740" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "1740",
			"name": "Яндекс",
			"alternate_url": "https://hh.ru/employer/1740",
			"open_vacancies": 1234,
			"site_url": "https://yandex.ru"
		}`))
	}))
	defer srv.Close()

	employers, err := newTestClient(srv).FetchEmployers(context.Background(), []string{"1740"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(employers) != 1 {
		t.Fatalf("expected 1 employer, got %d", len(employers))
	}
	e := employers[0]
	if e.ID != 1740 || e.Name != "Яндекс" || e.URL != "https://hh.ru/employer/1740" || e.OpenVacancies != 1234 {
		t.Errorf("unexpected employer: %+v", e)
	}
}

func TestFetchEmployers_SkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/employers/1":
			w.Write([]byte(`{"id": "1", "name": "One", "alternate_url": "u1", "open_vacancies": 1}`))
		case "/employers/2":
			http.NotFound(w, r)
		case "/employers/3":
			w.Write([]byte(`{not json`))
		case "/employers/4":
			w.Write([]byte(`{"id": "4", "name": "Four", "alternate_url": "u4", "open_vacancies": 0}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	employers, err := newTestClient(srv).FetchEmployers(context.Background(), []string{"1", "2", "3", "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(employers) != 2 {
		t.Fatalf("expected 2 employers, got %d: %+v", len(employers), employers)
	}
	if employers[0].ID != 1 || employers[1].ID != 4 {
		t.Errorf("expected IDs [1 4] in order, got %d, %d", employers[0].ID, employers[1].ID)
	}
}

func TestFetchEmployer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchEmployer(context.Background(), "1740")
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q should mention the status", err)
	}
}

func TestFetchEmployers_EmptyInput(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	employers, err := newTestClient(srv).FetchEmployers(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&hits); len(employers) != 0 || n != 0 {
		t.Errorf("expected no employers and no requests, got %d and %d", len(employers), n)
	}
}

func TestFetchVacancies_Paginates(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		requests = append(requests, q.Get("page"))
		mu.Unlock()
		if q.Get("employer_id") != "1740" {
			t.Errorf("employer_id = %q, want 1740", q.Get("employer_id"))
		}
		if q.Get("per_page") != "100" {
			t.Errorf("per_page = %q, want 100", q.Get("per_page"))
		}
		page := q.Get("page")
		fmt.Fprintf(w, `{"items": [{"id": "10%s", "name": "Dev %s", "salary": null, "alternate_url": "https://hh.ru/vacancy/10%s"}], "page": %s, "pages": 3, "found": 3}`,
			page, page, page, page)
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv).FetchVacancies(context.Background(), "1740")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	got := strings.Join(requests, ",")
	mu.Unlock()
	if got != "0,1,2" {
		t.Errorf("requested pages %s, want 0,1,2", got)
	}
	if len(vacancies) != 3 {
		t.Fatalf("expected 3 vacancies, got %d", len(vacancies))
	}
	for i, want := range []int64{100, 101, 102} {
		if vacancies[i].ID != want {
			t.Errorf("vacancies[%d].ID = %d, want %d", i, vacancies[i].ID, want)
		}
		if vacancies[i].EmployerID != 1740 {
			t.Errorf("vacancies[%d].EmployerID = %d, want 1740", i, vacancies[i].EmployerID)
		}
	}
}

func TestFetchVacancies_SinglePage(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"items": [], "page": 0, "pages": 1, "found": 0}`))
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv).FetchVacancies(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vacancies) != 0 {
		t.Errorf("expected 0 vacancies, got %d", len(vacancies))
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected exactly 1 request, got %d", n)
	}
}

func TestFetchVacancies_ZeroPages(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"items": [], "page": 0, "pages": 0, "found": 0}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).FetchVacancies(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected exactly 1 request, got %d", n)
	}
}

func TestFetchVacancies_SalaryDecomposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"id": "1", "name": "Both", "salary": {"from": 100000, "to": 150000, "currency": "RUR", "gross": true}, "alternate_url": "u1"},
			{"id": "2", "name": "FromOnly", "salary": {"from": 200000, "to": null, "currency": "RUR"}, "alternate_url": "u2"},
			{"id": "3", "name": "NoSalary", "salary": null, "alternate_url": "u3"}
		], "page": 0, "pages": 1}`))
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv).FetchVacancies(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vacancies) != 3 {
		t.Fatalf("expected 3 vacancies, got %d", len(vacancies))
	}

	both := vacancies[0]
	if both.SalaryFrom == nil || *both.SalaryFrom != 100000 || both.SalaryTo == nil || *both.SalaryTo != 150000 {
		t.Errorf("Both salary = %v-%v", both.SalaryFrom, both.SalaryTo)
	}
	if both.Currency == nil || *both.Currency != "RUR" {
		t.Errorf("Both currency = %v", both.Currency)
	}

	fromOnly := vacancies[1]
	if fromOnly.SalaryFrom == nil || *fromOnly.SalaryFrom != 200000 || fromOnly.SalaryTo != nil {
		t.Errorf("FromOnly salary = %v-%v", fromOnly.SalaryFrom, fromOnly.SalaryTo)
	}

	none := vacancies[2]
	if none.SalaryFrom != nil || none.SalaryTo != nil || none.Currency != nil {
		t.Errorf("NoSalary should have no salary fields: %+v", none)
	}
	if none.Title != "NoSalary" || none.URL != "u3" {
		t.Errorf("unexpected vacancy: %+v", none)
	}
}

func TestFetchVacancies_PageFailureKeepsEarlierPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"items": [{"id": "1", "name": "First", "alternate_url": "u1"}], "page": 0, "pages": 5}`))
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv).FetchVacancies(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vacancies) != 1 || vacancies[0].ID != 1 {
		t.Errorf("expected only the first page's vacancy, got %+v", vacancies)
	}
}

func TestFetchVacancies_SkipsBadIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"id": "abc", "name": "Bad", "alternate_url": "u0"},
			{"id": "7", "name": "Good", "alternate_url": "u7"}
		], "page": 0, "pages": 1}`))
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv).FetchVacancies(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vacancies) != 1 || vacancies[0].ID != 7 {
		t.Errorf("expected only vacancy 7, got %+v", vacancies)
	}
}

func TestFetchAllVacancies_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("employer_id")
		fmt.Fprintf(w, `{"items": [{"id": "%s00", "name": "Job", "alternate_url": "u"}], "page": 0, "pages": 1}`, id)
	}))
	defer srv.Close()

	vacancies, err := newTestClient(srv).FetchAllVacancies(context.Background(), []string{"3", "1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vacancies) != 3 {
		t.Fatalf("expected 3 vacancies, got %d", len(vacancies))
	}
	for i, want := range []int64{3, 1, 2} {
		if vacancies[i].EmployerID != want {
			t.Errorf("vacancies[%d].EmployerID = %d, want %d", i, vacancies[i].EmployerID, want)
		}
	}
}

func TestRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "vacancydb-test/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Write([]byte(`{"id": "1", "name": "One"}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).FetchEmployer(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchEmployers_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "1", "name": "One"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(srv).FetchEmployers(ctx, []string{"1"}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{}, testLogger())
	if c.baseURL != "https://api.hh.ru" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.perPage != 100 {
		t.Errorf("perPage = %d", c.perPage)
	}
	if c.httpClient == nil || c.httpClient.Timeout == 0 {
		t.Error("expected a default client with a timeout")
	}
}
