package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ByLCY/fragments/record"
)

func fields(title string, seq int) string {
	return fmt.Sprintf(`{"Название":%q,"Порядковый номер":%d,"Атрибут 1":["a"],"Фрагмент":"text"}`, title, seq)
}

func TestRecordsFollowsOffset(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Errorf("authorization header = %q", got)
		}
		if r.URL.Path != "/v0/appBase/tblTable" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("pageSize") != "2" {
			t.Errorf("pageSize = %q", r.URL.Query().Get("pageSize"))
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprintf(w, `{"records":[{"id":"rec3","fields":%s},{"id":"rec1","fields":%s}],"offset":"next"}`,
				fields("third", 3), fields("first", 1))
		case "next":
			fmt.Fprintf(w, `{"records":[{"id":"rec2","fields":%s}]}`, fields("second", 2))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "key123", BaseID: "appBase", TableID: "tblTable", HTTP: srv.Client(), PageSize: 2}
	recs, err := c.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 requests, got %d", calls)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, want := range []string{"rec1", "rec2", "rec3"} {
		if recs[i].ID != want {
			t.Fatalf("record %d = %s, want %s", i, recs[i].ID, want)
		}
	}
}

func TestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records":[{"id":"a","fields":{}},{"id":"b","fields":{}}]}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, BaseID: "b", TableID: "t", HTTP: srv.Client()}
	n, err := c.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}
}

func TestAPIErrorDetailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, BaseID: "b", TableID: "t", HTTP: srv.Client()}
	_, err := c.Records(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Type != "AUTHENTICATION_REQUIRED" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestAPIErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"NOT_FOUND"}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, BaseID: "b", TableID: "t", HTTP: srv.Client()}
	_, err := c.Count(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Type != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND api error, got %v", err)
	}
}

func TestRecordsValidatesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records":[{"id":"recX","fields":{"Название":"only"}}]}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, BaseID: "b", TableID: "t", HTTP: srv.Client()}
	_, err := c.Records(context.Background())
	if !errors.Is(err, record.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestEndpointRequiresIDs(t *testing.T) {
	c := &Client{}
	if _, err := c.List(context.Background()); err == nil {
		t.Fatalf("expected error without base/table IDs")
	}
}
