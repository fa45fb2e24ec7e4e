package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		WatchBase:      srv.URL,
		TimedTextBases: []string{srv.URL},
		BackoffBase:    time.Millisecond,
	})
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := testClient(srv)
	body, err := c.fetch(context.Background(), srv.URL+"/x", nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if calls.Load() != 3 {
		t.Errorf("got %d calls, want 3", calls.Load())
	}
}

func TestFetch_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv)
	_, err := c.fetch(context.Background(), srv.URL+"/x", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("got %d calls, want 1 (404 must not be retried)", calls.Load())
	}
}

func TestFetch_ExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(srv)
	_, err := c.fetch(context.Background(), srv.URL+"/x", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != defaultMaxAttempts {
		t.Errorf("got %d calls, want %d", calls.Load(), defaultMaxAttempts)
	}
}

func TestDirectFetcher_FirstUsableVariantWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Manual English track is empty; ASR track has content.
		if r.URL.Query().Get("kind") == "asr" {
			fmt.Fprint(w, timedTextXML(25, "auto generated caption content"))
			return
		}
		fmt.Fprint(w, "<transcript></transcript>")
	}))
	defer srv.Close()

	c := testClient(srv)
	f := &directFetcher{c: c}

	res, err := f.Attempt(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Source != SourceTimedText {
		t.Errorf("Source = %q, want %q", res.Source, SourceTimedText)
	}
	if len(res.Segments) != 25 {
		t.Errorf("got %d segments, want 25", len(res.Segments))
	}
}

func TestDirectFetcher_AllVariantsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<transcript></transcript>")
	}))
	defer srv.Close()

	c := testClient(srv)
	f := &directFetcher{c: c}
	if _, err := f.Attempt(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected error when every variant is empty")
	}
}

func TestTrackListFetcher(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") == "list" {
			fmt.Fprint(w, `<transcript_list>
<track id="0" lang_code="de" name="" kind=""/>
<track id="1" lang_code="en-US" name="English" kind=""/>
</transcript_list>`)
			return
		}
		if q.Get("lang") != "en-US" {
			t.Errorf("fetched lang %q, want en-US", q.Get("lang"))
		}
		fmt.Fprint(w, timedTextXML(40, "a reasonably long caption cue"))
	})

	c := testClient(srv)
	f := &trackListFetcher{c: c}

	res, err := f.Attempt(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Lang != "en-US" {
		t.Errorf("Lang = %q, want en-US", res.Lang)
	}
	if res.Source != SourceTrackList {
		t.Errorf("Source = %q, want %q", res.Source, SourceTrackList)
	}
}

func TestTrackListFetcher_NoTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<transcript_list></transcript_list>")
	}))
	defer srv.Close()

	c := testClient(srv)
	f := &trackListFetcher{c: c}
	if _, err := f.Attempt(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected error when no tracks are listed")
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{LangCode: "fr", Kind: ""},
		{LangCode: "en", Kind: "asr"},
		{LangCode: "en-GB", Kind: ""},
	}

	got, ok := pickTrack(tracks, "en")
	if !ok {
		t.Fatal("pickTrack returned no track")
	}
	// Manual English beats auto-generated English.
	if got.LangCode != "en-GB" {
		t.Errorf("picked %q, want en-GB", got.LangCode)
	}

	got, ok = pickTrack(tracks, "ja")
	if !ok || got.LangCode != "fr" {
		t.Errorf("with no match, picked %q, want first track fr", got.LangCode)
	}

	if _, ok := pickTrack(nil, "en"); ok {
		t.Error("pickTrack(nil) should report no track")
	}
}

func TestFetchTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oembed" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"title":"Never Gonna Give You Up","author_name":"Rick Astley"}`)
	}))
	defer srv.Close()

	c := testClient(srv)
	title, err := c.FetchTitle(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if title != "Never Gonna Give You Up" {
		t.Errorf("title = %q", title)
	}
}
