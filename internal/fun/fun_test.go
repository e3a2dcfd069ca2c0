package fun

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"setup":"why","punchline":"because"}`))
	}))
	defer server.Close()

	client := NewClient()
	client.jokeURL = server.URL

	joke, err := client.Joke(context.Background())
	if err != nil {
		t.Fatalf("joke: %v", err)
	}
	if joke.Setup != "why" || joke.Punchline != "because" {
		t.Fatalf("unexpected joke: %+v", joke)
	}
}

func TestQuoteUnwrapsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"q":"stay hungry","a":"someone"}]`))
	}))
	defer server.Close()

	client := NewClient()
	client.quoteURL = server.URL

	quote, err := client.Quote(context.Background())
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Text != "stay hungry" || quote.Author != "someone" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient()
	client.memeURL = server.URL

	if _, err := client.Meme(context.Background()); err == nil {
		t.Fatalf("expected error on 502")
	}
}
