// Package fun wraps the public joke/meme/quote APIs behind single-shot
// requests. No retries; a failed fetch becomes a short user-facing
// notice upstream.
package fun

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	jokeURL  = "https://official-joke-api.appspot.com/random_joke"
	memeURL  = "https://meme-api.com/gimme"
	quoteURL = "https://zenquotes.io/api/random"
)

type Joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

type Meme struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Quote struct {
	Text   string `json:"q"`
	Author string `json:"a"`
}

type Client struct {
	httpClient *http.Client
	jokeURL    string
	memeURL    string
	quoteURL   string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		jokeURL:    jokeURL,
		memeURL:    memeURL,
		quoteURL:   quoteURL,
	}
}

func (c *Client) Joke(ctx context.Context) (Joke, error) {
	var joke Joke
	if err := c.getJSON(ctx, c.jokeURL, &joke); err != nil {
		return Joke{}, err
	}
	return joke, nil
}

func (c *Client) Meme(ctx context.Context) (Meme, error) {
	var meme Meme
	if err := c.getJSON(ctx, c.memeURL, &meme); err != nil {
		return Meme{}, err
	}
	return meme, nil
}

func (c *Client) Quote(ctx context.Context) (Quote, error) {
	// zenquotes wraps the quote in a one-element array
	var quotes []Quote
	if err := c.getJSON(ctx, c.quoteURL, &quotes); err != nil {
		return Quote{}, err
	}
	if len(quotes) == 0 {
		return Quote{}, fmt.Errorf("empty quote response")
	}
	return quotes[0], nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
