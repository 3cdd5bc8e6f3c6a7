// Package client is a Go client for the recipe API, with the session and
// saved-recipe stores a front end keeps.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/pkg/types"
)

const defaultTimeout = 45 * time.Second

// Recipe is a saved recipe as returned by the API
type Recipe struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Ingredients []string  `json:"ingredients"`
	IsFavorite  bool      `json:"isFavorite"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// APIError is a non-2xx response
type APIError struct {
	Status    int
	Code      string
	Message   string
	Retryable bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsNotAuthenticated reports whether err is a 401 from the API
func IsNotAuthenticated(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client calls the recipe API. Signing in or up stores the session in its
// SessionStore; every later call is authenticated with it.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionStore
}

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionStore shares a session store, usually one persisted to disk
func WithSessionStore(store *SessionStore) Option {
	return func(c *Client) { c.sessions = store }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		sessions: NewSessionStore(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sessions returns the store holding the current session
func (c *Client) Sessions() *SessionStore {
	return c.sessions
}

// GenerateRecipe asks the model gateway for a markdown recipe
func (c *Client) GenerateRecipe(ctx context.Context, ingredients, dietaryPreferences []string) (string, error) {
	req := types.GenerateRecipeRequest{
		Ingredients:        types.IngredientList(ingredients),
		DietaryPreferences: dietaryPreferences,
	}
	var resp types.GenerateRecipeResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/recipes/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Recipe, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*types.Identity, error) {
	return c.authenticate(ctx, "/api/v1/auth/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*types.Identity, error) {
	return c.authenticate(ctx, "/api/v1/auth/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*types.Identity, error) {
	var resp types.SessionResponse
	if err := c.do(ctx, http.MethodPost, path, types.CredentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := c.sessions.Set(&resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Refresh replaces the stored token with a fresh one before it expires
func (c *Client) Refresh(ctx context.Context) (*types.Identity, error) {
	var resp types.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, &resp); err != nil {
		return nil, err
	}
	if err := c.sessions.Set(&resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SignOut ends the session on the server and clears it locally. The local
// session is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.sessions.Token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/signout", nil, nil)
	if clearErr := c.sessions.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	if IsNotAuthenticated(err) {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*types.Identity, error) {
	var identity types.Identity
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *Client) SaveRecipe(ctx context.Context, content string, ingredients []string) (uuid.UUID, error) {
	var resp types.CreatedResponse
	req := types.SaveRecipeRequest{Content: &content, Ingredients: ingredients}
	if err := c.do(ctx, http.MethodPost, "/api/v1/recipes", req, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

// ListRecipes returns saved recipes newest first, filtered by query when set
func (c *Client) ListRecipes(ctx context.Context, query string) ([]Recipe, error) {
	path := "/api/v1/recipes"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var resp struct {
		Recipes []Recipe `json:"recipes"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

func (c *Client) GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, http.MethodGet, "/api/v1/recipes/"+id.String(), nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) SetFavorite(ctx context.Context, id uuid.UUID, value bool) error {
	return c.do(ctx, http.MethodPut, "/api/v1/recipes/"+id.String()+"/favorite", types.SetFavoriteRequest{IsFavorite: &value}, nil)
}

func (c *Client) SetNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/recipes/"+id.String()+"/notes", types.SetNotesRequest{Notes: &notes}, nil)
}

func (c *Client) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/recipes/"+id.String(), nil, nil)
}

func (c *Client) ExportRecipe(ctx context.Context, id uuid.UUID) (*types.ExportResponse, error) {
	var resp types.ExportResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/recipes/"+id.String()+"/export", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message   string `json:"message"`
		Code      string `json:"code"`
		Retryable bool   `json:"retryable"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Code = body.Code
		apiErr.Retryable = body.Retryable
	}
	return apiErr
}
