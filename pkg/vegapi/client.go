package vegapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/freshveg/basket-agent/internal/errors"
)

// TokenSource supplies the current access token for outgoing requests.
// An empty token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// Client talks to the server-owned cart and wishlist collections.
type Client struct {
	config     Config
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a grocery API client with the given configuration.
func NewClient(config Config, tokens TokenSource) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// FetchCart loads the server-owned cart collection.
func (c *Client) FetchCart(ctx context.Context) (*CartPayload, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "cart", nil)
	if err != nil {
		return nil, err
	}

	var cart CartPayload
	if err := json.Unmarshal(body, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart response: %w", err)
	}
	return &cart, nil
}

// AddCartItem adds or merges a cart row and returns the authoritative row.
func (c *Client) AddCartItem(ctx context.Context, req AddCartItemRequest) (*CartItemPayload, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "cart/items", req)
	if err != nil {
		return nil, err
	}

	var item CartItemPayload
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart item response: %w", err)
	}
	return &item, nil
}

// UpdateCartItem replaces the quantity of a cart row.
func (c *Client) UpdateCartItem(ctx context.Context, vegetableID uint, quantity int) (*CartItemPayload, error) {
	path := fmt.Sprintf("cart/items/%d", vegetableID)
	body, err := c.doRequest(ctx, http.MethodPut, path, UpdateCartItemRequest{Quantity: quantity})
	if err != nil {
		return nil, err
	}

	var item CartItemPayload
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart item response: %w", err)
	}
	return &item, nil
}

// DeleteCartItem removes a cart row.
func (c *Client) DeleteCartItem(ctx context.Context, vegetableID uint) error {
	path := fmt.Sprintf("cart/items/%d", vegetableID)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

// FetchWishlist loads the server-owned wishlist collection.
func (c *Client) FetchWishlist(ctx context.Context) (*WishlistPayload, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "wishlist", nil)
	if err != nil {
		return nil, err
	}

	var wishlist WishlistPayload
	if err := json.Unmarshal(body, &wishlist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wishlist response: %w", err)
	}
	return &wishlist, nil
}

// ToggleWishlist flips wishlist membership for the vegetable.
func (c *Client) ToggleWishlist(ctx context.Context, vegetableID uint) (*TogglePayload, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "wishlist/toggle", ToggleWishlistRequest{VegetableID: vegetableID})
	if err != nil {
		return nil, err
	}

	var toggle TogglePayload
	if err := json.Unmarshal(body, &toggle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal toggle response: %w", err)
	}
	return &toggle, nil
}

// AddWishlistItem creates or merges a wishlist row. Idempotent on the
// server side; used by the login-time merge.
func (c *Client) AddWishlistItem(ctx context.Context, req AddWishlistItemRequest) (*WishlistItemPayload, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "wishlist/items", req)
	if err != nil {
		return nil, err
	}

	var item WishlistItemPayload
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wishlist item response: %w", err)
	}
	return &item, nil
}

// doRequest performs an HTTP request and classifies failures into the
// sentinel errors of this package.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	info := apperrors.ParseRemoteError(resp.StatusCode, body)
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       info.Code,
		Message:    info.Message,
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Kind = ErrUnauthorized
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		apiErr.Kind = ErrValidation
	default:
		apiErr.Kind = ErrServer
	}
	return nil, apiErr
}
