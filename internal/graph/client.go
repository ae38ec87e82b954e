// Package graph работает с Facebook Graph API: авторизация, обмен кода, данные аккаунта.
package graph

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

	"golang.org/x/oauth2"

	"github.com/ignatzorin/brandlink-backend/internal/models"
)

const (
	defaultDialogBaseURL = "https://www.facebook.com"
	defaultGraphBaseURL  = "https://graph.facebook.com"
	maxResponseBytes     = 1 << 20
)

// Scopes права, запрашиваемые у пользователя при привязке.
var Scopes = []string{
	"pages_show_list",
	"pages_manage_posts",
	"instagram_basic",
	"instagram_manage_comments",
}

var (
	// ErrRejected Graph API вернул JSON ошибку или неуспешный статус.
	ErrRejected = errors.New("graph: request rejected")
	// ErrUnexpectedResponse ответ не является JSON (например, HTML страница).
	ErrUnexpectedResponse = errors.New("graph: unexpected response")
)

// APIError ошибка, которую вернул Graph API. Сообщение только для логов.
type APIError struct {
	Status  int
	Message string
	Type    string
	Code    int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: status %d: %s (%s, code %d)", e.Status, e.Message, e.Type, e.Code)
}

func (e *APIError) Unwrap() error { return ErrRejected }

// Config параметры приложения Meta.
type Config struct {
	AppID       string
	AppSecret   string
	RedirectURI string
	Version     string
	Timeout     time.Duration

	// Базовые адреса переопределяются в тестах.
	DialogBaseURL string
	GraphBaseURL  string
}

// Client клиент Graph API.
type Client struct {
	oauth      *oauth2.Config
	graphURL   string
	httpClient *http.Client
}

// NewClient создаёт клиента Graph API.
func NewClient(cfg Config) *Client {
	dialogBase := cfg.DialogBaseURL
	if dialogBase == "" {
		dialogBase = defaultDialogBaseURL
	}
	graphBase := cfg.GraphBaseURL
	if graphBase == "" {
		graphBase = defaultGraphBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	graphURL := strings.TrimRight(graphBase, "/") + "/" + cfg.Version

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  strings.TrimRight(dialogBase, "/") + "/" + cfg.Version + "/dialog/oauth",
				TokenURL: graphURL + "/oauth/access_token",
			},
		},
		graphURL:   graphURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL возвращает адрес диалога авторизации. state переносит платформу.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	Error       *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// Exchange обменивает код авторизации на токен доступа.
// Graph отвечает на обмен через GET, поэтому запрос собирается вручную.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	q := url.Values{}
	q.Set("client_id", c.oauth.ClientID)
	q.Set("client_secret", c.oauth.ClientSecret)
	q.Set("redirect_uri", c.oauth.RedirectURL)
	q.Set("code", code)

	status, body, err := c.get(ctx, c.oauth.Endpoint.TokenURL+"?"+q.Encode(), "")
	if err != nil {
		return nil, fmt.Errorf("graph: exchange code: %w", err)
	}

	var resp tokenResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("graph: exchange code: %w", err)
	}
	if status < 200 || status >= 300 || resp.Error != nil || resp.AccessToken == "" {
		return nil, toAPIError(status, resp.Error)
	}

	token := &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
	}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return token, nil
}

// AccountID возвращает идентификатор аккаунта владельца токена (/me).
func (c *Client) AccountID(ctx context.Context, accessToken string) (string, error) {
	status, body, err := c.get(ctx, c.graphURL+"/me?fields=id", accessToken)
	if err != nil {
		return "", fmt.Errorf("graph: me: %w", err)
	}

	var resp struct {
		ID    string    `json:"id"`
		Error *apiError `json:"error"`
	}
	if err := decode(body, &resp); err != nil {
		return "", fmt.Errorf("graph: me: %w", err)
	}
	if status < 200 || status >= 300 || resp.Error != nil {
		return "", toAPIError(status, resp.Error)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("graph: me: %w: empty id", ErrUnexpectedResponse)
	}
	return resp.ID, nil
}

// Pages возвращает страницы, которыми управляет владелец токена (/me/accounts).
func (c *Client) Pages(ctx context.Context, accessToken string) ([]models.Page, error) {
	status, body, err := c.get(ctx, c.graphURL+"/me/accounts", accessToken)
	if err != nil {
		return nil, fmt.Errorf("graph: accounts: %w", err)
	}

	var resp struct {
		Data  []models.Page `json:"data"`
		Error *apiError     `json:"error"`
	}
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("graph: accounts: %w", err)
	}
	if status < 200 || status >= 300 || resp.Error != nil {
		return nil, toAPIError(status, resp.Error)
	}
	if resp.Data == nil {
		resp.Data = []models.Page{}
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, rawURL, bearer string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// decode разбирает JSON ответ. Ответ, начинающийся с "<", считается HTML.
func decode(body []byte, v interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return fmt.Errorf("%w: html body", ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

func toAPIError(status int, e *apiError) *APIError {
	apiErr := &APIError{Status: status}
	if e != nil {
		apiErr.Message = e.Message
		apiErr.Type = e.Type
		apiErr.Code = e.Code
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
