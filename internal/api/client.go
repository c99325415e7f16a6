// Package api is the typed REST client of the disk API. It owns the auth
// token pair, refreshes it when it runs out, and unwraps the response
// envelope into model types or *apierror.APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cloud-disk/internal/model"
	"cloud-disk/pkg/apierror"
)

const apiPrefix = "/api/v1"

// refreshLeeway is how close to expiry an access token may get before the
// client refreshes it ahead of a request.
const refreshLeeway = 30 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 80 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// envelope mirrors model.APIResponse with the payload kept raw so each call
// site decodes into its own type.
type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   *apierror.APIError `json:"error"`
}

// Login authenticates and stores the returned token pair for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*model.TokenPair, error) {
	var pair model.TokenPair
	req := model.LoginRequest{Username: username, Password: password}
	if err := c.call(ctx, http.MethodPost, apiPrefix+"/auth/login", req, &pair); err != nil {
		return nil, err
	}

	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return &pair, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	if refresh == "" {
		return model.ErrUnauthorized
	}

	var pair model.TokenPair
	req := model.RefreshRequest{RefreshToken: refresh}
	if err := c.call(ctx, http.MethodPost, apiPrefix+"/auth/refresh", req, &pair); err != nil {
		return err
	}

	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

func (c *Client) List(ctx context.Context, req model.ListRequest) (*model.ListResponse, error) {
	var out model.ListResponse
	if err := c.authed(ctx, http.MethodPost, apiPrefix+"/files/paginated", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*model.Entry, error) {
	var out model.Entry
	req := model.CreateFolderRequest{Name: name, ParentID: parentID}
	if err := c.authed(ctx, http.MethodPut, apiPrefix+"/files/createFolder", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Rename(ctx context.Context, id, name string, kind model.EntryKind) (*model.Entry, error) {
	var out model.Entry
	req := model.RenameRequest{ID: id, Name: name, Kind: kind}
	if err := c.authed(ctx, http.MethodPatch, apiPrefix+"/files/rename", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, ids []string) ([]model.Entry, error) {
	var out []model.Entry
	req := model.DeleteRequest{IDs: ids}
	if err := c.authed(ctx, http.MethodPost, apiPrefix+"/files/delete", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Move(ctx context.Context, ids []string, parentID string) ([]model.Entry, error) {
	var out []model.Entry
	req := model.MoveRequest{IDs: ids, ParentID: parentID}
	if err := c.authed(ctx, http.MethodPatch, apiPrefix+"/files/move", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Path(ctx context.Context, fileID string) ([]model.PathNode, error) {
	var out []model.PathNode
	req := model.PathRequest{FileID: fileID}
	if err := c.authed(ctx, http.MethodPost, apiPrefix+"/files/path", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns the immediate children of a folder without pagination,
// minus excludeIDs. The move dialog browses destinations with it.
func (c *Client) ListAll(ctx context.Context, fileID string, excludeIDs []string) ([]model.Entry, error) {
	var out []model.Entry
	req := model.ListAllRequest{FileID: fileID, ExcludeIDs: excludeIDs}
	if err := c.authed(ctx, http.MethodPost, apiPrefix+"/files/all", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UsedSpace(ctx context.Context) (int64, error) {
	var out model.UsedSpaceResponse
	if err := c.authed(ctx, http.MethodGet, apiPrefix+"/files/usedSpace", nil, &out); err != nil {
		return 0, err
	}
	return out.UsedSpace, nil
}

// Upload sends files as one multipart request and returns the created
// entries.
func (c *Client) Upload(ctx context.Context, parentID string, files []model.UploadFile) ([]model.Entry, error) {
	if err := c.ensureFreshToken(ctx); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("parentId", parentID); err != nil {
		return nil, fmt.Errorf("write parentId field: %w", err)
	}
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file %q: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write form file %q: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/files/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	var out []model.Entry
	if err := decodeEnvelope(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Thumbnail fetches the rendered thumbnail for an image entry. It returns the
// raw bytes and their content type.
func (c *Client) Thumbnail(ctx context.Context, id string) ([]byte, string, error) {
	if err := c.ensureFreshToken(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPrefix+"/files/thumbnail?id="+id, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build thumbnail request: %w", err)
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("thumbnail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != nil {
			env.Error.HTTPStatus = resp.StatusCode
			return nil, "", env.Error
		}
		return nil, "", apierror.New("THUMBNAIL_FAILED", "thumbnail request failed", resp.Status, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read thumbnail body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// authed performs a call with the bearer token, refreshing the pair once when
// the server rejects it as expired.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	if err := c.ensureFreshToken(ctx); err != nil {
		return err
	}

	err := c.call(ctx, method, path, body, out)

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusUnauthorized {
		if refreshErr := c.Refresh(ctx); refreshErr != nil {
			return err
		}
		return c.call(ctx, method, path, body, out)
	}

	return err
}

// ensureFreshToken refreshes ahead of time when the access token is within
// refreshLeeway of expiry. A token that cannot be parsed is left for the
// server to reject.
func (c *Client) ensureFreshToken(ctx context.Context) error {
	c.mu.Lock()
	access := c.accessToken
	refresh := c.refreshToken
	c.mu.Unlock()

	if access == "" || refresh == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	if time.Until(exp.Time) > refreshLeeway {
		return nil
	}

	return c.Refresh(ctx)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) setAuthHeader(req *http.Request) {
	c.mu.Lock()
	access := c.accessToken
	c.mu.Unlock()

	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
}

func decodeEnvelope(resp *http.Response, out any) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		if env.Error == nil {
			return apierror.New("UNEXPECTED_RESPONSE", "request failed without error payload", resp.Status, resp.StatusCode)
		}
		env.Error.HTTPStatus = resp.StatusCode
		return env.Error
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
