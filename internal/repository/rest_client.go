package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/incident-service/internal/auth"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

const maxResponseBytes = 1 << 20

// restClient performs authenticated JSON calls against one downstream service.
type restClient struct {
	service string
	baseURL string
	client  *http.Client
	tokens  auth.TokenProvider
}

func newRESTClient(service, baseURL string, client *http.Client, tokens auth.TokenProvider) restClient {
	if client == nil {
		client = http.DefaultClient
	}
	return restClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		tokens:  tokens,
	}
}

// do sends the request and returns the status and body. Transport failures,
// including timeouts, surface as UpstreamUnavailable.
func (r restClient) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal %s payload: %w", r.service, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", r.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.tokens != nil {
		token, err := r.tokens.Token(ctx)
		if err != nil {
			return 0, nil, apperrors.NewUnexpectedError(fmt.Errorf("%s token: %w", r.service, err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, apperrors.NewUpstreamUnavailable(fmt.Errorf("%s %s %s: %w", r.service, method, path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, apperrors.NewUpstreamUnavailable(fmt.Errorf("read %s response: %w", r.service, err))
	}
	return resp.StatusCode, data, nil
}

func (r restClient) unexpected(method, path string, status int) error {
	return apperrors.NewUnexpectedError(fmt.Errorf("%s %s %s returned status %d", r.service, method, path, status))
}

func (r restClient) decode(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.NewUnexpectedError(fmt.Errorf("decode %s response: %w", r.service, err))
	}
	return nil
}
