package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

type apiClient struct {
	baseURL string
	http    *http.Client
	session Session
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// do sends an authenticated request with in as the JSON body (when non-nil) and decodes the
// response into out (when non-nil). Non-2xx responses come back as *errorutil.DomainError
// carrying the server's code.
func (a *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	client := a.http
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.baseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.session != nil {
		if token := a.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env errorEnvelope
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(body, &env) != nil || env.Error.Code == "" {
			env.Error.Code = "UNEXPECTED_STATUS"
			env.Error.Message = fmt.Sprintf("%s %s: %s", method, path, resp.Status)
		}
		return apperrors.NewDomainError(env.Error.Code, env.Error.Message, resp.StatusCode, env.Error.Details)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
