package wechat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClientInf http 客户端接口
// 返回的错误为 *TransportError，原始错误可通过 errors.Unwrap 获取
type HTTPClientInf interface {
	Get(ctx context.Context, url string) (string, error)
}

type httpClient struct {
	client *http.Client
}

// NewHTTPClient 创建默认 http 客户端
func NewHTTPClient(timeout time.Duration) HTTPClientInf {
	return &httpClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (h *httpClient) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Cause: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	return string(body), nil
}

var defaultClient = NewHTTPClient(10 * time.Second)
