package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

const (
	// DefaultFetchTimeout wait_time 为0时使用的请求超时
	DefaultFetchTimeout = 30 * time.Second

	maxBodySize = 20 * 1024 * 1024
)

// HTTPStatusError 4xx/5xx 状态码
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s [%s]", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// StaticFetcher 基于colly的单页获取器,同步执行,不重试
type StaticFetcher struct {
	base           *colly.Collector
	headerProvider models.HeaderProvider
}

// NewStaticFetcher 创建获取器
func NewStaticFetcher(config models.CrawlConfig, headerProvider models.HeaderProvider) *StaticFetcher {
	timeout := time.Duration(config.WaitTime) * time.Second
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	// 同一URL在一次遍历中会被请求两次(提取链接和获取内容),必须允许重复访问
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(maxBodySize),
		// 状态码由 OnResponse 自行判断,colly 默认会把 203 及以上都当作错误
		colly.ParseHTTPErrorResponse(),
	)

	c.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: config.InsecureTLS},
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 4,
	})
	c.SetRequestTimeout(timeout)

	if config.InsecureTLS {
		utils.Debugf("获取器: TLS证书验证已禁用")
	}
	utils.Debugf("获取器: 请求超时 %d 秒", int(timeout.Seconds()))

	return &StaticFetcher{
		base:           c,
		headerProvider: headerProvider,
	}
}

// Fetch 获取页面,传输失败或 4xx/5xx 状态码都返回错误
func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) (*models.FetchedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.base.Clone()
	c.Context = ctx

	var (
		page     *models.FetchedPage
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= http.StatusBadRequest {
			fetchErr = &HTTPStatusError{URL: pageURL, StatusCode: r.StatusCode}
			return
		}

		contentEncoding := r.Headers.Get("Content-Encoding")
		body, err := decompressBody(contentEncoding, r.Body)
		if err != nil {
			utils.Warnf("解压响应失败 [%s] (编码=%s): %v", pageURL, contentEncoding, err)
			body = r.Body
		}

		page = &models.FetchedPage{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        body,
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			fetchErr = &HTTPStatusError{URL: pageURL, StatusCode: r.StatusCode}
			return
		}
		fetchErr = fmt.Errorf("请求失败 [%s]: %w", pageURL, err)
	})

	err := c.Request(http.MethodGet, pageURL, nil, nil, f.requestHeaders())
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err != nil {
		return nil, fmt.Errorf("请求失败 [%s]: %w", pageURL, err)
	}
	if page == nil {
		return nil, fmt.Errorf("未收到响应 [%s]", pageURL)
	}

	utils.Debugf("获取成功 [%s]: 状态=%d, 大小=%d bytes", pageURL, page.StatusCode, len(page.Body))
	return page, nil
}

func (f *StaticFetcher) requestHeaders() http.Header {
	hdr := make(http.Header)
	if f.headerProvider == nil {
		return hdr
	}

	headers, err := f.headerProvider.GetHeaders()
	if err != nil {
		utils.Warnf("获取HTTP头部失败: %v", err)
		return hdr
	}
	for name, values := range headers {
		if len(values) > 0 {
			hdr[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
		}
	}
	return hdr
}

// decompressBody 根据Content-Encoding解压响应体
// colly 已自行处理过 gzip 时头部仍然保留,因此先检查 gzip 魔数
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip", "x-gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
