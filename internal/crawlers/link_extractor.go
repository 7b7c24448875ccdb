package crawlers

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"golang.org/x/net/publicsuffix"
)

// PageFetcher 获取单个页面
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*models.FetchedPage, error)
}

// LinkExtractor 获取页面并返回过滤后的链接
type LinkExtractor struct {
	fetcher   PageFetcher
	siteToken string
}

// NewLinkExtractor siteToken 为空时只保留以 "/" 开头的相对链接
func NewLinkExtractor(fetcher PageFetcher, siteToken string) *LinkExtractor {
	return &LinkExtractor{
		fetcher:   fetcher,
		siteToken: siteToken,
	}
}

// SiteToken 当前使用的站点标识
func (e *LinkExtractor) SiteToken() string {
	return e.siteToken
}

// Extract 获取失败、非HTML或解析失败时记录警告并返回空集合
func (e *LinkExtractor) Extract(ctx context.Context, pageURL string) models.LinkSet {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		utils.Warnf("提取链接失败 [%s]: %v", pageURL, err)
		return models.LinkSet{}
	}

	if !page.IsHTML() {
		utils.Debugf("跳过非HTML页面的链接提取 [%s]: %s", pageURL, page.ContentType)
		return models.LinkSet{}
	}

	links, err := ExtractFromHTML(page.Body, pageURL, e.siteToken)
	if err != nil {
		utils.Warnf("提取链接失败 [%s]: %v", pageURL, err)
		return models.LinkSet{}
	}

	utils.Debugf("从 %s 提取到 %d 个链接", pageURL, len(links))
	return links
}

// ExtractFromHTML 按文档顺序遍历 a[href] 并逐个分类
func ExtractFromHTML(body []byte, pageURL, siteToken string) (models.LinkSet, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("解析页面URL失败: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	links := models.LinkSet{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link, ok := ClassifyHref(href, base, siteToken); ok {
			links = append(links, link)
		}
	})

	return links, nil
}

// ClassifyHref 决定一个href是否保留:
// 包含站点标识的原样保留;以 "/" 开头的相对当前页面解析;其余丢弃。
func ClassifyHref(href string, base *url.URL, siteToken string) (string, bool) {
	if siteToken != "" && strings.Contains(href, siteToken) {
		return href, true
	}

	if strings.HasPrefix(href, "/") {
		resolved, err := base.Parse(href)
		if err != nil {
			utils.Debugf("无法解析相对链接 %q: %v", href, err)
			return "", false
		}
		return resolved.String(), true
	}

	return "", false
}

// DeriveSiteToken 种子主机的可注册域名,如 www.howard.edu -> howard.edu
// IP、localhost 以及无法识别的主机直接使用主机名
func DeriveSiteToken(seedURL string) string {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return ""
	}

	host := parsed.Hostname()
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
