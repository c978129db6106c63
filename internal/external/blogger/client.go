package blogger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/config"
	"github.com/wonny/etf-rs/pkg/httputil"
	"github.com/wonny/etf-rs/pkg/logger"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultAPIURL   = "https://www.googleapis.com/blogger/v3"

	// postKind is the Blogger resource kind for posts
	postKind = "blogger#post"
)

// Client posts reports to a Blogger blog
// ⭐ SSOT: 블로그 포스팅은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	blogID     string
	apiURL     string
	logger     *logger.Logger
}

// PostRequest is the Blogger posts.insert body
type PostRequest struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostResponse holds the fields of the created post we use
type PostResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// New returns a Blogger client, or a no-op publisher when credentials are incomplete
// 인증 정보 확인은 생성 시점 한 번만
func New(cfg config.BloggerConfig, log *logger.Logger) contracts.Publisher {
	log = log.WithField("module", "blogger")
	if !cfg.Enabled() {
		log.Info("Blogger credentials not configured, posting disabled")
		return NewNoopPublisher(log)
	}
	return NewClient(context.Background(), cfg, log)
}

// NewClient creates a Blogger client using the OAuth2 refresh-token flow
func NewClient(ctx context.Context, cfg config.BloggerConfig, log *logger.Logger) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ts := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	// 중복 게시를 막기 위해 재시도하지 않음
	hc := httputil.NewWithHTTPClient(oauth2.NewClient(ctx, ts), log).DisableRetry()

	return &Client{
		httpClient: hc,
		blogID:     cfg.BlogID,
		apiURL:     strings.TrimRight(apiURL, "/"),
		logger:     log,
	}
}

// Publish creates a published (non-draft) post
func (c *Client) Publish(ctx context.Context, title, htmlBody string) error {
	endpoint := fmt.Sprintf("%s/blogs/%s/posts/?isDraft=false", c.apiURL, url.PathEscape(c.blogID))

	c.logger.WithField("title", title).Info("Publishing report to Blogger")

	resp, err := c.httpClient.PostJSON(ctx, endpoint, PostRequest{
		Kind:    postKind,
		Title:   title,
		Content: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", contracts.ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", contracts.ErrPublishFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var post PostResponse
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return fmt.Errorf("%w: decode response: %w", contracts.ErrPublishFailed, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"url":     post.URL,
	}).Info("Blogger post published")

	return nil
}
