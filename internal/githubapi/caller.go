// Gói githubapi cung cấp một caller cho GitHub API, để lấy dữ liệu repository.
// Caller xử lý xác thực bằng mã thông báo truy cập nếu được cung cấp,
// tự thăm dò lại khi API trả về 202 (thống kê đang được tính toán),
// tự chờ khi đạt rate limit và đi theo các liên kết phân trang trong header Link

package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/limiter"
	"github.com/VirusHacks/kaizen/pkg/log"
)

// Thời gian chờ giữa hai lần thăm dò khi API trả về 202
const acceptedPollDelay = 1 * time.Second

// ErrRateLimitBudget trả về khi số lần chờ rate limit vượt cấu hình MaxRateLimitWaits
var ErrRateLimitBudget = errors.New("rate limit wait budget exhausted")

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	client      *http.Client
	rateLimiter *limiter.RateLimiter
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	return &Caller{
		Logger:      logger,
		Config:      config,
		client:      &http.Client{Timeout: 30 * time.Second},
		rateLimiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
	}, nil
}

// HandleRateLimit kiểm tra phản hồi có phải tín hiệu rate limit không và tính
// thời gian cần chờ từ header X-RateLimit-Reset. Header thiếu hoặc không parse
// được thì dùng thời gian chờ mặc định trong cấu hình
func (c *Caller) HandleRateLimit(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusForbidden || resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return 0, false
	}

	resetTimeInt, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute, true
	}

	waitTime := time.Until(time.Unix(resetTimeInt, 0))
	if waitTime < time.Second {
		// Thời gian reset đã qua, vẫn chờ tối thiểu một giây trước khi thử lại
		waitTime = time.Second
	}
	return waitTime, true
}

// Get thực hiện một yêu cầu GET và chỉ trả về khi nhận được phản hồi 2xx.
// 202 và rate limit được xử lý bằng cách chờ rồi lặp lại đúng yêu cầu đó
func (c *Caller) Get(ctx context.Context, rawUrl string, params url.Values) (*http.Response, error) {
	fullUrl := rawUrl
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawUrl, "?") {
			sep = "&"
		}
		fullUrl = rawUrl + sep + params.Encode()
	}

	waits := 0
	for {
		c.rateLimiter.Wait()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
		if err != nil {
			c.Logger.Error(ctx, "Cannot request: %v", err)
			return nil, err
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", "repo-stats-script")
		if c.Config.GithubApi.AccessToken != "" {
			req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			c.Logger.Error(ctx, "cannot send request: %v", err)
			return nil, err
		}

		if resp.StatusCode == http.StatusAccepted {
			resp.Body.Close()
			time.Sleep(acceptedPollDelay)
			continue
		}

		if waitTime, limited := c.HandleRateLimit(resp); limited {
			resp.Body.Close()
			waits++
			if max := c.Config.GithubApi.MaxRateLimitWaits; max > 0 && waits > max {
				return nil, fmt.Errorf("%w after %d waits", ErrRateLimitBudget, max)
			}
			c.Logger.Warn(ctx, "Rate limited. Sleeping %v...", waitTime.Round(time.Second))
			time.Sleep(waitTime)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			status := resp.Status
			resp.Body.Close()
			return nil, fmt.Errorf("cannot received response from %s: %v", fullUrl, status)
		}
		return resp, nil
	}
}

// GetJSON thực hiện Get rồi giải mã body vào target, trả kèm header phản hồi
func (c *Caller) GetJSON(ctx context.Context, rawUrl string, params url.Values, target interface{}) (http.Header, error) {
	resp, err := c.Get(ctx, rawUrl, params)
	if err != nil {
		return nil, err
	}
	header := resp.Header
	if err := decodeBody(resp, target); err != nil {
		return nil, err
	}
	return header, nil
}

// Paginate đi theo các liên kết rel="next" và gom phần tử của mọi trang
func (c *Caller) Paginate(ctx context.Context, rawUrl string, params url.Values) ([]json.RawMessage, error) {
	var items []json.RawMessage

	resp, err := c.Get(ctx, rawUrl, params)
	if err != nil {
		return nil, err
	}
	for {
		next := NextPageURL(resp.Header.Get("Link"))

		var page []json.RawMessage
		if err := decodeBody(resp, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)

		if next == "" {
			return items, nil
		}
		resp, err = c.Get(ctx, next, nil)
		if err != nil {
			return nil, err
		}
	}
}

// ListRepos liệt kê toàn bộ repository của một tài khoản, qua mọi trang
func (c *Caller) ListRepos(ctx context.Context, owner string) ([]Repo, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(c.Config.GithubApi.PerPage))
	params.Set("type", "all")

	raw, err := c.Paginate(ctx, fmt.Sprintf("%s/users/%s/repos", c.Config.GithubApi.ApiUrl, owner), params)
	if err != nil {
		return nil, err
	}

	repos := make([]Repo, 0, len(raw))
	for _, item := range raw {
		var repo Repo
		if err := json.Unmarshal(item, &repo); err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// EstimateCommits ước lượng tổng số commit trên một nhánh bằng cách đọc trang
// cuối từ header Link: (số trang - 1) * kích thước trang + số commit trang cuối.
// Không có liên kết trang cuối nghĩa là toàn bộ commit nằm trong trang đầu
func (c *Caller) EstimateCommits(ctx context.Context, owner, repo, branch string) (int64, error) {
	params := url.Values{}
	params.Set("sha", branch)
	params.Set("per_page", "1")

	resp, err := c.Get(ctx, fmt.Sprintf("%s/repos/%s/%s/commits", c.Config.GithubApi.ApiUrl, owner, repo), params)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return 0, nil
	}

	lastUrl := LastPageURL(resp.Header.Get("Link"))
	var firstPage []json.RawMessage
	if err := decodeBody(resp, &firstPage); err != nil {
		return 0, err
	}
	if lastUrl == "" {
		return int64(len(firstPage)), nil
	}

	parsed, err := url.Parse(lastUrl)
	if err != nil {
		return 0, err
	}
	query := parsed.Query()
	lastPage, err := strconv.ParseInt(query.Get("page"), 10, 64)
	if err != nil {
		lastPage = 1
	}
	perPage, err := strconv.ParseInt(query.Get("per_page"), 10, 64)
	if err != nil {
		perPage = 30
	}

	lastResp, err := c.Get(ctx, lastUrl, nil)
	if err != nil {
		return 0, err
	}
	var lastItems []json.RawMessage
	if err := decodeBody(lastResp, &lastItems); err != nil {
		return 0, err
	}
	return (lastPage-1)*perPage + int64(len(lastItems)), nil
}

// CountMergedPRs đếm tổng số pull request đã merge qua search API
func (c *Caller) CountMergedPRs(ctx context.Context, owner, repo string) (int64, error) {
	return c.searchCount(ctx, fmt.Sprintf("repo:%s/%s is:pr is:merged", owner, repo))
}

// CountIssues đếm issue đang mở và đã đóng (không tính pull request)
func (c *Caller) CountIssues(ctx context.Context, owner, repo string) (int64, int64, error) {
	open, err := c.searchCount(ctx, fmt.Sprintf("repo:%s/%s is:issue is:open", owner, repo))
	if err != nil {
		return 0, 0, err
	}
	closed, err := c.searchCount(ctx, fmt.Sprintf("repo:%s/%s is:issue is:closed", owner, repo))
	if err != nil {
		return 0, 0, err
	}
	return open, closed, nil
}

// CountCollaborators đếm cộng tác viên của một repository, qua mọi trang
func (c *Caller) CountCollaborators(ctx context.Context, owner, repo string) (int64, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(c.Config.GithubApi.PerPage))

	items, err := c.Paginate(ctx, fmt.Sprintf("%s/repos/%s/%s/collaborators", c.Config.GithubApi.ApiUrl, owner, repo), params)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (c *Caller) searchCount(ctx context.Context, query string) (int64, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", "1")

	var result SearchCountResponse
	if _, err := c.GetJSON(ctx, fmt.Sprintf("%s/search/issues", c.Config.GithubApi.ApiUrl), params, &result); err != nil {
		return 0, err
	}
	return result.TotalCount, nil
}

// decodeBody giải mã body JSON và luôn đóng body, body rỗng không coi là lỗi
func decodeBody(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent || target == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// NextPageURL đọc liên kết rel="next" từ header Link, không có thì trả chuỗi rỗng
func NextPageURL(link string) string {
	return linkWithRel(link, "next")
}

// LastPageURL đọc liên kết rel="last" từ header Link, không có thì trả chuỗi rỗng
func LastPageURL(link string) string {
	return linkWithRel(link, "last")
}

func linkWithRel(link, rel string) string {
	if link == "" {
		return ""
	}
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="`+rel+`"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start == -1 || end == -1 || end < start {
			return ""
		}
		return part[start+1 : end]
	}
	return ""
}
