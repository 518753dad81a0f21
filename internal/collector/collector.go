// Gói collector thu thập thống kê cấp repository cho một tài khoản GitHub.
// Lỗi của từng repository chỉ làm trống các trường tương ứng của nó,
// phiên thu thập vẫn tiếp tục với các repository còn lại

package collector

import (
	"context"

	"github.com/schollz/progressbar/v3"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/githubapi"
	"github.com/VirusHacks/kaizen/pkg/log"
)

// RepoStats là thống kê của một repository, các trường con trỏ là null
// khi bước thu thập tương ứng thất bại
type RepoStats struct {
	RepoName           string `json:"repo_name"`
	FullName           string `json:"full_name"`
	Visibility         string `json:"visibility"`
	DefaultBranch      string `json:"default_branch"`
	ForksCount         int64  `json:"forks_count"`
	StargazersCount    int64  `json:"stargazers_count"`
	WatchersCount      int64  `json:"watchers_count"`
	OpenIssuesCount    int64  `json:"open_issues_count"`
	PushedAt           string `json:"pushed_at"`
	CommitsCount       *int64 `json:"commits_count"`
	PrsMergedCount     *int64 `json:"prs_merged_count"`
	IssuesOpenCount    *int64 `json:"issues_open_count"`
	IssuesClosedCount  *int64 `json:"issues_closed_count"`
	CollaboratorsCount *int64 `json:"collaborators_count"`
}

type Collector struct {
	Logger log.Logger
	Config *cfg.Config
	Caller *githubapi.Caller
}

func NewCollector(logger log.Logger, config *cfg.Config, caller *githubapi.Caller) (*Collector, error) {
	return &Collector{
		Logger: logger,
		Config: config,
		Caller: caller,
	}, nil
}

// CollectOwner liệt kê toàn bộ repository của owner rồi thu thập thống kê
// cho từng repository một cách tuần tự
func (c *Collector) CollectOwner(ctx context.Context, owner string) ([]RepoStats, error) {
	c.Logger.Info(ctx, "Listing repositories for %s...", owner)
	repos, err := c.Caller.ListRepos(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.Logger.Info(ctx, "Found %d repositories.", len(repos))

	bar := progressbar.Default(int64(len(repos)))
	stats := make([]RepoStats, 0, len(repos))
	for _, repo := range repos {
		c.Logger.Info(ctx, "Processing %s ...", repo.FullName)
		stats = append(stats, c.collectRepo(ctx, owner, repo))
		_ = bar.Add(1)
	}
	return stats, nil
}

func (c *Collector) collectRepo(ctx context.Context, owner string, repo githubapi.Repo) RepoStats {
	branch := repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	visibility := "public"
	if repo.Private {
		visibility = "private"
	}

	stats := RepoStats{
		RepoName:        repo.Name,
		FullName:        repo.FullName,
		Visibility:      visibility,
		DefaultBranch:   branch,
		ForksCount:      repo.ForksCount,
		StargazersCount: repo.StargazersCount,
		WatchersCount:   repo.WatchersCount,
		OpenIssuesCount: repo.OpenIssuesCount,
		PushedAt:        repo.PushedAt,
	}

	if commits, err := c.Caller.EstimateCommits(ctx, owner, repo.Name, branch); err != nil {
		c.Logger.Warn(ctx, "Could not estimate commits for %s: %v", repo.FullName, err)
	} else {
		stats.CommitsCount = &commits
	}

	if merged, err := c.Caller.CountMergedPRs(ctx, owner, repo.Name); err != nil {
		c.Logger.Warn(ctx, "Could not count merged PRs for %s: %v", repo.FullName, err)
	} else {
		stats.PrsMergedCount = &merged
	}

	if open, closed, err := c.Caller.CountIssues(ctx, owner, repo.Name); err != nil {
		c.Logger.Warn(ctx, "Could not count issues for %s: %v", repo.FullName, err)
	} else {
		stats.IssuesOpenCount = &open
		stats.IssuesClosedCount = &closed
	}

	// Không đủ quyền xem cộng tác viên thì để trống thay vì dừng lại
	if collaborators, err := c.Caller.CountCollaborators(ctx, owner, repo.Name); err != nil {
		c.Logger.Warn(ctx, "Could not count collaborators for %s: %v", repo.FullName, err)
	} else {
		stats.CollaboratorsCount = &collaborators
	}

	return stats
}
