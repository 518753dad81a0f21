// Gói dto cung cấp các đối tượng truyền dữ liệu cho dự án
// Chuyển đổi phản hồi api của github thành một cấu trúc

package githubapi

type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type Repo struct {
	Id              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Owner           Owner  `json:"owner"`
	Private         bool   `json:"private"`
	DefaultBranch   string `json:"default_branch"`
	ForksCount      int64  `json:"forks_count"`
	StargazersCount int64  `json:"stargazers_count"`
	WatchersCount   int64  `json:"watchers_count"`
	OpenIssuesCount int64  `json:"open_issues_count"`
	PushedAt        string `json:"pushed_at"`
}

type SearchCountResponse struct {
	TotalCount        int64 `json:"total_count"`
	IncompleteResults bool  `json:"incomplete_results"`
}
