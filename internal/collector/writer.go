package collector

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Thứ tự cột cố định của file CSV đầu ra
var csvColumns = []string{
	"repo_name",
	"full_name",
	"visibility",
	"default_branch",
	"forks_count",
	"stargazers_count",
	"watchers_count",
	"open_issues_count",
	"pushed_at",
	"commits_count",
	"prs_merged_count",
	"issues_open_count",
	"issues_closed_count",
	"collaborators_count",
}

func JSONPath(prefix string) string {
	return fmt.Sprintf("%s_repo_stats.json", prefix)
}

func CSVPath(prefix string) string {
	return fmt.Sprintf("%s_repo_stats.csv", prefix)
}

// WriteJSON ghi thống kê ra file JSON thụt lề hai khoảng trắng
func WriteJSON(stats []RepoStats, path string) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteCSV ghi thống kê ra file CSV, trường null để trống
func WriteCSV(stats []RepoStats, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvColumns); err != nil {
		return err
	}
	for _, item := range stats {
		if err := writer.Write(item.csvRow()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s RepoStats) csvRow() []string {
	return []string{
		s.RepoName,
		s.FullName,
		s.Visibility,
		s.DefaultBranch,
		strconv.FormatInt(s.ForksCount, 10),
		strconv.FormatInt(s.StargazersCount, 10),
		strconv.FormatInt(s.WatchersCount, 10),
		strconv.FormatInt(s.OpenIssuesCount, 10),
		s.PushedAt,
		formatNullable(s.CommitsCount),
		formatNullable(s.PrsMergedCount),
		formatNullable(s.IssuesOpenCount),
		formatNullable(s.IssuesClosedCount),
		formatNullable(s.CollaboratorsCount),
	}
}

func formatNullable(value *int64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(*value, 10)
}
