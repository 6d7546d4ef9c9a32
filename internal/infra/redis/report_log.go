package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/redis/go-redis/v9"
)

const reportsKey = "reports"

// ReportLog keeps the attempt history as a Redis list, newest first:
//
//	LPUSH reports {report JSON}
//	LTRIM reports 0 limit-1
//
// The trim after every push gives the fixed-capacity ring the admin tooling
// expects; overflowing entries vanish silently.
type ReportLog struct {
	client *redis.Client
	limit  int
}

func NewReportLog(client *redis.Client, limit int) *ReportLog {
	if limit <= 0 {
		limit = 200
	}
	return &ReportLog{client: client, limit: limit}
}

func (l *ReportLog) Append(ctx context.Context, report domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, reportsKey, data)
	pipe.LTrim(ctx, reportsKey, 0, int64(l.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	return nil
}

func (l *ReportLog) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	raw, err := l.client.LRange(ctx, reportsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	reports := make([]domain.Report, 0, len(raw))
	for _, entry := range raw {
		var report domain.Report
		if err := json.Unmarshal([]byte(entry), &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		if filter.Matches(report) {
			reports = append(reports, report)
		}
	}
	return reports, nil
}
