package counter

import (
	"context"
	"strconv"

	"github.com/mft-data/fitmenthub/internal/pkg/cache"
)

// Redis hashes keyed by tenant id. Counters are observational; the job and
// fitment tables stay the source of truth.
const (
	fitmentsCreatedKey = "fitment:counters:created"
	jobsProcessedKey   = "jobs:counters:processed"
	rowsIngestedKey    = "ingest:counters:rows"
)

func field(tenantID uint) string {
	return strconv.FormatUint(uint64(tenantID), 10)
}

// AddFitmentsCreated adds to the tenant's created-fitment counter.
func AddFitmentsCreated(tenantID uint, n int) error {
	if n <= 0 {
		return nil
	}
	return cache.GetClient().HIncrBy(context.Background(), fitmentsCreatedKey, field(tenantID), int64(n)).Err()
}

// AddJobProcessed increments the tenant's processed-job counter.
func AddJobProcessed(tenantID uint) error {
	return cache.GetClient().HIncrBy(context.Background(), jobsProcessedKey, field(tenantID), 1).Err()
}

// AddRowsIngested adds to the tenant's ingested-row counter.
func AddRowsIngested(tenantID uint, n int) error {
	if n <= 0 {
		return nil
	}
	return cache.GetClient().HIncrBy(context.Background(), rowsIngestedKey, field(tenantID), int64(n)).Err()
}

// Stats is the per-tenant counter snapshot.
type Stats struct {
	FitmentsCreated int64 `json:"fitments_created"`
	JobsProcessed   int64 `json:"jobs_processed"`
	RowsIngested    int64 `json:"rows_ingested"`
}

// Snapshot reads the tenant's counters. Missing fields read as zero.
func Snapshot(tenantID uint) (Stats, error) {
	ctx := context.Background()
	rdb := cache.GetClient()
	f := field(tenantID)

	var stats Stats
	for _, item := range []struct {
		key string
		dst *int64
	}{
		{fitmentsCreatedKey, &stats.FitmentsCreated},
		{jobsProcessedKey, &stats.JobsProcessed},
		{rowsIngestedKey, &stats.RowsIngested},
	} {
		raw, err := rdb.HGet(ctx, item.key, f).Result()
		if err != nil {
			continue
		}
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			*item.dst = v
		}
	}
	return stats, nil
}

// Reset clears the tenant's counters.
func Reset(tenantID uint) error {
	ctx := context.Background()
	rdb := cache.GetClient()
	f := field(tenantID)
	for _, key := range []string{fitmentsCreatedKey, jobsProcessedKey, rowsIngestedKey} {
		if err := rdb.HDel(ctx, key, f).Err(); err != nil {
			return err
		}
	}
	return nil
}
