// Package mount reports capacity, usage and free space of mounted filesystems.
package mount

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// ErrStat is returned when the filesystem of a path cannot be queried.
var ErrStat = errors.New("cannot stat filesystem")

// Stats holds the capacity of a filesystem in bytes.
type Stats struct {
	// Total is the size of the filesystem.
	Total uint64 `json:"total_bytes"`
	// Used is Total minus Free.
	Used uint64 `json:"used_bytes"`
	// Free includes blocks reserved for the superuser.
	Free uint64 `json:"free_bytes"`
}

// Mount is a mounted filesystem and its statistics.
type Mount struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	Fstype     string `json:"fstype"`

	Stats
}

// NewStats derives Stats from the total and free byte counts.
// Free is capped at total so that Used never underflows.
func NewStats(total, free uint64) Stats {
	free = min(free, total)

	return Stats{
		Total: total,
		Used:  total - free,
		Free:  free,
	}
}

// UsedPercent returns Used as a percentage of Total, or 0 for an empty filesystem.
func (s Stats) UsedPercent() float64 {
	if s.Total == 0 {
		return 0
	}

	return float64(s.Used) / float64(s.Total) * 100
}

// Ratio returns Used as a fraction of Total, or 0 for an empty filesystem.
func (s Stats) Ratio() float64 {
	return s.UsedPercent() / 100
}

// Query returns the statistics of the filesystem containing path.
func Query(ctx context.Context, path string) (Stats, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Stats{}, fmt.Errorf("%w %q: %w", ErrStat, path, err)
	}

	// gopsutil reports Used from the free block count including reserved
	// blocks, while its Free only counts blocks available to unprivileged users.
	return NewStats(usage.Total, usage.Total-min(usage.Used, usage.Total)), nil
}

// List returns the physical partitions and their statistics.
// Partitions that cannot be queried are left out.
func List(ctx context.Context) ([]Mount, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	mounts := make([]Mount, 0, len(partitions))

	for _, partition := range partitions {
		stats, err := Query(ctx, partition.Mountpoint)
		if err != nil {
			continue // Skip partitions we can't read
		}

		mounts = append(mounts, Mount{
			Device:     partition.Device,
			Mountpoint: partition.Mountpoint,
			Fstype:     partition.Fstype,
			Stats:      stats,
		})
	}

	return mounts, nil
}
