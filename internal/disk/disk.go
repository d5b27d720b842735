package disk

import (
	"fmt"

	gdisk "github.com/shirou/gopsutil/v4/disk"
)

// Usage describes the filesystem holding a path
type Usage struct {
	Path        string
	Fstype      string
	TotalBytes  uint64
	FreeBytes   uint64 // available to unprivileged users
	UsedBytes   uint64
	UsedPercent float64
}

// GetUsage returns usage of the filesystem containing path
func GetUsage(path string) (*Usage, error) {
	st, err := gdisk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("disk usage of %s: %w", path, err)
	}
	return &Usage{
		Path:        path,
		Fstype:      st.Fstype,
		TotalBytes:  st.Total,
		FreeBytes:   st.Free,
		UsedBytes:   st.Used,
		UsedPercent: st.UsedPercent,
	}, nil
}

// FreePercent returns the percentage of free space, 100 for an empty filesystem
func (u *Usage) FreePercent() float64 {
	if u.TotalBytes == 0 {
		return 100.0
	}
	return float64(u.FreeBytes) / float64(u.TotalBytes) * 100.0
}
