package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateHourlyRate(t *testing.T) {
	t.Parallel()

	base := Quota{VCPUs: 2, MemoryMB: 2048, StorageGB: 40, BandwidthGB: 500}
	rate := EstimateHourlyRate(base)
	assert.Greater(t, rate, 0.0)

	// 纯函数：同样的输入必须得到同样的价格
	assert.Equal(t, rate, EstimateHourlyRate(base))
}

func TestEstimateHourlyRate_Monotonic(t *testing.T) {
	t.Parallel()

	base := Quota{VCPUs: 2, MemoryMB: 2048, StorageGB: 40, BandwidthGB: 500}
	baseRate := EstimateHourlyRate(base)

	testcases := []struct {
		name  string
		quota Quota
	}{
		{name: "more vcpus", quota: Quota{VCPUs: 4, MemoryMB: 2048, StorageGB: 40, BandwidthGB: 500}},
		{name: "more memory", quota: Quota{VCPUs: 2, MemoryMB: 8192, StorageGB: 40, BandwidthGB: 500}},
		{name: "more storage", quota: Quota{VCPUs: 2, MemoryMB: 2048, StorageGB: 200, BandwidthGB: 500}},
		{name: "more bandwidth", quota: Quota{VCPUs: 2, MemoryMB: 2048, StorageGB: 40, BandwidthGB: 2000}},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// 每个维度独立增加时，价格单调非减
			assert.GreaterOrEqual(t, EstimateHourlyRate(tc.quota), baseRate)
		})
	}
}
