package usage

import (
	"testing"
	"time"

	"github.com/jimyag/cvp/pkg/dockerx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_CPUPercent(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		prev *dockerx.Counters
		cur  *dockerx.Counters
		want float64
	}{
		{
			name: "half of one core",
			prev: &dockerx.Counters{CPUTotal: 0, SystemTotal: 0},
			cur:  &dockerx.Counters{CPUTotal: 500_000_000, SystemTotal: 1_000_000_000, OnlineCPUs: 1},
			want: 50,
		},
		{
			name: "two cores fully busy",
			prev: &dockerx.Counters{CPUTotal: 1_000_000_000, SystemTotal: 1_000_000_000},
			cur:  &dockerx.Counters{CPUTotal: 3_000_000_000, SystemTotal: 2_000_000_000, OnlineCPUs: 2},
			want: 400, // 未钳制前，增量比值 × 核数 × 100
		},
		{
			name: "identical snapshots yield zero",
			prev: &dockerx.Counters{CPUTotal: 1_000_000_000, SystemTotal: 2_000_000_000},
			cur:  &dockerx.Counters{CPUTotal: 1_000_000_000, SystemTotal: 2_000_000_000, OnlineCPUs: 4},
			want: 0,
		},
		{
			name: "system delta going backwards yields zero",
			prev: &dockerx.Counters{CPUTotal: 1_000_000_000, SystemTotal: 5_000_000_000},
			cur:  &dockerx.Counters{CPUTotal: 2_000_000_000, SystemTotal: 1_000_000_000, OnlineCPUs: 2},
			want: 0,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sample := Translate(tc.prev, tc.cur)
			require.NotNil(t, sample)
			require.NotNil(t, sample.CPUPercent)

			cores := float64(tc.cur.OnlineCPUs)
			if cores == 0 {
				cores = 1
			}
			want := tc.want
			if max := cores * 100; want > max {
				want = max
			}
			assert.InDelta(t, want, *sample.CPUPercent, 0.001)

			// 永远不超过 核数×100
			assert.LessOrEqual(t, *sample.CPUPercent, cores*100)
			assert.GreaterOrEqual(t, *sample.CPUPercent, 0.0)
		})
	}
}

func TestTranslate_SingleSnapshot(t *testing.T) {
	t.Parallel()

	cur := &dockerx.Counters{
		CPUTotal:    1_000_000_000,
		SystemTotal: 2_000_000_000,
		OnlineCPUs:  2,
		MemoryUsed:  512 * 1024 * 1024,
		MemoryLimit: 2048 * 1024 * 1024,
		PIDs:        12,
		SampledAt:   time.Now(),
	}

	sample := Translate(nil, cur)
	require.NotNil(t, sample)

	// 只有一个快照：CPU 不可用（区别于 0），内存等照常给出
	assert.Nil(t, sample.CPUPercent)
	assert.Equal(t, uint64(512*1024*1024), sample.MemoryUsedBytes)
	assert.InDelta(t, 25.0, sample.MemoryPercent, 0.001)
	assert.Equal(t, uint64(12), sample.PIDCount)
}

func TestTranslate_MemoryPercent(t *testing.T) {
	t.Parallel()

	// limit 为 0 时内存百分比是 0，不报错
	sample := Translate(nil, &dockerx.Counters{MemoryUsed: 100, MemoryLimit: 0})
	require.NotNil(t, sample)
	assert.Equal(t, 0.0, sample.MemoryPercent)
}

func TestTranslate_NetworkAndDiskTotals(t *testing.T) {
	t.Parallel()

	cur := &dockerx.Counters{
		Interfaces: []dockerx.InterfaceCounters{
			{RxBytes: 100, TxBytes: 10},
			{RxBytes: 200, TxBytes: 20},
		},
		Devices: []dockerx.DeviceCounters{
			{ReadBytes: 1000},
			{WriteBytes: 500},
		},
	}

	sample := Translate(nil, cur)
	require.NotNil(t, sample)
	assert.Equal(t, uint64(300), sample.NetworkRxBytes)
	assert.Equal(t, uint64(30), sample.NetworkTxBytes)
	assert.Equal(t, uint64(1000), sample.DiskReadBytes)
	assert.Equal(t, uint64(500), sample.DiskWriteBytes)
}

func TestTranslate_NoInterfaces(t *testing.T) {
	t.Parallel()

	// 没有任何接口的容器：流量为 0，不是错误
	sample := Translate(nil, &dockerx.Counters{})
	require.NotNil(t, sample)
	assert.Zero(t, sample.NetworkRxBytes)
	assert.Zero(t, sample.NetworkTxBytes)
}

func TestTranslate_NilCurrent(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Translate(nil, nil))
}
