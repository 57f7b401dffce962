package dockerx

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 Client 的 mock 实现
// 用于测试，不需要真实的 Docker daemon
type MockClient struct {
	mock.Mock
}

// NewMockClient 创建新的 MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

// 编译时检查
var _ Client = (*MockClient)(nil)

func (m *MockClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClient) Create(ctx context.Context, spec *CreateSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Start(ctx context.Context, id string) (*Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *MockClient) Stop(ctx context.Context, id string, timeoutSeconds int) (*Snapshot, error) {
	args := m.Called(ctx, id, timeoutSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *MockClient) Restart(ctx context.Context, id string, timeoutSeconds int) (*Snapshot, error) {
	args := m.Called(ctx, id, timeoutSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *MockClient) Remove(ctx context.Context, id string, force bool) error {
	args := m.Called(ctx, id, force)
	return args.Error(0)
}

func (m *MockClient) Inspect(ctx context.Context, id string) (*Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *MockClient) Stats(ctx context.Context, id string) (*Counters, *Counters, error) {
	args := m.Called(ctx, id)
	var prev, cur *Counters
	if args.Get(0) != nil {
		prev = args.Get(0).(*Counters)
	}
	if args.Get(1) != nil {
		cur = args.Get(1).(*Counters)
	}
	return prev, cur, args.Error(2)
}

func (m *MockClient) Exec(ctx context.Context, id string, argv []string) (*ExecResult, error) {
	args := m.Called(ctx, id, argv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExecResult), args.Error(1)
}

func (m *MockClient) Logs(ctx context.Context, id string, opts *LogsOptions) (string, error) {
	args := m.Called(ctx, id, opts)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Commit(ctx context.Context, id string, ref string) (*CommitResult, error) {
	args := m.Called(ctx, id, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CommitResult), args.Error(1)
}

func (m *MockClient) RemoveImage(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockClient) ListByLabel(ctx context.Context, key, value string) ([]string, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
