package dockerx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
)

// Client 容器运行时客户端接口
// 并发安全：同一个实例会被所有计算单元的调用方共享
type Client interface {
	// Ping 探测控制面是否可达
	Ping(ctx context.Context) error

	// Create 创建容器，返回运行时分配的容器 ID
	// 镜像不存在时会先拉取
	Create(ctx context.Context, spec *CreateSpec) (string, error)
	// Start 启动容器并重新读取状态
	Start(ctx context.Context, id string) (*Snapshot, error)
	// Stop 优雅停止容器，超时后由引擎强杀
	Stop(ctx context.Context, id string, timeoutSeconds int) (*Snapshot, error)
	// Restart 重启容器，优雅信号语义同 Stop
	Restart(ctx context.Context, id string, timeoutSeconds int) (*Snapshot, error)
	// Remove 删除容器；运行中会先尝试优雅停止；容器已不存在视为成功
	Remove(ctx context.Context, id string, force bool) error

	// Inspect 读取容器当前状态
	Inspect(ctx context.Context, id string) (*Snapshot, error)
	// Stats 读取一次原始计数器
	// prev 在运行时只有单个样本时为 nil；容器未运行时 prev、cur 都为 nil 且不报错
	Stats(ctx context.Context, id string) (prev, cur *Counters, err error)

	// Exec 在容器内同步执行命令，阻塞到命令结束
	Exec(ctx context.Context, id string, argv []string) (*ExecResult, error)
	// Logs 读取容器日志
	Logs(ctx context.Context, id string, opts *LogsOptions) (string, error)

	// Commit 将容器文件系统提交为镜像
	Commit(ctx context.Context, id string, ref string) (*CommitResult, error)
	// RemoveImage 删除已提交的镜像
	RemoveImage(ctx context.Context, ref string) error

	// ListByLabel 按标签列出容器 ID（包含未运行的）
	ListByLabel(ctx context.Context, key, value string) ([]string, error)
}

// 容器运行参数
const (
	// containerUser 非 root 用户
	containerUser = "1000:1000"

	// 日志轮转，防止单个容器日志占满磁盘
	logMaxSize = "10m"
	logMaxFile = "3"

	// 重启策略重试上限
	restartMaxRetry = 2

	// 健康检查
	healthInterval    = 30 * time.Second
	healthTimeout     = 5 * time.Second
	healthRetries     = 3
	healthStartPeriod = 15 * time.Second // 宽限期内的失败不计数
)

type dockerClient struct {
	cli *client.Client
}

// 编译时检查
var _ Client = (*dockerClient)(nil)

// New 创建 Docker 客户端
// 地址从环境变量 DOCKER_HOST 读取，默认本地 socket
func New() (Client, error) {
	return NewWithHost("")
}

// NewWithHost 使用指定的控制面地址创建客户端
// host 为空时按 DOCKER_HOST 环境变量和默认 socket 解析
func NewWithHost(host string) (Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &dockerClient{cli: cli}, nil
}

// IsNotFound 判断容器或镜像是否不存在
func IsNotFound(err error) bool {
	return errdefs.IsNotFound(err)
}

// IsUnreachable 判断是否是控制面不可达
// 区别于引擎拒绝操作：不可达是非致命的，调用方应标记 degraded 并可重试
func IsUnreachable(err error) bool {
	return client.IsErrConnectionFailed(err)
}

func (d *dockerClient) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker daemon: %w", err)
	}
	return nil
}

func (d *dockerClient) Create(ctx context.Context, spec *CreateSpec) (string, error) {
	if err := d.ensureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	env := make([]string, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}

	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, p := range spec.Ports {
		proto := p.Protocol
		if proto == "" {
			proto = "tcp"
		}
		port, err := nat.NewPort(proto, strconv.Itoa(int(p.ContainerPort)))
		if err != nil {
			return "", fmt.Errorf("invalid port mapping %d/%s: %w", p.ContainerPort, proto, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{
			HostPort: strconv.Itoa(int(p.HostPort)),
		})
	}

	cfg := &container.Config{
		Image:        spec.Image,
		User:         containerUser,
		Env:          env,
		Labels:       spec.Labels,
		ExposedPorts: exposed,
		Healthcheck: &container.HealthConfig{
			Test:        []string{"CMD-SHELL", "true"},
			Interval:    healthInterval,
			Timeout:     healthTimeout,
			Retries:     healthRetries,
			StartPeriod: healthStartPeriod,
		},
	}

	hostCfg := &container.HostConfig{
		PortBindings: bindings,
		RestartPolicy: container.RestartPolicy{
			Name:              container.RestartPolicyOnFailure,
			MaximumRetryCount: restartMaxRetry,
		},
		LogConfig: container.LogConfig{
			Type: "json-file",
			Config: map[string]string{
				"max-size": logMaxSize,
				"max-file": logMaxFile,
			},
		},
		Resources: container.Resources{
			NanoCPUs: spec.NanoCPUs,
			Memory:   spec.MemoryBytes,
		},
	}
	if spec.StorageOpt != "" {
		hostCfg.StorageOpt = map[string]string{"size": spec.StorageOpt}
	}

	resp, err := d.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", spec.Name, err)
	}
	return resp.ID, nil
}

// ensureImage 确保镜像在本地存在，不存在时拉取
func (d *dockerClient) ensureImage(ctx context.Context, ref string) error {
	if _, _, err := d.cli.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	} else if !errdefs.IsNotFound(err) {
		return fmt.Errorf("inspect image %s: %w", ref, err)
	}

	rc, err := d.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	defer rc.Close()

	// 必须读完整个响应流，拉取才真正完成
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	return nil
}

func (d *dockerClient) Start(ctx context.Context, id string) (*Snapshot, error) {
	if err := d.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container %s: %w", id, err)
	}
	return d.Inspect(ctx, id)
}

func (d *dockerClient) Stop(ctx context.Context, id string, timeoutSeconds int) (*Snapshot, error) {
	if err := d.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeoutSeconds}); err != nil {
		return nil, fmt.Errorf("stop container %s: %w", id, err)
	}
	return d.Inspect(ctx, id)
}

func (d *dockerClient) Restart(ctx context.Context, id string, timeoutSeconds int) (*Snapshot, error) {
	if err := d.cli.ContainerRestart(ctx, id, container.StopOptions{Timeout: &timeoutSeconds}); err != nil {
		return nil, fmt.Errorf("restart container %s: %w", id, err)
	}
	return d.Inspect(ctx, id)
}

func (d *dockerClient) Remove(ctx context.Context, id string, force bool) error {
	// 运行中的容器先尝试优雅停止
	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		if errdefs.IsNotFound(err) {
			// 已经不存在，幂等删除
			return nil
		}
		return fmt.Errorf("inspect container %s: %w", id, err)
	}

	if inspect.State != nil && inspect.State.Running {
		timeout := 10
		if err := d.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil && !errdefs.IsNotFound(err) {
			if !force {
				return fmt.Errorf("stop container %s before remove: %w", id, err)
			}
		}
	}

	if err := d.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: force}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove container %s: %w", id, err)
	}
	return nil
}

func (d *dockerClient) Inspect(ctx context.Context, id string) (*Snapshot, error) {
	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inspect container %s: %w", id, err)
	}
	return snapshotFromInspect(&inspect), nil
}

// snapshotFromInspect 将 inspect 结果转换为 Snapshot
func snapshotFromInspect(inspect *types.ContainerJSON) *Snapshot {
	snap := &Snapshot{
		ContainerID: inspect.ID,
	}

	if inspect.State != nil {
		snap.Running = inspect.State.Running
		snap.Status = inspect.State.Status
		if inspect.State.Health != nil {
			snap.Health = inspect.State.Health.Status
		}
		if t, err := time.Parse(time.RFC3339Nano, inspect.State.StartedAt); err == nil {
			snap.StartedAt = t
		}
	}

	if inspect.NetworkSettings != nil {
		snap.IPAddress = inspect.NetworkSettings.IPAddress
		for port, bindings := range inspect.NetworkSettings.Ports {
			for _, b := range bindings {
				hostPort, err := strconv.ParseUint(b.HostPort, 10, 16)
				if err != nil {
					continue
				}
				snap.Ports = append(snap.Ports, PortMapping{
					HostPort:      uint16(hostPort),
					ContainerPort: uint16(port.Int()),
					Protocol:      port.Proto(),
				})
			}
		}
	}

	return snap
}

func (d *dockerClient) Stats(ctx context.Context, id string) (*Counters, *Counters, error) {
	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("inspect container %s: %w", id, err)
	}
	// 未运行的容器没有统计数据：这是正常结果，不是错误
	if inspect.State == nil || !inspect.State.Running {
		return nil, nil, nil
	}

	resp, err := d.cli.ContainerStats(ctx, id, false)
	if err != nil {
		return nil, nil, fmt.Errorf("read container stats %s: %w", id, err)
	}
	defer resp.Body.Close()

	var stats types.StatsJSON
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, nil, fmt.Errorf("decode container stats %s: %w", id, err)
	}

	cur := &Counters{
		CPUTotal:    stats.CPUStats.CPUUsage.TotalUsage,
		SystemTotal: stats.CPUStats.SystemUsage,
		OnlineCPUs:  stats.CPUStats.OnlineCPUs,
		MemoryUsed:  stats.MemoryStats.Usage,
		MemoryLimit: stats.MemoryStats.Limit,
		PIDs:        stats.PidsStats.Current,
		SampledAt:   stats.Read,
	}
	for _, net := range stats.Networks {
		cur.Interfaces = append(cur.Interfaces, InterfaceCounters{
			RxBytes: net.RxBytes,
			TxBytes: net.TxBytes,
		})
	}
	for _, entry := range stats.BlkioStats.IoServiceBytesRecursive {
		switch entry.Op {
		case "Read", "read":
			cur.Devices = append(cur.Devices, DeviceCounters{ReadBytes: entry.Value})
		case "Write", "write":
			cur.Devices = append(cur.Devices, DeviceCounters{WriteBytes: entry.Value})
		}
	}

	// 引擎在一次读取里同时带上了上一个 CPU 样本；
	// 第一次采样时 precpu 是零值，此时没有 prev
	var prev *Counters
	if stats.PreCPUStats.SystemUsage > 0 {
		prev = &Counters{
			CPUTotal:    stats.PreCPUStats.CPUUsage.TotalUsage,
			SystemTotal: stats.PreCPUStats.SystemUsage,
			OnlineCPUs:  stats.PreCPUStats.OnlineCPUs,
			SampledAt:   stats.PreRead,
		}
	}

	return prev, cur, nil
}

func (d *dockerClient) Exec(ctx context.Context, id string, argv []string) (*ExecResult, error) {
	execResp, err := d.cli.ContainerExecCreate(ctx, id, types.ExecConfig{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create exec in container %s: %w", id, err)
	}

	attach, err := d.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, fmt.Errorf("attach exec in container %s: %w", id, err)
	}
	defer attach.Close()

	// 阻塞直到命令结束，stdout/stderr 合并输出
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, attach.Reader); err != nil {
		return nil, fmt.Errorf("read exec output in container %s: %w", id, err)
	}

	inspect, err := d.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect exec in container %s: %w", id, err)
	}

	return &ExecResult{
		ExitCode: inspect.ExitCode,
		Output:   buf.String(),
	}, nil
}

func (d *dockerClient) Logs(ctx context.Context, id string, opts *LogsOptions) (string, error) {
	logsOpts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	}
	if opts != nil {
		if opts.TailLines > 0 {
			logsOpts.Tail = strconv.Itoa(opts.TailLines)
		}
		if !opts.Since.IsZero() {
			logsOpts.Since = opts.Since.Format(time.RFC3339)
		}
		if !opts.Until.IsZero() {
			logsOpts.Until = opts.Until.Format(time.RFC3339)
		}
		logsOpts.Timestamps = opts.Timestamps
	}

	rc, err := d.cli.ContainerLogs(ctx, id, logsOpts)
	if err != nil {
		return "", fmt.Errorf("read container logs %s: %w", id, err)
	}
	defer rc.Close()

	// 我们创建的容器都不带 TTY，输出流需要拆复用
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return "", fmt.Errorf("demux container logs %s: %w", id, err)
	}
	return buf.String(), nil
}

func (d *dockerClient) Commit(ctx context.Context, id string, ref string) (*CommitResult, error) {
	resp, err := d.cli.ContainerCommit(ctx, id, container.CommitOptions{
		Reference: ref,
		Pause:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("commit container %s: %w", id, err)
	}

	inspect, _, err := d.cli.ImageInspectWithRaw(ctx, resp.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect committed image %s: %w", resp.ID, err)
	}

	return &CommitResult{
		ImageID:   resp.ID,
		SizeBytes: inspect.Size,
	}, nil
}

func (d *dockerClient) RemoveImage(ctx context.Context, ref string) error {
	if _, err := d.cli.ImageRemove(ctx, ref, image.RemoveOptions{}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove image %s: %w", ref, err)
	}
	return nil
}

func (d *dockerClient) ListByLabel(ctx context.Context, key, value string) ([]string, error) {
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", key+"="+value)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers by label %s=%s: %w", key, value, err)
	}

	ids := make([]string, 0, len(containers))
	for _, c := range containers {
		ids = append(ids, c.ID)
	}
	return ids, nil
}
