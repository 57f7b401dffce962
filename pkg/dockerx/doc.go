// Package dockerx 封装 Docker 控制面 API
//
// 这是系统中唯一允许和容器引擎对话的组件。
// 所有操作都通过 Client 接口暴露，测试时使用 MockClient 替换，
// 不需要真实的 Docker daemon。
//
// 错误语义：
//   - IsNotFound(err)：容器/镜像不存在
//   - IsUnreachable(err)：控制面不可达（daemon 挂了或 socket 不通），
//     调用方应将计算单元标记为 degraded 而不是 error
//   - 其他错误：引擎拒绝了这次操作，原始消息原样保留
package dockerx
