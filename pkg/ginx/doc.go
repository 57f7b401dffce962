// Package ginx 提供 gin handler 的泛型适配器
//
// 业务 handler 写成 func(ctx, *Req) (*Resp, error) 的形式，
// 参数绑定、校验、错误渲染都由适配器统一处理。
// 请求是 XML 时响应也是 XML，否则默认 JSON。
package ginx
