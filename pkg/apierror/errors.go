package apierror

// 预定义错误
// 校验失败和状态守卫失败同步返回给调用方，永远不自动重试；
// RuntimeUnreachable 可由调用方带退避重试，RuntimeOperationFailed 需要运维介入
var (
	// ErrValidationFailed 资源配额校验失败，Reasons 携带所有违反的规则
	ErrValidationFailed = &Error{
		Code:       "ValidationFailed",
		Message:    "The requested resource quota violates one or more validation rules.",
		HTTPStatus: 400,
	}

	// ErrStateConflict 状态守卫拒绝了这次转换
	ErrStateConflict = &Error{
		Code:       "StateConflict",
		Message:    "The requested transition is not permitted from the unit's current state.",
		HTTPStatus: 409,
	}

	// ErrAlreadyRunning 单元已经在运行（或正在启动）
	ErrAlreadyRunning = &Error{
		Code:       "StateConflict.AlreadyRunning",
		Message:    "The compute unit is already running or starting.",
		HTTPStatus: 409,
	}

	// ErrAlreadyStopped 单元已经停止（或正在停止）
	ErrAlreadyStopped = &Error{
		Code:       "StateConflict.AlreadyStopped",
		Message:    "The compute unit is already stopped or stopping.",
		HTTPStatus: 409,
	}

	// ErrUnitSuspended 单元被挂起，只有管理员恢复后才能操作
	ErrUnitSuspended = &Error{
		Code:       "StateConflict.UnitSuspended",
		Message:    "The compute unit is suspended. An administrator must resume it first.",
		HTTPStatus: 409,
	}

	// ErrUnitRunning 单元仍在运行，必须先停止才能删除
	ErrUnitRunning = &Error{
		Code:       "StateConflict.UnitRunning",
		Message:    "The compute unit is running. Stop it before deleting.",
		HTTPStatus: 409,
	}

	// ErrRuntimeUnreachable 容器运行时控制面不可达
	// 非致命：单元被标记为 degraded，调用方可以带退避重试
	ErrRuntimeUnreachable = &Error{
		Code:       "RuntimeUnreachable",
		Message:    "The container runtime control plane is unreachable. The unit has been marked degraded; retry later.",
		HTTPStatus: 503,
	}

	// ErrRuntimeOperationFailed 引擎拒绝了这次操作
	// 单元被标记为 error，需要运维介入；引擎的原始消息原样保留
	ErrRuntimeOperationFailed = &Error{
		Code:       "RuntimeOperationFailed",
		Message:    "The container runtime rejected the operation. The unit has been marked error.",
		HTTPStatus: 502,
	}

	// ErrNotFound 单元或备份不存在
	ErrNotFound = &Error{
		Code:       "NotFound",
		Message:    "The requested resource does not exist.",
		HTTPStatus: 404,
	}

	// ErrUnauthorizedOperation 管理员专属操作
	ErrUnauthorizedOperation = &Error{
		Code:       "UnauthorizedOperation",
		Message:    "You are not authorized to perform this operation.",
		HTTPStatus: 403,
	}

	// ErrInternalError 内部错误
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred. Retry your request, and contact the operator if the problem persists.",
		HTTPStatus: 500,
	}
)
