package ginx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/cvp/pkg/apierror"
)

const (
	// responseFormatKey 在 gin.Context 中存储响应格式
	responseFormatKey = "ginx.responseFormat"

	formatJSON = "json"
	formatXML  = "xml"
)

// setResponseFormat 记录响应格式
func setResponseFormat(ctx *gin.Context, format string) {
	ctx.Set(responseFormatKey, format)
}

// isXMLResponse 检查是否应该使用 XML 响应
func isXMLResponse(ctx *gin.Context) bool {
	if format := ctx.GetString(responseFormatKey); format == formatXML {
		return true
	}
	accept := ctx.GetHeader("Accept")
	return strings.Contains(accept, "application/xml") ||
		strings.Contains(accept, "text/xml")
}

// renderResponse 渲染成功响应
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	if isXMLResponse(ctx) {
		ctx.XML(http.StatusOK, response)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// renderError 渲染错误响应
// *apierror.Error 使用其自带的 HTTP 状态码和错误码序列化，其他错误用默认格式
func renderError(ctx *gin.Context, statusCode int, err error) {
	useXML := isXMLResponse(ctx)

	if apiErr, ok := err.(*apierror.Error); ok {
		if apiErr.HTTPStatus > 0 {
			statusCode = apiErr.HTTPStatus
		}
		errorResp := apierror.NewErrorResponse(requestID(ctx), apiErr)
		if useXML {
			ctx.XML(statusCode, errorResp)
		} else {
			ctx.JSON(statusCode, errorResp)
		}
		return
	}

	errorMsg := gin.H{"error": err.Error()}
	if useXML {
		ctx.XML(statusCode, errorMsg)
	} else {
		ctx.JSON(statusCode, errorMsg)
	}
}

// requestID 读取请求 ID（由中间件注入，缺省为空）
func requestID(ctx *gin.Context) string {
	return ctx.GetString("requestID")
}
