package ginx

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// isXMLRequest 检查请求是否为 XML 格式
func isXMLRequest(ctx *gin.Context) bool {
	contentType := ctx.GetHeader("Content-Type")
	return strings.Contains(contentType, "application/xml") ||
		strings.Contains(contentType, "text/xml")
}

// bindArgs 绑定请求参数
// 优先级：XML/JSON body（按 Content-Type）> URI 参数 > Query 参数
func bindArgs(ctx *gin.Context, args interface{}) error {
	if isXMLRequest(ctx) {
		if err := ctx.ShouldBindXML(args); err == nil {
			_ = ctx.ShouldBindUri(args)
			_ = ctx.ShouldBindQuery(args)
			setResponseFormat(ctx, formatXML)
			return nil
		}
	} else {
		if err := ctx.ShouldBindJSON(args); err == nil {
			_ = ctx.ShouldBindUri(args)
			_ = ctx.ShouldBindQuery(args)
			setResponseFormat(ctx, formatJSON)
			return nil
		}
	}

	if err := ctx.ShouldBindUri(args); err == nil {
		_ = ctx.ShouldBindQuery(args)
		setResponseFormat(ctx, formatJSON)
		return nil
	}

	setResponseFormat(ctx, formatJSON)
	return ctx.ShouldBindQuery(args)
}
