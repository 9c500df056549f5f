package wechat

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthCode 从授权回调请求中读取 code
func AuthCode(c *gin.Context) string {
	return strings.TrimSpace(c.Query("code"))
}

// RedirectAuth 跳转到微信授权页
func RedirectAuth(c *gin.Context, p *PublicOAuth, redirectURI string) {
	c.Redirect(http.StatusFound, p.AuthorizeURL(redirectURI))
}

const closeBrowserHTML = `<!doctype html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, user-scalable=no, initial-scale=1.0, maximum-scale=1.0, minimum-scale=1.0">
    <meta http-equiv="X-UA-Compatible" content="ie=edge">
    <title>消息</title>
</head>
<body>
    <script src='http://res.wx.qq.com/open/js/jweixin-1.0.0.js'></script>
    <script>
        %s
        setInterval(function() {
            wx.closeWindow();
        }, 50);
    </script>
</body>
</html>`

// CloseBrowser 提示消息并关闭微信浏览器
// 参数：
//   - message 提示的消息内容 为空时直接关闭
func CloseBrowser(c *gin.Context, message string) {
	message = strings.TrimSpace(message)
	script := ""
	if message != "" {
		message = strings.ReplaceAll(message, `"`, `\"`)
		script = fmt.Sprintf(`alert("%s");`, message)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(closeBrowserHTML, script)))
}
