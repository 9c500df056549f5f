package wechat

import (
	"encoding/json"
	"strings"

	"github.com/hfup/wechat/types"
)

// ParseResult 解析微信接口返回数据
// 返回数据为空或非 JSON 对象时视为系统异常
// errcode 存在且不为 0 时返回业务错误
func ParseResult(body string) (types.Dict, error) {
	result := types.Dict{}
	if err := json.Unmarshal([]byte(body), &result); err != nil || len(result) == 0 {
		return nil, &OAuthError{Message: "系统异常，请稍候再试"}
	}
	if _, ok := result["errcode"]; ok {
		if code := result.GetInt("errcode"); code != 0 {
			return nil, &OAuthError{Code: code, Message: result.GetString("errmsg")}
		}
	}
	return result, nil
}

// CanUpdateAvatar 是否可以更新头像
// 参数:
//   - oldAvatar 用户已设置的头像地址
//   - newAvatar 本次获取到的头像地址
func CanUpdateAvatar(oldAvatar, newAvatar string) bool {
	// 无头像需要更新
	if oldAvatar == "" {
		return true
	}

	// 无需更新
	if oldAvatar == newAvatar {
		return false
	}

	// 用户已设置的头像在微信域名下时可以更新
	if strings.Index(strings.ToLower(oldAvatar), "qlogo.cn") > 0 {
		return true
	}

	return false
}
