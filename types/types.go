package types

import "strconv"

// Dict 字典
type Dict map[string]any

// GetString 获取字符串值，不存在或类型不符返回空字符串
func (d Dict) GetString(key string) string {
	if v, ok := d[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt 获取整数值，兼容 json 解码出的 float64 和字符串数字
func (d Dict) GetInt(key string) int {
	v, ok := d[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

// GetDict 获取嵌套字典
func (d Dict) GetDict(key string) Dict {
	if v, ok := d[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return Dict(m)
		}
		if m, ok := v.(Dict); ok {
			return m
		}
	}
	return nil
}

// 性别
const (
	SexUnknown = 0 // 未知
	SexMale    = 1 // 男
	SexFemale  = 2 // 女
)

// ParseSex 解析性别 超出范围的值收敛到 [0,2]
func ParseSex(v any) int {
	sex := Dict{"sex": v}.GetInt("sex")
	if sex < SexUnknown {
		return SexUnknown
	}
	if sex > SexFemale {
		return SexFemale
	}
	return sex
}

// OAuthInfo 三方登录用户信息
type OAuthInfo struct {
	OpenId   string `json:"open_id"`   // 用户在当前应用下的唯一标识
	UnionId  string `json:"union_id"`  // 开放平台下的跨应用标识 可能为空
	Nickname string `json:"nickname"`  // 昵称
	Avatar   string `json:"avatar"`    // 头像地址
	Sex      int    `json:"sex"`       // 性别 0未知 1男 2女
	UserInfo Dict   `json:"user_info"` // 三方返回的原始数据
}
