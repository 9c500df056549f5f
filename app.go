package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hfup/wechat/types"
)

// AppAuthData 微信APP登录授权数据
// 移动端 SDK 完成授权后返回的用户信息
type AppAuthData struct {
	OpenId     string `json:"openid"`     // openid
	UnionId    string `json:"unionid"`    // unionid 如果有
	Nickname   string `json:"nickname"`   // 昵称
	HeadImgUrl string `json:"headimgurl"` // 头像地址
	Province   string `json:"province"`   // 省份
	City       string `json:"city"`       // 城市
	Country    string `json:"country"`    // 国家
	Sex        int    `json:"sex"`        // 性别 1=男 2=女
}

// ParseAppAuthData 解析移动端 SDK 返回的 JSON 数据
// 性别超出 [0,2] 的值会被收敛
func ParseAppAuthData(data string) (*AppAuthData, error) {
	d := types.Dict{}
	if err := json.Unmarshal([]byte(data), &d); err != nil || len(d) == 0 {
		return nil, &OAuthError{Message: "系统异常，请稍候再试"}
	}
	return &AppAuthData{
		OpenId:     d.GetString("openid"),
		UnionId:    d.GetString("unionid"),
		Nickname:   d.GetString("nickname"),
		HeadImgUrl: d.GetString("headimgurl"),
		Province:   d.GetString("province"),
		City:       d.GetString("city"),
		Country:    d.GetString("country"),
		Sex:        types.ParseSex(d["sex"]),
	}, nil
}

// asDict 转为字典 供 OAuthInfo.UserInfo 使用
func (a *AppAuthData) asDict() types.Dict {
	return types.Dict{
		"openid":     a.OpenId,
		"unionid":    a.UnionId,
		"nickname":   a.Nickname,
		"headimgurl": a.HeadImgUrl,
		"province":   a.Province,
		"city":       a.City,
		"country":    a.Country,
		"sex":        a.Sex,
	}
}

// AppOAuth 微信APP登录驱动
// 授权流程由移动端 SDK 完成，服务端只验证 access_token 的有效性
type AppOAuth struct {
	appId       string
	appSecret   string
	client      HTTPClientInf
	apiBase     string
	accessToken string
	auth        *AppAuthData

	mu       sync.Mutex
	isVerify bool // access_token 是否已通过验证
	info     *types.OAuthInfo
}

// NewAppOAuth 创建APP登录驱动
// 参数：
//   - account 开放平台账户
//   - accessToken 移动端 SDK 返回的 access_token
//   - auth 移动端 SDK 返回的用户信息 openid 必须非空
func NewAppOAuth(account *types.Account, accessToken string, auth *AppAuthData, opts ...Option) (*AppOAuth, error) {
	if err := account.Check(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, &ParamError{Name: "accessToken"}
	}
	if auth == nil || strings.TrimSpace(auth.OpenId) == "" {
		return nil, &ParamError{Name: "openid"}
	}
	auth.OpenId = strings.TrimSpace(auth.OpenId)
	auth.Sex = types.ParseSex(auth.Sex)

	o := newOptions(opts...)
	return &AppOAuth{
		appId:       account.AppId,
		appSecret:   account.AppSecret,
		client:      o.client,
		apiBase:     o.apiBase,
		accessToken: accessToken,
		auth:        auth,
	}, nil
}

// LoginType 登录类型
func (a *AppOAuth) LoginType() string {
	return LoginTypeWechatApp
}

// UnionType 厂商类型
func (a *AppOAuth) UnionType() string {
	return UnionWechat
}

// GetInfo 获取用户信息
// 首次调用会请求微信验证 access_token 对 openid 是否有效，
// 同一实例验证通过后不再重复请求
func (a *AppOAuth) GetInfo(ctx context.Context) (*types.OAuthInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isVerify {
		body, err := a.client.Get(ctx, fmt.Sprintf("%s/sns/auth?access_token=%s&openid=%s",
			a.apiBase, a.accessToken, a.auth.OpenId))
		if err != nil {
			return nil, err
		}
		if _, err := ParseResult(body); err != nil {
			return nil, err
		}
		a.isVerify = true
	}

	info := &types.OAuthInfo{
		OpenId:   a.auth.OpenId,
		UnionId:  a.auth.UnionId,
		Nickname: a.auth.Nickname,
		Avatar:   a.auth.HeadImgUrl,
		Sex:      types.ParseSex(a.auth.Sex),
		UserInfo: a.auth.asDict(),
	}
	a.info = info
	return info, nil
}

// CanUpdateAvatar 是否可以更新头像
// 参数：
//   - avatar 用户已设置的头像地址
func (a *AppOAuth) CanUpdateAvatar(avatar string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	current := ""
	if a.info != nil {
		current = a.info.Avatar
	}
	return CanUpdateAvatar(avatar, current)
}
