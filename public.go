package wechat

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/hfup/wechat/types"
	"github.com/hfup/wechat/utils"
)

// PublicOAuth 微信公众号登录驱动
// 同一实例对应一次授权回调，access_token 与用户信息按实例记忆
type PublicOAuth struct {
	appId     string
	appSecret string
	hidden    bool // 是否静默授权
	client    HTTPClientInf
	apiBase   string

	mu          sync.Mutex
	openid      string
	accessToken string
	info        *types.OAuthInfo
}

// NewPublicOAuth 创建公众号登录驱动
// 参数：
//   - account 公众号账户
//   - hidden 是否静默授权 静默授权只能获取 openid
func NewPublicOAuth(account *types.Account, hidden bool, opts ...Option) (*PublicOAuth, error) {
	if err := account.Check(); err != nil {
		return nil, err
	}
	o := newOptions(opts...)
	return &PublicOAuth{
		appId:     account.AppId,
		appSecret: account.AppSecret,
		hidden:    hidden,
		client:    o.client,
		apiBase:   o.apiBase,
	}, nil
}

// LoginType 登录类型
func (p *PublicOAuth) LoginType() string {
	return LoginTypeWechatPublic
}

// UnionType 厂商类型
func (p *PublicOAuth) UnionType() string {
	return UnionWechat
}

// AuthorizeURL 构建授权跳转地址
// 静默授权 scope 为 snsapi_base，否则为 snsapi_userinfo
func (p *PublicOAuth) AuthorizeURL(redirectURI string) string {
	scope := "snsapi_userinfo"
	if p.hidden {
		scope = "snsapi_base"
	}
	state := utils.RandStr(32, false)
	return fmt.Sprintf("%s?appid=%s&redirect_uri=%s&response_type=code&scope=%s&state=%s#wechat_redirect",
		openAuthorizeURL, p.appId, url.QueryEscape(redirectURI), scope, state)
}

// AccessToken 通过授权 code 换取 access_token
// code 为一次性凭证，同一实例只发起一次换取
func (p *PublicOAuth) AccessToken(ctx context.Context, code string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessTokenLocked(ctx, code)
}

func (p *PublicOAuth) accessTokenLocked(ctx context.Context, code string) (string, error) {
	if p.accessToken != "" && p.openid != "" {
		return p.accessToken, nil
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", &ParamError{Name: "code"}
	}

	body, err := p.client.Get(ctx, fmt.Sprintf("%s/sns/oauth2/access_token?appid=%s&secret=%s&code=%s&grant_type=authorization_code",
		p.apiBase, p.appId, p.appSecret, code))
	if err != nil {
		return "", err
	}
	result, err := ParseResult(body)
	if err != nil {
		return "", err
	}

	openid := result.GetString("openid")
	accessToken := result.GetString("access_token")
	if openid == "" || accessToken == "" {
		return "", &OAuthError{Message: "换取的票据数据异常"}
	}
	p.openid = openid
	p.accessToken = accessToken
	return p.accessToken, nil
}

// OpenId 获取 openid
func (p *PublicOAuth) OpenId(ctx context.Context, code string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.accessTokenLocked(ctx, code); err != nil {
		return "", err
	}
	return p.openid, nil
}

// GetInfo 获取用户信息
// 参数：
//   - code 授权回调携带的一次性 code
func (p *PublicOAuth) GetInfo(ctx context.Context, code string) (*types.OAuthInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.info != nil {
		return p.info, nil
	}

	token, err := p.accessTokenLocked(ctx, code)
	if err != nil {
		return nil, err
	}

	body, err := p.client.Get(ctx, fmt.Sprintf("%s/sns/userinfo?access_token=%s&openid=%s&lang=zh_CN",
		p.apiBase, token, p.openid))
	if err != nil {
		return nil, err
	}
	result, err := ParseResult(body)
	if err != nil {
		return nil, err
	}

	info := &types.OAuthInfo{
		OpenId:   result.GetString("openid"),
		Nickname: result.GetString("nickname"),
		Avatar:   result.GetString("headimgurl"),
		Sex:      types.ParseSex(result["sex"]),
		UserInfo: result,
	}
	if info.OpenId == "" {
		return nil, &OAuthError{Message: "换取的票据数据异常"}
	}
	// unionid 只在返回非空时设置
	if unionid := result.GetString("unionid"); unionid != "" {
		info.UnionId = unionid
	}

	p.openid = info.OpenId
	p.info = info
	return info, nil
}

// CanUpdateAvatar 是否可以更新头像
// 参数：
//   - avatar 用户已设置的头像地址
func (p *PublicOAuth) CanUpdateAvatar(avatar string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	current := ""
	if p.info != nil {
		current = p.info.Avatar
	}
	return CanUpdateAvatar(avatar, current)
}
