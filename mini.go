package wechat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/hfup/wechat/caches"
	"github.com/hfup/wechat/types"
)

// defaultSessionTTL 默认会话缓存时间 小程序 code 五分钟内有效
const defaultSessionTTL = 5 * time.Minute

// MiniSession 小程序会话
// code 为一次性凭证，换取成功后按 code 缓存以支持重复调用
type MiniSession struct {
	OpenId     string `json:"openid"`
	UnionId    string `json:"unionid"`
	SessionKey string `json:"session_key"`
}

// MiniData 小程序登录数据
type MiniData struct {
	Code          string `json:"code"`           // wx.login() 获取的临时登录凭证
	Iv            string `json:"iv"`             // 加密算法的初始向量
	Signature     string `json:"signature"`      // rawData 的数据签名
	RawData       string `json:"raw_data"`       // 不含敏感信息的原始数据字符串
	EncryptedData string `json:"encrypted_data"` // 完整用户信息的加密数据
}

// PhoneResult 小程序手机号解密结果
type PhoneResult struct {
	PhoneNumber     string     `json:"phoneNumber"`     // 用户绑定的手机号 国外手机号会有区号
	PurePhoneNumber string     `json:"purePhoneNumber"` // 没有区号的手机号
	CountryCode     string     `json:"countryCode"`     // 区号
	Watermark       types.Dict `json:"watermark"`
}

// MiniOAuth 微信小程序登录驱动
type MiniOAuth struct {
	appId     string
	appSecret string
	client    HTTPClientInf
	apiBase   string
	sessions  caches.CacheInf[*MiniSession]
	sf        singleflight.Group

	mu     sync.Mutex
	avatar string // 最近一次获取到的头像地址
}

// NewMiniOAuth 创建小程序登录驱动 会话缓存使用进程内缓存
func NewMiniOAuth(account *types.Account, opts ...Option) (*MiniOAuth, error) {
	return NewMiniOAuthWithSessions(account, caches.NewLocalCacheWithoutLoader[*MiniSession](defaultSessionTTL), opts...)
}

// NewMiniOAuthWithSessions 创建小程序登录驱动并指定会话缓存
// 多进程部署时可传入 redis 缓存共享会话
func NewMiniOAuthWithSessions(account *types.Account, sessions caches.CacheInf[*MiniSession], opts ...Option) (*MiniOAuth, error) {
	if err := account.Check(); err != nil {
		return nil, err
	}
	o := newOptions(opts...)
	return &MiniOAuth{
		appId:     account.AppId,
		appSecret: account.AppSecret,
		client:    o.client,
		apiBase:   o.apiBase,
		sessions:  sessions,
	}, nil
}

// LoginType 登录类型
func (m *MiniOAuth) LoginType() string {
	return LoginTypeWechatMini
}

// UnionType 厂商类型
func (m *MiniOAuth) UnionType() string {
	return UnionWechat
}

// SessionByCode 通过小程序 code 换取会话密钥和 openid 及 unionId
// code 为一次性凭证，同一 code 并发调用只发起一次网络请求，
// 成功结果按 code 缓存，失败不落缓存
func (m *MiniOAuth) SessionByCode(ctx context.Context, code string) (*MiniSession, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ParamError{Name: "code"}
	}

	if session, err := m.sessions.Get(ctx, code); err == nil && session != nil {
		return session, nil
	}

	result, err, _ := m.sf.Do(code, func() (any, error) {
		// 等待期间可能已被其他协程换取
		if session, err := m.sessions.Get(ctx, code); err == nil && session != nil {
			return session, nil
		}
		return m.exchangeSession(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	return result.(*MiniSession), nil
}

// exchangeSession 请求微信换取会话
func (m *MiniOAuth) exchangeSession(ctx context.Context, code string) (*MiniSession, error) {
	body, err := m.client.Get(ctx, fmt.Sprintf("%s/sns/jscode2session?appid=%s&secret=%s&js_code=%s&grant_type=authorization_code",
		m.apiBase, m.appId, m.appSecret, code))
	if err != nil {
		return nil, err
	}
	result, err := ParseResult(body)
	if err != nil {
		return nil, err
	}

	session := &MiniSession{
		OpenId:     result.GetString("openid"),
		UnionId:    result.GetString("unionid"),
		SessionKey: result.GetString("session_key"),
	}
	if session.SessionKey == "" || session.OpenId == "" {
		return nil, &OAuthError{Message: "换取的票据数据异常"}
	}

	if err := m.sessions.Set(ctx, code, session); err != nil {
		logrus.WithError(err).Warn("缓存小程序会话失败")
	}
	return session, nil
}

// GetInfo 获取用户信息
// 解密 encryptedData 并校验水印与 rawData 签名
func (m *MiniOAuth) GetInfo(ctx context.Context, data *MiniData) (*types.OAuthInfo, error) {
	if data == nil {
		return nil, &ParamError{Name: "data"}
	}
	if strings.TrimSpace(data.Code) == "" {
		return nil, &ParamError{Name: "code"}
	}
	if data.Iv == "" {
		return nil, &ParamError{Name: "iv"}
	}
	if data.EncryptedData == "" {
		return nil, &ParamError{Name: "encryptedData"}
	}
	if data.Signature == "" {
		return nil, &ParamError{Name: "signature"}
	}
	if data.RawData == "" {
		return nil, &ParamError{Name: "rawData"}
	}

	session, err := m.SessionByCode(ctx, data.Code)
	if err != nil {
		return nil, err
	}

	result, err := DecryptPayload(m.appId, session.SessionKey, data.Iv, data.EncryptedData)
	if err != nil {
		return nil, err
	}
	if !VerifySignature(data.RawData, session.SessionKey, data.Signature) {
		return nil, &CryptoError{Reason: "数据签名验证失败"}
	}

	info := &types.OAuthInfo{
		OpenId:   session.OpenId,
		UnionId:  session.UnionId,
		Nickname: result.GetString("nickName"),
		Avatar:   result.GetString("avatarUrl"),
		Sex:      types.ParseSex(result["gender"]),
		UserInfo: result,
	}

	m.mu.Lock()
	m.avatar = info.Avatar
	m.mu.Unlock()
	return info, nil
}

// GetPhone 获取手机号
// 复用 code 对应的会话解密手机号密文
func (m *MiniOAuth) GetPhone(ctx context.Context, code, encryptedData, iv string) (*PhoneResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &ParamError{Name: "code"}
	}
	if encryptedData == "" {
		return nil, &ParamError{Name: "encryptedData"}
	}
	if iv == "" {
		return nil, &ParamError{Name: "iv"}
	}

	session, err := m.SessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	result, err := DecryptPayload(m.appId, session.SessionKey, iv, encryptedData)
	if err != nil {
		return nil, err
	}

	return &PhoneResult{
		PhoneNumber:     result.GetString("phoneNumber"),
		PurePhoneNumber: result.GetString("purePhoneNumber"),
		CountryCode:     result.GetString("countryCode"),
		Watermark:       result.GetDict("watermark"),
	}, nil
}

// CanUpdateAvatar 是否可以更新头像
// 参数：
//   - avatar 用户已设置的头像地址
func (m *MiniOAuth) CanUpdateAvatar(avatar string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CanUpdateAvatar(avatar, m.avatar)
}
