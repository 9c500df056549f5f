package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/hfup/wechat/caches"
	"github.com/hfup/wechat/types"
	"github.com/hfup/wechat/utils"
)

// jsCredentialTTL 凭据缓存时间
// 微信凭据有效期 7200 秒，提前过期避免使用到边界上的失效凭据
const jsCredentialTTL = 7000 * time.Second

// 缓存键
const (
	cacheKeyAccessToken = "access_token"
	cacheKeyJsapiTicket = "jsapi_ticket"
)

// SignPackage JS SDK 签名参数
type SignPackage struct {
	AppId     string `json:"appId"`
	NonceStr  string `json:"nonceStr"`
	Timestamp int64  `json:"timestamp"`
	Url       string `json:"url"`
	Signature string `json:"signature"`
}

// JsSDK 微信公众号 JS SDK 签名
// access_token 和 jsapi_ticket 独立于用户登录，按应用缓存
type JsSDK struct {
	appId     string
	appSecret string
	client    HTTPClientInf
	apiBase   string
	tokens    caches.CacheInf[string] // access_token 缓存
	tickets   caches.CacheInf[string] // jsapi_ticket 缓存
	sf        singleflight.Group
}

// NewJsSDK 创建 JS SDK 凭据缓存使用进程内缓存
func NewJsSDK(account *types.Account, opts ...Option) (*JsSDK, error) {
	return NewJsSDKWithCaches(account,
		caches.NewLocalCacheWithoutLoader[string](jsCredentialTTL),
		caches.NewLocalCacheWithoutLoader[string](jsCredentialTTL),
		opts...)
}

// NewJsSDKWithCaches 创建 JS SDK 并指定凭据缓存
// 多进程部署时应传入 redis 缓存，避免各进程分别刷新凭据导致相互失效
func NewJsSDKWithCaches(account *types.Account, tokens, tickets caches.CacheInf[string], opts ...Option) (*JsSDK, error) {
	if err := account.Check(); err != nil {
		return nil, err
	}
	o := newOptions(opts...)
	return &JsSDK{
		appId:     account.AppId,
		appSecret: account.AppSecret,
		client:    o.client,
		apiBase:   o.apiBase,
		tokens:    tokens,
		tickets:   tickets,
	}, nil
}

// accessToken 获取接口调用凭据 优先取缓存
func (s *JsSDK) accessToken(ctx context.Context) (string, error) {
	if token, err := s.tokens.Get(ctx, cacheKeyAccessToken); err == nil && token != "" {
		return token, nil
	}

	result, err, _ := s.sf.Do(cacheKeyAccessToken, func() (any, error) {
		body, err := s.client.Get(ctx, fmt.Sprintf("%s/cgi-bin/token?grant_type=client_credential&appid=%s&secret=%s",
			s.apiBase, s.appId, s.appSecret))
		if err != nil {
			return "", err
		}

		d := types.Dict{}
		if err := json.Unmarshal([]byte(body), &d); err != nil || len(d) == 0 {
			return "", &OAuthError{Message: "系统异常，请稍候再试"}
		}
		// 历史行为：该接口只在 errcode 大于 0 时视为失败
		if code := d.GetInt("errcode"); code > 0 {
			return "", &OAuthError{Code: code, Message: d.GetString("errmsg")}
		}
		token := d.GetString("access_token")
		if token == "" {
			return "", &OAuthError{Message: "无法获取accessToken"}
		}

		if err := s.tokens.Set(ctx, cacheKeyAccessToken, token); err != nil {
			logrus.WithError(err).Warn("缓存 access_token 失败")
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// jsapiTicket 获取 jsapi 调用票据 优先取缓存
func (s *JsSDK) jsapiTicket(ctx context.Context) (string, error) {
	if ticket, err := s.tickets.Get(ctx, cacheKeyJsapiTicket); err == nil && ticket != "" {
		return ticket, nil
	}

	result, err, _ := s.sf.Do(cacheKeyJsapiTicket, func() (any, error) {
		token, err := s.accessToken(ctx)
		if err != nil {
			return "", err
		}

		body, err := s.client.Get(ctx, fmt.Sprintf("%s/cgi-bin/ticket/getticket?type=jsapi&access_token=%s",
			s.apiBase, token))
		if err != nil {
			return "", err
		}
		d, err := ParseResult(body)
		if err != nil {
			return "", err
		}
		ticket := d.GetString("ticket")
		if ticket == "" {
			return "", &OAuthError{Message: "无法获取Ticket"}
		}

		if err := s.tickets.Set(ctx, cacheKeyJsapiTicket, ticket); err != nil {
			logrus.WithError(err).Warn("缓存 jsapi_ticket 失败")
		}
		return ticket, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// GetSignPackage 生成 JS SDK 签名参数
// 参数：
//   - pageUrl 调用 JS SDK 的页面完整地址 不含 # 之后的部分
//
// 签名串的参数顺序按 key 的 ASCII 码升序排列
func (s *JsSDK) GetSignPackage(ctx context.Context, pageUrl string) (*SignPackage, error) {
	if pageUrl == "" {
		return nil, &ParamError{Name: "url"}
	}
	ticket, err := s.jsapiTicket(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Unix()
	nonceStr := utils.RandStr(16, false)
	raw := fmt.Sprintf("jsapi_ticket=%s&noncestr=%s&timestamp=%d&url=%s", ticket, nonceStr, timestamp, pageUrl)

	return &SignPackage{
		AppId:     s.appId,
		NonceStr:  nonceStr,
		Timestamp: timestamp,
		Url:       pageUrl,
		Signature: utils.Sha1(raw),
	}, nil
}
