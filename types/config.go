package types

import (
	"errors"
	"fmt"
)

// Account 三方应用账户
type Account struct {
	AppId     string `yaml:"app_id" json:"app_id"`         // 应用 AppId
	AppSecret string `yaml:"app_secret" json:"app_secret"` // 应用密钥
}

// Check 校验账户配置
func (a *Account) Check() error {
	if a == nil || a.AppId == "" {
		return errors.New("app_id 不能为空")
	}
	if a.AppSecret == "" {
		return errors.New("app_secret 不能为空")
	}
	return nil
}

// ChannelConfig 单个登录渠道配置
// Multi 用于同一渠道下配置多个账户，key 为账户 id
type ChannelConfig struct {
	Account `yaml:",inline"`
	Multi   map[string]*Account `yaml:"multi,omitempty" json:"multi,omitempty"` // 多账户配置
}

// Resolve 解析账户配置
// 参数：
//   - accountId 账户 id，为空取默认账户
//
// 返回：
//   - 账户配置
//   - 错误
func (c *ChannelConfig) Resolve(accountId string) (*Account, error) {
	if c == nil {
		return nil, errors.New("渠道未配置")
	}
	if accountId == "" {
		if err := c.Account.Check(); err != nil {
			return nil, err
		}
		return &c.Account, nil
	}
	account, ok := c.Multi[accountId]
	if !ok {
		return nil, fmt.Errorf("账户 %s 未配置", accountId)
	}
	if err := account.Check(); err != nil {
		return nil, err
	}
	return account, nil
}

// WechatConfig 微信登录配置
type WechatConfig struct {
	Public *ChannelConfig `yaml:"public" json:"public"` // 公众号
	App    *ChannelConfig `yaml:"app" json:"app"`       // 开放平台 APP
	Mini   *ChannelConfig `yaml:"mini" json:"mini"`     // 小程序
}
