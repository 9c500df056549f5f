package wechat

import (
	"fmt"
	"sync"
)

// 登录类型
const (
	LoginTypeWechatPublic = "wechat_public" // 微信公众号登录
	LoginTypeWechatApp    = "wechat_app"    // 微信APP登录
	LoginTypeWechatMini   = "wechat_mini"   // 微信小程序登录
)

// UnionWechat 厂商类型
const UnionWechat = "wechat"

// 微信接口地址
const (
	defaultAPIBase   = "https://api.weixin.qq.com"
	openAuthorizeURL = "https://open.weixin.qq.com/connect/oauth2/authorize"
)

// DriverInf 登录驱动接口
type DriverInf interface {
	LoginType() string                  // 登录类型
	UnionType() string                  // 厂商类型
	CanUpdateAvatar(avatar string) bool // 是否可以更新头像
}

// Manager 登录驱动管理器
type Manager struct {
	mu      sync.RWMutex
	drivers map[string]DriverInf
}

// NewManager 创建登录驱动管理器
func NewManager() *Manager {
	return &Manager{
		drivers: make(map[string]DriverInf),
	}
}

// AddDriver 添加登录驱动
func (m *Manager) AddDriver(driver DriverInf) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.LoginType()]; ok {
		return fmt.Errorf("登录驱动 %s 已存在", driver.LoginType())
	}
	m.drivers[driver.LoginType()] = driver
	return nil
}

// GetDriver 获取登录驱动
func (m *Manager) GetDriver(loginType string) (DriverInf, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[loginType]
	if !ok {
		return nil, fmt.Errorf("登录驱动 %s 不存在", loginType)
	}
	return driver, nil
}

// RemoveDriver 删除登录驱动
func (m *Manager) RemoveDriver(loginType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[loginType]; !ok {
		return fmt.Errorf("登录驱动 %s 不存在", loginType)
	}
	delete(m.drivers, loginType)
	return nil
}

// options 驱动可选参数
type options struct {
	client  HTTPClientInf
	apiBase string
}

// Option 驱动可选参数设置函数
type Option func(*options)

// WithHTTPClient 设置 http 客户端
func WithHTTPClient(client HTTPClientInf) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithAPIBase 设置微信接口地址
func WithAPIBase(apiBase string) Option {
	return func(o *options) {
		o.apiBase = apiBase
	}
}

func newOptions(opts ...Option) options {
	o := options{
		client:  defaultClient,
		apiBase: defaultAPIBase,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
