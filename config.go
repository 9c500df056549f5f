package wechat

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hfup/wechat/types"
	"github.com/hfup/wechat/utils"
)

// LoadConfig 读取微信登录配置文件
// 参数：
//   - path yaml 配置文件路径
func LoadConfig(path string) (*types.WechatConfig, error) {
	if !utils.IsFileExists(path) {
		return nil, fmt.Errorf("配置文件不存在: %s", path)
	}
	config := &types.WechatConfig{}
	if err := utils.ReadYamlFile(path, config); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	logrus.WithField("path", path).Info("load wechat config success")
	return config, nil
}
