package wechat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYaml = `public:
  app_id: wxpub123
  app_secret: pubsecret
mini:
  app_id: wxmini123
  app_secret: minisecret
  multi:
    shop:
      app_id: wxshop123
      app_secret: shopsecret
    empty:
      app_id: wxempty
      app_secret: ""
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wechat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYaml), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, config.Public)
	require.NotNil(t, config.Mini)
	assert.Nil(t, config.App)

	t.Run("默认账户", func(t *testing.T) {
		account, err := config.Mini.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "wxmini123", account.AppId)
		assert.Equal(t, "minisecret", account.AppSecret)
	})

	t.Run("多账户", func(t *testing.T) {
		account, err := config.Mini.Resolve("shop")
		require.NoError(t, err)
		assert.Equal(t, "wxshop123", account.AppId)
	})

	t.Run("账户未配置", func(t *testing.T) {
		_, err := config.Mini.Resolve("missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("账户配置不完整", func(t *testing.T) {
		_, err := config.Mini.Resolve("empty")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app_secret")
	})

	t.Run("未配置的渠道", func(t *testing.T) {
		_, err := config.App.Resolve("")
		require.Error(t, err)
	})
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}
