package wechat

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hfup/wechat/utils"
)

var (
	testAesKey = []byte("0123456789abcdef")
	testAesIv  = []byte("fedcba9876543210")
)

// testEncryptPayload 按微信的加密方式构造密文
func testEncryptPayload(t *testing.T, payload any) (keyB64, ivB64, cipherB64 string) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	crypted, err := utils.AesEncryptCBCWithIv(data, testAesKey, testAesIv)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(testAesKey),
		base64.StdEncoding.EncodeToString(testAesIv),
		base64.StdEncoding.EncodeToString(crypted)
}

func TestDecryptPayload(t *testing.T) {
	t.Run("正常解密", func(t *testing.T) {
		keyB64, ivB64, cipherB64 := testEncryptPayload(t, map[string]any{
			"nickName": "小明",
			"gender":   1,
			"watermark": map[string]any{
				"appid":     "wxabc",
				"timestamp": 1700000000,
			},
		})
		result, err := DecryptPayload("wxabc", keyB64, ivB64, cipherB64)
		require.NoError(t, err)
		assert.Equal(t, "小明", result.GetString("nickName"))
		assert.Equal(t, 1, result.GetInt("gender"))
		assert.Equal(t, "wxabc", result.GetDict("watermark").GetString("appid"))
	})

	t.Run("水印appid不匹配", func(t *testing.T) {
		keyB64, ivB64, cipherB64 := testEncryptPayload(t, map[string]any{
			"watermark": map[string]any{"appid": "wxabc"},
		})
		_, err := DecryptPayload("wxother", keyB64, ivB64, cipherB64)
		var cryptoErr *CryptoError
		require.ErrorAs(t, err, &cryptoErr)
		assert.Equal(t, "数据非法", cryptoErr.Reason)
	})

	t.Run("密钥长度非法", func(t *testing.T) {
		_, ivB64, cipherB64 := testEncryptPayload(t, map[string]any{"a": 1})
		// 22 字符的 base64 解码不足 16 字节
		_, err := DecryptPayload("wxabc", "MDEyMzQ1Njc4OWFiY2RlZg", ivB64, cipherB64)
		var cryptoErr *CryptoError
		require.ErrorAs(t, err, &cryptoErr)
		assert.Equal(t, "encodingAesKey 非法", cryptoErr.Reason)
	})

	t.Run("向量长度非法", func(t *testing.T) {
		keyB64, _, cipherB64 := testEncryptPayload(t, map[string]any{"a": 1})
		_, err := DecryptPayload("wxabc", keyB64, "c2hvcnQ=", cipherB64)
		var cryptoErr *CryptoError
		require.ErrorAs(t, err, &cryptoErr)
		assert.Contains(t, cryptoErr.Reason, "iv非法")
	})

	t.Run("密文损坏", func(t *testing.T) {
		keyB64, ivB64, _ := testEncryptPayload(t, map[string]any{"a": 1})
		_, err := DecryptPayload("wxabc", keyB64, ivB64, "AAAA")
		var cryptoErr *CryptoError
		require.ErrorAs(t, err, &cryptoErr)
		assert.Equal(t, "数据解密失败", cryptoErr.Reason)
	})

	t.Run("明文不是JSON对象", func(t *testing.T) {
		data, err := utils.AesEncryptCBCWithIv([]byte("plain text"), testAesKey, testAesIv)
		require.NoError(t, err)
		_, err = DecryptPayload("wxabc",
			base64.StdEncoding.EncodeToString(testAesKey),
			base64.StdEncoding.EncodeToString(testAesIv),
			base64.StdEncoding.EncodeToString(data))
		var cryptoErr *CryptoError
		require.ErrorAs(t, err, &cryptoErr)
		assert.Equal(t, "数据解密失败", cryptoErr.Reason)
	})
}

func TestVerifySignature(t *testing.T) {
	rawData := `{"nickName":"a"}`
	assert.True(t, VerifySignature(rawData, "K", utils.Sha1(rawData+"K")))
	assert.False(t, VerifySignature(rawData, "K", "bad signature"))
	assert.False(t, VerifySignature(rawData, "other", utils.Sha1(rawData+"K")))
}
