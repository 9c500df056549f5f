package wechat

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/hfup/wechat/types"
	"github.com/hfup/wechat/utils"
)

// DecryptPayload 检验数据的真实性并获取解密后的明文
// 参数:
//   - appId 期望的应用 AppId，与明文中的水印比对
//   - sessionKey base64 编码的会话密钥 解码后为 16 字节
//   - iv base64 编码的初始向量 解码后为 16 字节
//   - encryptedData base64 编码的 AES-128-CBC 密文
//
// 返回:
//   - 解密后的明文数据
//   - error 错误信息
func DecryptPayload(appId, sessionKey, iv, encryptedData string) (types.Dict, error) {
	if len(sessionKey) != 24 {
		return nil, &CryptoError{Reason: "encodingAesKey 非法"}
	}
	aesKey, err := base64.StdEncoding.DecodeString(sessionKey)
	if err != nil || len(aesKey) != 16 {
		return nil, &CryptoError{Reason: "encodingAesKey 非法"}
	}

	if len(iv) != 24 {
		return nil, &CryptoError{Reason: fmt.Sprintf("iv非法 %d", len(iv))}
	}
	aesIv, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(aesIv) != 16 {
		return nil, &CryptoError{Reason: fmt.Sprintf("iv非法 %d", len(iv))}
	}

	aesCipher, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return nil, &CryptoError{Reason: "数据解密失败"}
	}

	plain, err := utils.AesDecryptCBCWithIv(aesCipher, aesKey, aesIv)
	if err != nil {
		return nil, &CryptoError{Reason: "数据解密失败"}
	}

	result := types.Dict{}
	if err := json.Unmarshal(plain, &result); err != nil || len(result) == 0 {
		return nil, &CryptoError{Reason: "数据解密失败"}
	}

	// 水印校验 防止使用其他应用的密文重放
	if result.GetDict("watermark").GetString("appid") != appId {
		return nil, &CryptoError{Reason: "数据非法"}
	}

	return result, nil
}

// VerifySignature 校验 rawData 的数据签名
// 签名为 sha1(rawData + sessionKey)，sessionKey 为 base64 原文
func VerifySignature(rawData, sessionKey, signature string) bool {
	return utils.Sha1(rawData+sessionKey) == signature
}
