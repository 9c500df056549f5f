package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// PKCS7Padding 填充明文到块大小的整数倍
func PKCS7Padding(origData []byte, blockSize int) []byte {
	padding := blockSize - len(origData)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(origData, padtext...)
}

// PKCS7UnPadding 去除填充并校验填充字节
func PKCS7UnPadding(origData []byte) ([]byte, error) {
	length := len(origData)
	if length == 0 {
		return nil, errors.New("decrypted data is empty")
	}
	padding := int(origData[length-1])
	if padding == 0 || padding > aes.BlockSize || padding > length {
		return nil, errors.New("invalid padding")
	}
	for i := length - padding; i < length; i++ {
		if origData[i] != byte(padding) {
			return nil, errors.New("invalid padding")
		}
	}
	return origData[:length-padding], nil
}

// AesEncryptCBCWithIv AES-CBC加密
// 参数:
//   - origData 原始数据
//   - key 加密密钥 长度必须为 16、24 或 32
//   - iv 初始向量 长度必须等于块大小
//
// 返回:
//   - 加密后的数据
//   - err 错误信息
func AesEncryptCBCWithIv(origData, key, iv []byte) ([]byte, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, errors.New("key length must be 16, 24 or 32")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.New("iv length must equal block size")
	}
	origData = PKCS7Padding(origData, block.BlockSize())
	blockMode := cipher.NewCBCEncrypter(block, iv)
	crypted := make([]byte, len(origData))
	blockMode.CryptBlocks(crypted, origData)
	return crypted, nil
}

// AesDecryptCBCWithIv AES-CBC解密
// 参数:
//   - encrypted 加密后的数据
//   - key 加密密钥
//   - iv 初始向量
//
// 返回:
//   - 解密后的数据
//   - err 错误信息
func AesDecryptCBCWithIv(encrypted, key, iv []byte) ([]byte, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, errors.New("key length must be 16, 24 or 32")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.New("iv length must equal block size")
	}
	if len(encrypted) == 0 || len(encrypted)%block.BlockSize() != 0 {
		return nil, errors.New("encrypted data is not a multiple of the block size")
	}
	blockMode := cipher.NewCBCDecrypter(block, iv)
	origData := make([]byte, len(encrypted))
	blockMode.CryptBlocks(origData, encrypted)
	return PKCS7UnPadding(origData)
}
