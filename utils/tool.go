package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"math/rand"
	"sync"
	"time"
)

var (
	seedTime    = time.Now().UnixNano()
	seedLock    = sync.Mutex{}
	currentStep = 1
)

// RandStr 随机字符串
// 参数:
//   - lenStr 字符串长度
//   - isNum 是否只包含数字
func RandStr(lenStr int, isNum bool) string {
	seedLock.Lock()
	defer seedLock.Unlock()
	currentStep++
	seedNum := seedTime + int64(currentStep)
	chars := "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if isNum {
		chars = "0123456789"
	}
	bytes := []byte(chars)
	result := make([]byte, 0, lenStr)
	r := rand.New(rand.NewSource(seedNum))
	for i := 0; i < lenStr; i++ {
		result = append(result, bytes[r.Intn(len(bytes))])
	}
	return string(result)
}

// Sha1 计算字符串的 sha1 十六进制摘要
func Sha1(str string) string {
	h := sha1.New()
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}
