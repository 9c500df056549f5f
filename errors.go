package wechat

import "fmt"

// OAuthError 微信接口返回的业务错误
// Code 为微信返回的 errcode，Message 为 errmsg
type OAuthError struct {
	Code    int
	Message string
}

func (e *OAuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s [%d]", e.Message, e.Code)
	}
	return e.Message
}

// CryptoError 数据解密或签名校验失败 不可重试
type CryptoError struct {
	Reason string
}

func (e *CryptoError) Error() string {
	return e.Reason
}

// ParamError 缺少必要参数 未发起任何网络请求
type ParamError struct {
	Name string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("缺少参数 %s", e.Name)
}

// TransportError 网络请求失败
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP请求失败: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
