package utils

import (
	"os"

	"gopkg.in/yaml.v3"
)

// 判断文件是否存在
// 参数：
//   - path 文件路径
//
// 返回：
//   - 是否存在
func IsFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || os.IsExist(err)
}

// 读取yaml文件
// 参数：
//   - path 文件路径
//   - dest 目标结构体
//
// 返回：
//   - 错误
func ReadYamlFile(path string, dest any) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewDecoder(f).Decode(dest)
}
