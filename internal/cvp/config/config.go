// Package config 提供服务配置
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Address 是 API 监听地址
	// 可以通过环境变量 CVP_ADDRESS 配置
	Address string `yaml:"address"`

	// DataDir 是 CVP 数据目录，存放 SQLite 数据库
	// 可以通过环境变量 CVP_DATA_DIR 配置
	// 默认：~/.local/share/cvp
	DataDir string `yaml:"data_dir"`

	// DockerHost 是容器运行时控制面地址
	// 留空时由 Docker 客户端按 DOCKER_HOST 环境变量和默认 socket 自行解析
	DockerHost string `yaml:"docker_host"`
}

// New 加载配置
// 优先级：环境变量 > 配置文件（CVP_CONFIG 指定的 YAML）> 默认值
func New() (*Config, error) {
	cfg := &Config{}

	// 1. 配置文件打底
	if path := os.Getenv("CVP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// 2. 环境变量覆盖
	if addr := os.Getenv("CVP_ADDRESS"); addr != "" {
		cfg.Address = addr
	}
	if dir := os.Getenv("CVP_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		cfg.DockerHost = host
	}

	// 3. 默认值兜底
	if cfg.Address == "" {
		cfg.Address = "0.0.0.0:7777"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	return cfg, nil
}

// DBPath 返回 SQLite 数据库文件路径
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "cvp.db")
}

// defaultDataDir 获取默认数据目录
func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "cvp")
	}

	// 无法获取主目录时使用当前目录下的 data
	return filepath.Join(".", "data")
}
