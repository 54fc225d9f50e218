package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Companion  CompanionConfig  `yaml:"companion"`
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`
	Monitor    MonitorConfig    `yaml:"monitor"`
}

// CompanionConfig 伴随程序（串口桥接程序）连接配置
type CompanionConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Address 返回 host:port 形式的地址
func (c CompanionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SimulationConfig 仿真模式配置
type SimulationConfig struct {
	// StartupDelay 激活后第一行数据发送前的等待时间
	StartupDelay time.Duration `yaml:"startup_delay"`
}

// StorageConfig 会话日志存储配置
type StorageConfig struct {
	// BaseDir 会话日志根目录，留空表示 $HOME/Documents
	BaseDir string `yaml:"base_dir"`
	AppName string `yaml:"app_name"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Channel  string `yaml:"channel"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	MetricsPort int  `yaml:"metrics_port"`
}

// LoadConfig 加载配置文件
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 日志根目录留空表示使用默认位置
	if config.Storage.BaseDir == "" {
		config.Storage.BaseDir = GetDefaultConfig().Storage.BaseDir
	}

	return config, nil
}

// GetDefaultConfig 返回默认配置
func GetDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Companion: CompanionConfig{
			Host:         "127.0.0.1",
			Port:         7777,
			DialTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Simulation: SimulationConfig{
			StartupDelay: 5 * time.Second,
		},
		Storage: StorageConfig{
			BaseDir: filepath.Join(home, "Documents"),
			AppName: "CC2022-Control-Panel",
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			Channel:  "cansat_telemetry",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Monitor: MonitorConfig{
			Enabled:     true,
			MetricsPort: 9090,
		},
	}
}
