/*
 * @Description: 统一配置管理 (ini 文件 + .env + 环境变量)
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-09-14 10:12:40
 * @LastEditors: 安知鱼
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyServerPort  = "System.Port"
	KeyServerDebug = "System.Debug"

	KeyDBType     = "Database.Type"
	KeyDBHost     = "Database.Host"
	KeyDBPort     = "Database.Port"
	KeyDBUser     = "Database.User"
	KeyDBPassword = "Database.Password"
	KeyDBName     = "Database.Name"
	KeyDBDebug    = "Database.Debug"

	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyJWTSecret        = "JWT.Secret"
	KeyJWTAccessExpire  = "JWT.AccessExpire"
	KeyJWTRefreshExpire = "JWT.RefreshExpire"

	KeyUploadDriver  = "Upload.Driver"
	KeyUploadDir     = "Upload.Dir"
	KeyUploadBaseURL = "Upload.BaseURL"
	KeyUploadMaxSize = "Upload.MaxSize"

	KeyS3Region    = "S3.Region"
	KeyS3Endpoint  = "S3.Endpoint"
	KeyS3Bucket    = "S3.Bucket"
	KeyS3AccessKey = "S3.AccessKey"
	KeyS3SecretKey = "S3.SecretKey"
	KeyS3PublicURL = "S3.PublicURL"

	KeyOSSEndpoint  = "OSS.Endpoint"
	KeyOSSBucket    = "OSS.Bucket"
	KeyOSSAccessKey = "OSS.AccessKey"
	KeyOSSSecretKey = "OSS.SecretKey"
	KeyOSSPublicURL = "OSS.PublicURL"

	KeyCommentAutoApprove = "Comment.AutoApprove"

	KeyAdminUsername = "Admin.Username"
	KeyAdminPassword = "Admin.Password"
	KeyAdminEmail    = "Admin.Email"
)

// 定义所有允许被环境变量覆盖的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyJWTSecret, KeyJWTAccessExpire, KeyJWTRefreshExpire,
	KeyUploadDriver, KeyUploadDir, KeyUploadBaseURL, KeyUploadMaxSize,
	KeyS3Region, KeyS3Endpoint, KeyS3Bucket, KeyS3AccessKey, KeyS3SecretKey, KeyS3PublicURL,
	KeyOSSEndpoint, KeyOSSBucket, KeyOSSAccessKey, KeyOSSSecretKey, KeyOSSPublicURL,
	KeyCommentAutoApprove,
	KeyAdminUsername, KeyAdminPassword, KeyAdminEmail,
}

const (
	DefaultConfigPath = "data/conf.ini"
	envPrefix         = "BLOG"
)

type Config struct {
	vp *viper.Viper
}

// NewConfig 从默认路径加载配置
func NewConfig() (*Config, error) {
	return Load(DefaultConfigPath)
}

// Load 按 "内部默认值 -> conf.ini -> .env -> 环境变量" 的顺序加载配置，后者覆盖前者。
func Load(filePath string) (*Config, error) {
	vp := viper.New()
	setDefaults(vp)

	// --- 步骤 1: 使用 go-ini 从文件加载配置 ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
				}
			}
		} else {
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了配置。", filePath)
	}

	// --- 步骤 2: 加载 .env 文件（不存在时忽略），它只会填充尚未设置的环境变量 ---
	if err := godotenv.Load(); err == nil {
		log.Println("已从 .env 文件加载环境变量。")
	}

	// --- 步骤 3: 环境变量覆盖 ---
	envReplacer := strings.NewReplacer(".", "_")
	for _, key := range allKeys {
		// 例如 BLOG_DATABASE_HOST
		envVarName := fmt.Sprintf("%s_%s", envPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

// NewFromMap 直接用键值对构建配置，主要供测试和嵌入式场景使用。
func NewFromMap(values map[string]interface{}) *Config {
	vp := viper.New()
	setDefaults(vp)
	for k, v := range values {
		vp.Set(k, v)
	}
	return &Config{vp: vp}
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault(KeyServerPort, "8091")
	vp.SetDefault(KeyDBType, "sqlite")
	vp.SetDefault(KeyDBName, "blog.db")
	vp.SetDefault(KeyRedisDB, "0")
	vp.SetDefault(KeyJWTAccessExpire, "24h")
	vp.SetDefault(KeyJWTRefreshExpire, "168h")
	vp.SetDefault(KeyUploadDriver, "local")
	vp.SetDefault(KeyUploadDir, "data/uploads")
	vp.SetDefault(KeyUploadMaxSize, 10)
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// GetDuration 支持 "24h"、"30m" 这类写法；纯数字按秒处理。
func (c *Config) GetDuration(key string) time.Duration {
	raw := strings.TrimSpace(c.vp.GetString(key))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return time.Duration(c.vp.GetInt64(key)) * time.Second
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	defaultConfig := `[System]
Port = 8091
Debug = false

[Database]
Type = sqlite
Name = blog.db
Debug = false

# Redis 配置（可选），留空 Addr 时使用内存缓存
[Redis]
Addr =
Password =
DB = 0

[JWT]
# 生产环境务必修改
Secret = change-me-please
AccessExpire = 24h
RefreshExpire = 168h

# Driver 可选 local / s3 / oss
[Upload]
Driver = local
Dir = data/uploads
BaseURL =
MaxSize = 10

[Comment]
AutoApprove = false

# 首次启动时若不存在该用户，则自动创建管理员
[Admin]
Username =
Password =
Email =
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
