package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	OSS         OSSConfig         `mapstructure:"oss"`
	Email       EmailConfig       `mapstructure:"email"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Tenant      TenantConfig      `mapstructure:"tenant"`
	Voucher     VoucherConfig     `mapstructure:"voucher"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Certificate CertificateConfig `mapstructure:"certificate"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	DeliveryQueue string `mapstructure:"delivery_queue"`
	MaxWorkers    int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// TenantConfig 租户（门店）解析配置
type TenantConfig struct {
	DefaultSubdomain string   `mapstructure:"default_subdomain"` // 本地开发兜底子域名
	LocalHosts       []string `mapstructure:"local_hosts"`       // 视为本地环境的 host 标记
}

// VoucherConfig 礼品卡业务配置
type VoucherConfig struct {
	MinAmountCents int64  `mapstructure:"min_amount_cents"` // 最低购买金额（分）
	CodePrefix     string `mapstructure:"code_prefix"`      // 卡号前缀
	ExpireMonths   int    `mapstructure:"expire_months"`    // 有效期（月）
}

type ChatConfig struct {
	Rules        []ChatRule `mapstructure:"rules"`
	DefaultReply string     `mapstructure:"default_reply"`
	MaxHistory   int        `mapstructure:"max_history"` // 单会话保留的消息条数
}

type ChatRule struct {
	Keywords []string `mapstructure:"keywords"`
	Reply    string   `mapstructure:"reply"`
}

type CertificateConfig struct {
	TemplatePath string `mapstructure:"template_path"` // 礼品卡证书 HTML 模板
	TempDir      string `mapstructure:"temp_dir"`      // 本地暂存目录
	ExpireHours  int    `mapstructure:"expire_hours"`  // 暂存文件保留时间（小时）
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
