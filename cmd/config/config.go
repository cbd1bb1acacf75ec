package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SeedUser is an account created on startup when it does not exist yet.
type SeedUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Role     string `mapstructure:"role"`
}

var (
	Port        string
	MetricsPort int
	LogLevel    string
	DBPath      string

	SecretKey  string
	SessionTTL time.Duration
	Users      []SeedUser

	StaticDir    string
	UploadDir    string
	DetectionDir string
	MaxUploadMB  int64

	ModelPath     string
	ModelName     string
	TargetClass   int
	SampleStride  int
	NMSThreshold  float64
	DefaultThresh float64

	AWSRegion string
	S3Bucket  string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	TracingEndpoint string
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.metrics_port", 8083)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.path", "violence_detection.db")

	v.SetDefault("auth.secret_key", "your-secret-key-2025")
	v.SetDefault("auth.session_ttl", "12h")
	v.SetDefault("auth.users", []map[string]interface{}{
		{"username": "user1", "password": "password123", "role": "user"},
		{"username": "admin", "password": "admin123", "role": "admin"},
	})

	v.SetDefault("storage.static_dir", "static")
	v.SetDefault("storage.upload_dir", "static/uploads")
	v.SetDefault("storage.detection_dir", "static/detections")
	v.SetDefault("storage.max_upload_mb", 500)

	v.SetDefault("model.path", "yolov8m.onnx")
	v.SetDefault("model.name", "yolov8")
	v.SetDefault("model.target_class", 0)
	v.SetDefault("model.sample_stride", 5)
	v.SetDefault("model.nms_threshold", 0.45)
	v.SetDefault("model.default_threshold", 0.5)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.s3_bucket", "")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "vds/alerts")
	v.SetDefault("mqtt.client_id", "violence-detection")

	v.SetDefault("tracing.endpoint", "")
}

// Load reads cmd/config/config.yaml when present. Every key can be overridden
// from the environment, e.g. VDS_AWS_S3_BUCKET.
func Load() {
	if err := LoadFrom("cmd/config/"); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}
}

// LoadFrom reads config.yaml from dir. A missing file is not an error.
func LoadFrom(dir string) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("VDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	Port = v.GetString("server.port")
	MetricsPort = v.GetInt("server.metrics_port")
	LogLevel = v.GetString("server.log_level")
	DBPath = v.GetString("database.path")

	SecretKey = v.GetString("auth.secret_key")
	SessionTTL = v.GetDuration("auth.session_ttl")
	Users = nil
	if err := v.UnmarshalKey("auth.users", &Users); err != nil {
		return err
	}

	StaticDir = v.GetString("storage.static_dir")
	UploadDir = v.GetString("storage.upload_dir")
	DetectionDir = v.GetString("storage.detection_dir")
	MaxUploadMB = v.GetInt64("storage.max_upload_mb")

	ModelPath = v.GetString("model.path")
	ModelName = v.GetString("model.name")
	TargetClass = v.GetInt("model.target_class")
	SampleStride = v.GetInt("model.sample_stride")
	NMSThreshold = v.GetFloat64("model.nms_threshold")
	DefaultThresh = v.GetFloat64("model.default_threshold")

	AWSRegion = v.GetString("aws.region")
	S3Bucket = v.GetString("aws.s3_bucket")

	MQTTBroker = v.GetString("mqtt.broker")
	MQTTTopic = v.GetString("mqtt.topic")
	MQTTClientID = v.GetString("mqtt.client_id")

	TracingEndpoint = v.GetString("tracing.endpoint")
	return nil
}
