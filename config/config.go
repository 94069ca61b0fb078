package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	BaseURL string `mapstructure:"baseURL"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type GeocodeConfig struct {
	APIKey  string `mapstructure:"apiKey"`
	Country string `mapstructure:"country"` // component filter, e.g. "PK"
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	FromName string `mapstructure:"fromName"`
	From     string `mapstructure:"from"`
}

type SMSConfig struct {
	AccountSID string `mapstructure:"accountSID"`
	AuthToken  string `mapstructure:"authToken"`
	FromNumber string `mapstructure:"fromNumber"`
}

type FirebaseConfig struct {
	CredentialsFile string `mapstructure:"credentialsFile"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Email    EmailConfig    `mapstructure:"email"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	S3       S3Config       `mapstructure:"s3"`
}

// LoadConfig reads config.yaml from path and overrides values with
// environment variables. A missing file is not an error, so env-only
// deployments keep working.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.baseURL", "BASE_URL")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("geocode.apiKey", "GOOGLE_MAPS_API_KEY")
	viper.BindEnv("geocode.country", "GEOCODE_COUNTRY")
	viper.BindEnv("email.host", "EMAIL_HOST")
	viper.BindEnv("email.port", "EMAIL_PORT")
	viper.BindEnv("email.username", "EMAIL_USERNAME")
	viper.BindEnv("email.password", "EMAIL_PASSWORD")
	viper.BindEnv("email.fromName", "FROM_NAME")
	viper.BindEnv("email.from", "FROM_EMAIL")
	viper.BindEnv("sms.accountSID", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("sms.authToken", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("sms.fromNumber", "TWILIO_PHONE_NUMBER")
	viper.BindEnv("firebase.credentialsFile", "FIREBASE_CREDENTIALS_FILE")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
