package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	PostgresConnStr         string
	JWTSecret               string
	S3Bucket                string
	S3PublicURL             string
	FirebaseCredentialsPath string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "3000"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		S3Bucket:                getEnv("S3_BUCKET", "bookcircle-images"),
		S3PublicURL:             getEnv("S3_PUBLIC_URL", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
