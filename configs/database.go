package configs

import (
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

type DBConfig struct {
	Host            string
	Port            string
	User            string
	DBName          string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func GetDBConfig() *DBConfig {
	return &DBConfig{
		Host:            GetEnv("DB_HOST", "127.0.0.1"),
		Port:            GetEnv("DB_PORT", "3306"),
		User:            GetEnv("DB_USER", "root"),
		Password:        GetEnv("DB_PASSWORD", ""),
		DBName:          GetEnv("DB_NAME", "help_me_db"),
		MaxOpenConns:    GetEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: GetEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// DSN builds the go-sql-driver/mysql data source name.
func (c *DBConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.DBName = c.DBName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

func GetMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:            GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:       GetEnv("MONGO_DB", "HelpMeChat"),
		ConnectTimeout: GetEnvDuration("MONGO_CONNECT_TIMEOUT", 5*time.Second),
	}
}
