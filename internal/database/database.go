package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
)

// GormConfig is shared by the MySQL connection and the test database.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	}
}

func OpenMySQL(cfg *configs.DBConfig) (*gorm.DB, error) {
	dbConn, err := gorm.Open(mysql.Open(cfg.DSN()), GormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "connect mysql")
	}

	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return dbConn, nil
}

func Migrate(dbConn *gorm.DB) error {
	return errors.Wrap(dbConn.AutoMigrate(db.AllModels()...), "auto migrate")
}

// ConnectMongo dials MongoDB and checks the primary is reachable.
func ConnectMongo(ctx context.Context, cfg *configs.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}
