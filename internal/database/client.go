// Package database provides the TimescaleDB client used by controllers to
// pull stored readings back out.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/types"
	"go.uber.org/zap"
)

// Client holds the connection to a TimescaleDB database
type Client struct {
	connectionString string
	DB               *gorm.DB
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to the TimescaleDB database
func (c *Client) Connect() error {
	var err error
	c.DB, err = CreateConnection(c.connectionString)
	if err != nil {
		return err
	}
	log.Info("TimescaleDB connection successful")
	return nil
}

// GetLatestReading retrieves the most recent reading for a station
func (c *Client) GetLatestReading(stationName string) (types.Reading, error) {
	var r types.Reading

	if err := c.DB.Table("cloudwatch").Where("stationname = ?", stationName).Order("time DESC").Limit(1).Find(&r).Error; err != nil {
		return types.Reading{}, fmt.Errorf("error querying database for latest reading: %w", err)
	}

	return r, nil
}

// GetBucketReadings retrieves minute-bucketed readings for a station over
// the given span, oldest first.
func (c *Client) GetBucketReadings(stationName string, span time.Duration) ([]BucketReading, error) {
	var br []BucketReading

	err := c.DB.Table("cloudwatch_1m").
		Where("stationname = ? AND bucket > NOW() - ?::interval", stationName, fmt.Sprintf("%d seconds", int(span.Seconds()))).
		Order("bucket ASC").
		Find(&br).Error
	if err != nil {
		return nil, fmt.Errorf("error querying database for bucket readings: %w", err)
	}

	return br, nil
}

// CreateConnection is a helper function to create a database connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return nil, err
	}

	return db, nil
}
