// Package timescaledb stores sensor readings in a TimescaleDB hypertable
// with continuous aggregates for trend queries.
package timescaledb

import (
	"context"
	"sync"

	"github.com/skysentry/skysentry/internal/database"
	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/types"
	"gorm.io/gorm"
)

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	TimescaleDBConn *gorm.DB
}

// We declare the Tabler interface for purposes of customizing the table name in the DB
type Tabler interface {
	TableName() string
}

// StartStorageEngine creates a goroutine loop to receive readings and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting TimescaleDB storage engine...")
	readingChan := make(chan types.Reading, 10)
	go t.processReadings(ctx, wg, readingChan)
	return readingChan
}

func (t *Storage) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := t.StoreReading(r); err != nil {
				log.Errorf("could not store reading: %v", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling readings processor.")
			return
		}
	}
}

// StoreReading stores a reading value in TimescaleDB
func (t *Storage) StoreReading(r types.Reading) error {
	return t.TimescaleDBConn.Create(&r).Error
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, connectionString string) (*Storage, error) {
	var err error
	t := Storage{}

	t.TimescaleDBConn, err = database.CreateConnection(connectionString)
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return &Storage{}, err
	}

	// Create the database table
	log.Info("creating database table...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createTableSQL).Error
	if err != nil {
		log.Warn("warning: could not create table in database")
		return &Storage{}, err
	}

	// Create the TimescaleDB extension
	log.Info("creating TimescaleDB extension...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createExtensionSQL).Error
	if err != nil {
		log.Warn("warning: could not create TimescaleDB extension")
		return &Storage{}, err
	}

	// Create the hypertable
	log.Info("creating hypertable...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(createHypertableSQL).Error
	if err != nil {
		log.Warn("warning: could not create hypertable")
		return &Storage{}, err
	}

	// Create the 1m view
	log.Info("creating 1m view...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(create1mViewSQL).Error
	if err != nil {
		log.Warn("warning: could not create 1m view")
		return &Storage{}, err
	}

	// Create the 1h view
	log.Info("creating 1h view...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(create1hViewSQL).Error
	if err != nil {
		log.Warn("warning: could not create 1h view")
		return &Storage{}, err
	}

	// Add the 1m aggregation policy
	log.Info("adding 1m aggregation policy...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(addAggregationPolicy1mSQL).Error
	if err != nil {
		log.Warn("warning: could not add 1m aggregation policy")
		return &Storage{}, err
	}

	// Add the 1h aggregation policy
	log.Info("adding 1h aggregation policy...")
	err = t.TimescaleDBConn.WithContext(ctx).Exec(addAggregationPolicy1hSQL).Error
	if err != nil {
		log.Warn("warning: could not add 1h aggregation policy")
		return &Storage{}, err
	}

	return &t, nil
}
