package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/skysentry/skysentry/internal/storage"
	"github.com/skysentry/skysentry/internal/storage/latest"
	"github.com/skysentry/skysentry/internal/storage/timescaledb"
	"github.com/skysentry/skysentry/internal/types"
	"github.com/skysentry/skysentry/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines            []StorageEngine
	ReadingDistributor chan types.Reading
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager object, populated with all configured StorageEngines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, cfgData *config.ConfigData, cache *latest.Cache) (*StorageManager, error) {
	s := StorageManager{}

	// Initialize our channel for passing readings to the distributor
	s.ReadingDistributor = make(chan types.Reading, 20)

	// Start our reading distributor to distribute received readings to storage
	// backends
	go s.startReadingDistributor(ctx, wg)

	// The latest-reading cache is always active so that the REST server
	// and safety verdict work without a database
	s.AddEngine(cache, ctx, wg)

	if cfgData.Storage.TimescaleDB != nil && cfgData.Storage.TimescaleDB.ConnectionString != "" {
		tdb, err := timescaledb.New(ctx, cfgData.Storage.TimescaleDB.ConnectionString)
		if err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %v", err)
		}
		s.AddEngine(tdb, ctx, wg)
	}

	return &s, nil
}

// GetReadingDistributor returns the reading distributor channel
func (s *StorageManager) GetReadingDistributor() chan types.Reading {
	return s.ReadingDistributor
}

// AddEngine starts a storage engine and adds it to our fan-out set
func (s *StorageManager) AddEngine(engine storage.StorageEngineInterface, ctx context.Context, wg *sync.WaitGroup) {
	se := StorageEngine{Engine: engine}
	se.C = se.Engine.StartStorageEngine(ctx, wg)
	s.Engines = append(s.Engines, se)
}

// startReadingDistributor receives readings from sensors and fans them out to the various
// storage backends
func (s *StorageManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			for _, e := range s.Engines {
				e.C <- r
			}
		case <-ctx.Done():
			return
		}
	}
}
