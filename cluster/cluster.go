package cluster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sync"
	"sync/atomic"
	"time"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

const settingsFilename = "_settings"

var ErrorIndexNotFound = errors.New("index not found")
var ErrorIndexAlreadyExists = errors.New("index already exists")

type Config struct {
	Dir              string
	DefaultShards    int
	DefaultReplicas  int
	PercolateTimeout time.Duration
}

// Cluster holds every open index and its shard registries. Indexes are
// created on shard-open and discarded on shard-close, mirroring the
// lifecycle of the backing store.
type Cluster struct {
	config   *Config
	status   atomic.Value // one of the Status* strings
	indexes  map[string]*Index
	mu       sync.RWMutex
	exit     chan struct{}
	stopOnce sync.Once
}

func NewCluster(config *Config) *Cluster {

	if config.DefaultShards <= 0 {
		config.DefaultShards = 1
	}
	if config.PercolateTimeout <= 0 {
		config.PercolateTimeout = 10 * time.Second
	}

	c := &Cluster{
		config:  config,
		indexes: map[string]*Index{},
		exit:    make(chan struct{}),
	}
	c.status.Store(StatusOpening)

	return c
}

// GetStatus is safe to call while Load runs in the background.
func (c *Cluster) GetStatus() string {
	return c.status.Load().(string)
}

func (c *Cluster) CreateIndex(name string, settings *Settings) (*Index, error) {

	if settings == nil {
		settings = &Settings{}
	}
	if settings.Shards <= 0 {
		settings.Shards = c.config.DefaultShards
	}
	if settings.Replicas < 0 {
		settings.Replicas = c.config.DefaultReplicas
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.indexes[name]
	if exists {
		return nil, ErrorIndexAlreadyExists
	}

	dir := path.Join(c.config.Dir, name)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("json encode settings: %w", err)
	}
	err = os.WriteFile(path.Join(dir, settingsFilename), data, 0666)
	if err != nil {
		return nil, fmt.Errorf("write settings: %w", err)
	}

	index, err := openIndex(dir, name, settings)
	if err != nil {
		return nil, err
	}

	c.indexes[name] = index

	return index, nil
}

func openIndex(dir, name string, settings *Settings) (*Index, error) {

	index := &Index{
		Name:     name,
		Settings: settings,
		Shards:   []*Shard{},
	}

	copies := settings.Replicas + 1
	for s := 0; s < settings.Shards; s++ {
		shard := &Shard{Id: s}
		for r := 0; r < copies; r++ {
			filename := path.Join(dir, fmt.Sprintf("shard%d-replica%d", s, r))
			replica, err := OpenReplica(filename, r == 0)
			if err != nil {
				index.Close()
				return nil, fmt.Errorf("open shard %d replica %d: %w", s, r, err)
			}
			shard.Replicas = append(shard.Replicas, replica)
		}
		index.Shards = append(index.Shards, shard)
	}

	return index, nil
}

func (c *Cluster) GetIndex(name string) (*Index, error) {

	c.mu.RLock()
	defer c.mu.RUnlock()

	index, exists := c.indexes[name]
	if !exists {
		return nil, ErrorIndexNotFound
	}

	return index, nil
}

func (c *Cluster) ListIndexes() map[string]*Index {

	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]*Index, len(c.indexes))
	for name, index := range c.indexes {
		result[name] = index
	}

	return result
}

func (c *Cluster) DeleteIndex(name string) error {

	c.mu.Lock()
	defer c.mu.Unlock()

	index, exists := c.indexes[name]
	if !exists {
		return ErrorIndexNotFound
	}

	err := index.Close()
	if err != nil {
		fmt.Printf("WARNING: close index '%s': %s\n", name, err.Error())
	}

	err = os.RemoveAll(path.Join(c.config.Dir, name))
	if err != nil {
		return fmt.Errorf("remove index dir: %w", err)
	}

	delete(c.indexes, name)

	return nil
}

func (c *Cluster) Load() error {

	dir := c.config.Dir
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		c.status.Store(StatusClosing)
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(path.Join(dir, name, settingsFilename))
		if err != nil {
			fmt.Printf("WARNING: index '%s' has no settings, skipping\n", name)
			continue
		}
		settings := &Settings{}
		err = json.Unmarshal(data, settings)
		if err != nil {
			c.status.Store(StatusClosing)
			return fmt.Errorf("decode settings of '%s': %w", name, err)
		}

		t0 := time.Now()
		index, err := openIndex(path.Join(dir, name), name, settings)
		if err != nil {
			c.status.Store(StatusClosing)
			return fmt.Errorf("open index '%s': %w", name, err)
		}
		fmt.Println(name, index.Queries(), time.Since(t0))

		c.mu.Lock()
		c.indexes[name] = index
		c.mu.Unlock()
	}

	c.status.Store(StatusOperating)

	return nil
}

func (c *Cluster) Start() error {

	go c.Load()

	<-c.exit

	return nil
}

// Stop is idempotent: a second signal while shutting down is a no-op.
func (c *Cluster) Stop() error {

	var lastErr error

	c.stopOnce.Do(func() {
		defer close(c.exit)

		c.status.Store(StatusClosing)

		c.mu.Lock()
		defer c.mu.Unlock()

		for name, index := range c.indexes {
			fmt.Printf("Closing '%s'...\n", name)
			err := index.Close()
			if err != nil {
				fmt.Printf("ERROR: close(%s): %s\n", name, err.Error())
				lastErr = err
			}
		}
	})

	return lastErr
}
