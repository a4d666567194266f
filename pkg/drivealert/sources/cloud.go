package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"git.mills.io/prologic/bitcask"

	"github.com/randalmurphal/drivealert/pkg/drivealert/markers"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// cameraPrefix namespaces camera records in the cache.
var cameraPrefix = []byte("cam:")

// CloudCache keeps cameras received from the cloud between runs.
type CloudCache struct {
	db     *bitcask.Bitcask
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// CloudOption configures a CloudCache.
type CloudOption func(*CloudCache)

// WithTTL expires cached cameras after d. Zero keeps them forever.
func WithTTL(d time.Duration) CloudOption {
	return func(c *CloudCache) { c.ttl = d }
}

// WithCacheLogger sets the logger used for skipped records.
func WithCacheLogger(logger *slog.Logger) CloudOption {
	return func(c *CloudCache) { c.logger = logger }
}

// OpenCloudCache opens or creates the cache directory.
func OpenCloudCache(dir string, opts ...CloudOption) (*CloudCache, error) {
	// Camera records are small; 1MB leaves room for long descriptions.
	db, err := bitcask.Open(dir, bitcask.WithMaxValueSize(1024*1024))
	if err != nil {
		return nil, fmt.Errorf("open cloud cache: %w", err)
	}
	c := &CloudCache{db: db}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func cameraKey(key string) []byte {
	return append(append([]byte{}, cameraPrefix...), key...)
}

// Put stores or replaces cameras.
func (c *CloudCache) Put(cams ...Camera) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrStoreClosed
	}

	for _, cam := range cams {
		data, err := json.Marshal(cam)
		if err != nil {
			return fmt.Errorf("marshal camera %s: %w", cam.Key, err)
		}
		if c.ttl > 0 {
			err = c.db.PutWithTTL(cameraKey(cam.Key), data, c.ttl)
		} else {
			err = c.db.Put(cameraKey(cam.Key), data)
		}
		if err != nil {
			return fmt.Errorf("put camera %s: %w", cam.Key, err)
		}
	}
	return nil
}

// Get returns the cached camera with key.
func (c *CloudCache) Get(key string) (Camera, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return Camera{}, false, ErrStoreClosed
	}
	return c.get(cameraKey(key))
}

func (c *CloudCache) get(key []byte) (Camera, bool, error) {
	data, err := c.db.Get(key)
	if err != nil {
		if errors.Is(err, bitcask.ErrKeyNotFound) {
			return Camera{}, false, nil
		}
		return Camera{}, false, fmt.Errorf("get camera: %w", err)
	}

	var cam Camera
	if err := json.Unmarshal(data, &cam); err != nil {
		return Camera{}, false, fmt.Errorf("unmarshal camera: %w", err)
	}
	return cam, true, nil
}

// Load returns every cached camera. Records that cannot be read are skipped.
func (c *CloudCache) Load() ([]Camera, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrStoreClosed
	}

	// Collect keys first; reading inside Scan would nest the cache's lock.
	var keys [][]byte
	if err := c.db.Scan(cameraPrefix, func(key []byte) error {
		keys = append(keys, bytes.Clone(key))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("scan cloud cache: %w", err)
	}

	cams := make([]Camera, 0, len(keys))
	for _, key := range keys {
		cam, ok, err := c.get(key)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("cached camera skipped",
					slog.String("key", string(key)),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		if ok {
			cams = append(cams, cam)
		}
	}
	return cams, nil
}

// Publish produces every cached camera as one batch on q. Returns the number
// of cameras published.
func (c *CloudCache) Publish(q *queue.Queue[markers.AttributeMap]) (int, error) {
	cams, err := c.Load()
	if err != nil {
		return 0, err
	}
	if len(cams) == 0 {
		return 0, nil
	}
	q.Produce(toAttributeMap(cams))
	return len(cams), nil
}

// Delete removes a cached camera. Deleting a missing key is not an error.
func (c *CloudCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrStoreClosed
	}
	if err := c.db.Delete(cameraKey(key)); err != nil && !errors.Is(err, bitcask.ErrKeyNotFound) {
		return fmt.Errorf("delete camera %s: %w", key, err)
	}
	return nil
}

// Len returns the number of camera records in the cache. Keys outside the
// camera namespace are not counted.
func (c *CloudCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return 0
	}
	n := 0
	_ = c.db.Scan(cameraPrefix, func([]byte) error {
		n++
		return nil
	})
	return n
}

// Merge compacts the cache files to reclaim space from deleted records.
func (c *CloudCache) Merge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrStoreClosed
	}
	if err := c.db.Merge(); err != nil {
		return fmt.Errorf("merge cloud cache: %w", err)
	}
	return nil
}

// Close closes the cache.
func (c *CloudCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}
