package offline

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/sirupsen/logrus"
)

// Response is a stored HTTP response.
type Response struct {
	Key      string      `json:"key"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	c := *r
	c.Header = r.Header.Clone()
	c.Body = append([]byte(nil), r.Body...)
	return &c
}

// WriteTo replays the response on w.
func (r *Response) WriteTo(w http.ResponseWriter) {
	for k, v := range r.Header {
		w.Header()[k] = append([]string(nil), v...)
	}
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

// ReadResponse buffers an http.Response into a Response stored under key.
func ReadResponse(key string, resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Key:      key,
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: time.Now(),
	}, nil
}

// Bucket is one named cache: request key to response.
type Bucket struct {
	name    string
	created time.Time
	storage *Storage
	entries map[string]*Response
}

// Name returns the bucket name.
func (b *Bucket) Name() string { return b.name }

// Put stores resp under key, replacing any previous response.
func (b *Bucket) Put(key string, resp *Response) error {
	return b.PutAll(map[string]*Response{key: resp})
}

// PutAll stores every response or none of them in memory. On disk the
// responses are written one by one.
func (b *Bucket) PutAll(resps map[string]*Response) error {
	s := b.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buckets[b.name] != b {
		return fmt.Errorf("bucket %q was deleted", b.name)
	}

	stored := make(map[string]*Response, len(resps))
	for key, resp := range resps {
		c := resp.Clone()
		c.Key = key
		if c.StoredAt.IsZero() {
			c.StoredAt = time.Now()
		}
		if err := s.persist(b.name, c); err != nil {
			return err
		}
		stored[key] = c
	}
	for key, c := range stored {
		b.entries[key] = c
	}
	return nil
}

// Match returns a copy of the response stored under key.
func (b *Bucket) Match(key string) (*Response, bool) {
	b.storage.mu.RLock()
	defer b.storage.mu.RUnlock()
	resp, ok := b.entries[key]
	if !ok {
		return nil, false
	}
	return resp.Clone(), true
}

// Keys returns the stored request keys in ascending order.
func (b *Bucket) Keys() []string {
	b.storage.mu.RLock()
	defer b.storage.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Storage holds the named buckets. Lookups across buckets go in creation order.
// With a disk directory, buckets survive restarts.
type Storage struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
	order   []string
	active  *Manifest
	disk    *diskv.Diskv
	log     logrus.FieldLogger
}

// NewStorage creates an in-memory storage.
func NewStorage() *Storage {
	return &Storage{buckets: make(map[string]*Bucket), log: discardLogger()}
}

// OpenStorage creates a storage persisted under dir and loads what is already there.
// Unreadable records are logged and skipped.
func OpenStorage(dir string, log logrus.FieldLogger) (*Storage, error) {
	if log == nil {
		log = discardLogger()
	}
	s := &Storage{
		buckets: make(map[string]*Bucket),
		log:     log,
		disk: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      4 * 1024 * 1024,
		}),
	}
	if err := s.loadDisk(); err != nil {
		return nil, err
	}
	return s, nil
}

const (
	bucketMetaFile = "_bucket"
	activeFile     = "_active"
)

type bucketMeta struct {
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

func (s *Storage) loadDisk() error {
	var records []*Response
	var metas []bucketMeta
	owners := make(map[*Response]string)

	for key := range s.disk.Keys(nil) {
		pk := keyToPathTransform(key)
		if len(pk.Path) != 1 {
			continue
		}
		data, err := s.disk.Read(key)
		if err != nil {
			s.log.WithError(err).WithField("record", key).Warn("skipping unreadable cache record")
			continue
		}
		if pk.FileName == bucketMetaFile {
			var m bucketMeta
			if err := json.Unmarshal(data, &m); err != nil {
				s.log.WithError(err).WithField("record", key).Warn("skipping corrupt bucket record")
				continue
			}
			m.Name = pk.Path[0]
			metas = append(metas, m)
			continue
		}
		var r Response
		if err := json.Unmarshal(data, &r); err != nil {
			s.log.WithError(err).WithField("record", key).Warn("skipping corrupt cache record")
			continue
		}
		records = append(records, &r)
		owners[&r] = pk.Path[0]
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Created.Equal(metas[j].Created) {
			return metas[i].Name < metas[j].Name
		}
		return metas[i].Created.Before(metas[j].Created)
	})
	for _, m := range metas {
		s.addBucket(m.Name, m.Created)
	}
	for _, r := range records {
		b, ok := s.buckets[owners[r]]
		if !ok {
			continue
		}
		b.entries[r.Key] = r
	}

	if !s.disk.Has(activeFile) {
		return nil
	}
	data, err := s.disk.Read(activeFile)
	if err != nil {
		s.log.WithError(err).Warn("skipping unreadable active version record")
		return nil
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.log.WithError(err).Warn("skipping corrupt active version record")
		return nil
	}
	if _, ok := s.buckets[m.Version]; ok {
		s.active = &m
	}
	return nil
}

func (s *Storage) addBucket(name string, created time.Time) *Bucket {
	b := &Bucket{name: name, created: created, storage: s, entries: make(map[string]*Response)}
	s.buckets[name] = b
	s.order = append(s.order, name)
	return b
}

// persist must be called with s.mu held.
func (s *Storage) persist(bucket string, r *Response) error {
	if s.disk == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.disk.Write(diskKey(bucket, recordName(r.Key)), data)
}

// Open returns the bucket called name, creating it if needed.
func (s *Storage) Open(name string) (*Bucket, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid bucket name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[name]; ok {
		return b, nil
	}

	created := time.Now()
	if s.disk != nil {
		data, err := json.Marshal(bucketMeta{Name: name, Created: created})
		if err != nil {
			return nil, err
		}
		if err := s.disk.Write(diskKey(name, bucketMetaFile), data); err != nil {
			return nil, err
		}
	}
	return s.addBucket(name, created), nil
}

// Lookup returns the bucket called name without creating it.
func (s *Storage) Lookup(name string) (*Bucket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[name]
	return b, ok
}

// SetActive records m as the manifest of the active version.
func (s *Storage) SetActive(m Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[m.Version]; !ok {
		return fmt.Errorf("bucket %q does not exist", m.Version)
	}
	if s.disk != nil {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := s.disk.Write(activeFile, data); err != nil {
			return err
		}
	}
	s.active = &m
	return nil
}

// Active returns the manifest last recorded with SetActive, as long as its
// bucket still exists.
func (s *Storage) Active() (Manifest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return Manifest{}, false
	}
	m := *s.active
	m.Assets = append([]string(nil), m.Assets...)
	return m, true
}

// Keys returns bucket names in creation order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Delete removes the bucket called name. It reports whether the bucket existed.
func (s *Storage) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[name]
	if !ok {
		return false, nil
	}

	if s.disk != nil {
		for key := range b.entries {
			if err := s.disk.Erase(diskKey(name, recordName(key))); err != nil && !isNotExist(err) {
				return false, err
			}
		}
		if err := s.disk.Erase(diskKey(name, bucketMetaFile)); err != nil && !isNotExist(err) {
			return false, err
		}
		if s.active != nil && s.active.Version == name {
			if err := s.disk.Erase(activeFile); err != nil && !isNotExist(err) {
				return false, err
			}
		}
	}
	if s.active != nil && s.active.Version == name {
		s.active = nil
	}

	delete(s.buckets, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Match looks key up in every bucket, oldest bucket first.
func (s *Storage) Match(key string) (*Response, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range s.order {
		if resp, ok := s.buckets[name].entries[key]; ok {
			return resp.Clone(), true
		}
	}
	return nil, false
}

// recordName is the on-disk file name of a request key.
func recordName(key string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

func diskKey(bucket, file string) string {
	return bucket + "/" + file
}

func keyToPathTransform(key string) *diskv.PathKey {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{
		Path:     []string{key[:i]},
		FileName: key[i+1:],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, "/") + "/" + pathKey.FileName
}
