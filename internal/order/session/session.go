// Session state for one uploaded file pair: the immutable catalog plus
// the in-progress order. One editor per session; the store locking only
// keeps concurrent HTTP requests from corrupting the maps
// (last-write-wins is the intended semantics).
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"po-service/internal/order/model"
	"po-service/internal/order/service"
)

type LineStatus string

const (
	StatusCandidates   LineStatus = "candidates"
	StatusAmbiguous    LineStatus = "ambiguous"
	StatusNoCandidates LineStatus = "no_candidates"
	StatusSelected     LineStatus = "selected"
)

// Line is one order line's resolution state. PO is nil until the user
// picks a candidate (or enters an item code manually).
type Line struct {
	Raw        string
	Status     LineStatus
	Parsed     model.OrderLine
	Warehouses []string
	PO         *model.PurchaseOrderLine
}

type Session struct {
	ID       string
	Catalog  *model.Catalog
	Customer string
	TokOpts  service.TokenizeOptions
	RankOpts service.RankOptions
	Lines    []*Line

	Mu sync.Mutex
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	// content-addressed catalog cache: identical upload bytes reuse the
	// built index without recomputation
	catalogs map[string]*model.Catalog
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		catalogs: make(map[string]*model.Catalog),
	}
}

// CacheKey derives the catalog cache key from the raw upload bytes.
func CacheKey(sales, stock []byte) string {
	h := sha256.New()
	h.Write(sales)
	h.Write(stock)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) CachedCatalog(key string) (*model.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cat, ok := s.catalogs[key]
	return cat, ok
}

func (s *Store) PutCatalog(key string, cat *model.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs[key] = cat
}

func (s *Store) Create(cat *model.Catalog) *Session {
	sess := &Session{ID: uuid.NewString(), Catalog: cat}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// POLines returns the completed purchase-order rows in line order.
func (sess *Session) POLines() []*model.PurchaseOrderLine {
	out := make([]*model.PurchaseOrderLine, 0, len(sess.Lines))
	for _, l := range sess.Lines {
		if l.PO != nil {
			out = append(out, l.PO)
		}
	}
	return out
}
