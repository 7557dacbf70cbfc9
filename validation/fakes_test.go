package validation

import (
	"context"
	"sync"
)

// fakeStore implements MasterDataStore in memory. Call counters are
// mutex-guarded because the engine fans validators out concurrently.
type fakeStore struct {
	mu sync.Mutex

	orgNames     map[string]bool
	orgAddresses map[string]bool
	productNames map[string]bool

	nameErr       error
	addressErr    error
	productErr    error
	productErrFor map[string]error

	nameCalls    int
	addressCalls int
	productCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orgNames:     map[string]bool{},
		orgAddresses: map[string]bool{},
		productNames: map[string]bool{},
	}
}

func (s *fakeStore) OrganizationNameExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nameCalls++
	if s.nameErr != nil {
		return false, s.nameErr
	}
	return s.orgNames[name], nil
}

func (s *fakeStore) OrganizationAddressExists(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addressCalls++
	if s.addressErr != nil {
		return false, s.addressErr
	}
	return s.orgAddresses[address], nil
}

func (s *fakeStore) ProductNameExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productCalls++
	if err := s.productErrFor[name]; err != nil {
		return false, err
	}
	if s.productErr != nil {
		return false, s.productErr
	}
	return s.productNames[name], nil
}

// fakeSimilarity implements SimilarityClient with canned replies.
type fakeSimilarity struct {
	mu sync.Mutex

	names     []map[string]any
	addresses []map[string]any
	gstResp   *GstCheckResponse

	namesErr     error
	addressesErr error
	gstErr       error

	nameCalls    int
	addressCalls int
	gstCalls     int
}

func (c *fakeSimilarity) RecommendNames(ctx context.Context, table string, name string) ([]map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameCalls++
	if c.namesErr != nil {
		return nil, c.namesErr
	}
	return c.names, nil
}

func (c *fakeSimilarity) RecommendAddresses(ctx context.Context, address string) ([]map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addressCalls++
	if c.addressesErr != nil {
		return nil, c.addressesErr
	}
	return c.addresses, nil
}

func (c *fakeSimilarity) CheckGst(ctx context.Context, gstNo string) (*GstCheckResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gstCalls++
	if c.gstErr != nil {
		return nil, c.gstErr
	}
	if c.gstResp != nil {
		return c.gstResp, nil
	}
	return &GstCheckResponse{Status: GstStatusNotFound, MatchingRecords: []GstRecord{}}, nil
}

func newTestEngine() (*Engine, *fakeStore, *fakeSimilarity) {
	store := newFakeStore()
	similarity := &fakeSimilarity{}
	return NewEngine(store, similarity), store, similarity
}
