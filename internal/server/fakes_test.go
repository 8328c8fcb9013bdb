package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricecompare/internal/client"
	"pricecompare/internal/database"
	"pricecompare/internal/logger"
	"pricecompare/internal/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory store with the same conditional update rules as MongoDB.
type memStore struct {
	mu              sync.Mutex
	products        []model.Product
	observations    []model.PriceObservation
	alerts          []model.PriceAlert
	recommendations map[primitive.ObjectID][]model.Recommendation
	markCalls       int
	pingErr         error

	// observationErr, when set, fails the inserts it returns an error for.
	observationErr func(o model.PriceObservation) error
	// beforeMark runs under the lock ahead of the conditional update in AlertMarkTriggered.
	beforeMark func(alertID primitive.ObjectID)
}

var _ store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{recommendations: map[primitive.ObjectID][]model.Recommendation{}}
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return objID, errors.Wrapf(model.ErrNotFound, "invalid ID: %s", id)
	}
	return objID, nil
}

func (m *memStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *memStore) ProductInsert(ctx context.Context, p model.Product) (model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if err := p.Validate(); err != nil {
		return p, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = testNow
	p.UpdatedAt = testNow
	m.products = append(m.products, p)
	return p, nil
}

func (m *memStore) product(id primitive.ObjectID) (model.Product, bool) {
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (m *memStore) ProductFindOne(ctx context.Context, productID string) (model.Product, error) {
	id, err := parseID(productID)
	if err != nil {
		return model.Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.product(id)
	if !ok {
		return p, errors.Wrapf(model.ErrNotFound, "no Product with ID: %s", productID)
	}
	return p, nil
}

func (m *memStore) ProductsFind(ctx context.Context, productIDs []primitive.ObjectID) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := []model.Product{}
	for _, id := range productIDs {
		if p, ok := m.product(id); ok {
			ps = append(ps, p)
		}
	}
	return ps, nil
}

func (m *memStore) filterProducts(keep func(model.Product) bool) []model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := []model.Product{}
	for _, p := range m.products {
		if keep(p) {
			ps = append(ps, p)
		}
	}
	return ps
}

func (m *memStore) ProductsFindAll(ctx context.Context) ([]model.Product, error) {
	return m.filterProducts(func(model.Product) bool { return true }), nil
}

func (m *memStore) ProductsFindByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return m.filterProducts(func(p model.Product) bool { return p.Category == category }), nil
}

func (m *memStore) ProductsSearch(ctx context.Context, q string, category string) ([]model.Product, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	category = strings.TrimSpace(category)
	return m.filterProducts(func(p model.Product) bool {
		if category != "" && p.Category != category {
			return false
		}
		return q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	}), nil
}

func (m *memStore) ProductsCount(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

func (m *memStore) ProductUpdateMetadata(ctx context.Context, productID string, u model.ProductUpdate) (model.Product, error) {
	p, err := m.ProductFindOne(ctx, productID)
	if err != nil || u.Empty() {
		return p, err
	}
	if p, err = u.Apply(p); err != nil {
		return p, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
		}
	}
	return p, nil
}

func (m *memStore) ObservationInsert(ctx context.Context, o model.PriceObservation) (model.PriceObservation, error) {
	if m.observationErr != nil {
		if err := m.observationErr(o); err != nil {
			return o, err
		}
	}
	if err := o.Normalize(); err != nil {
		return o, err
	}
	if o.ProductID.IsZero() {
		return o, errors.Wrap(model.ErrValidation, "product id is empty")
	}
	if o.ObservedAt.IsZero() {
		o.ObservedAt = testNow
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.observations = append(m.observations, o)
	return o, nil
}

func (m *memStore) ObservationsFindLatestPerRetailer(ctx context.Context, productID primitive.ObjectID) ([]model.PriceObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[string]model.PriceObservation{}
	for _, o := range m.observations {
		if o.ProductID != productID {
			continue
		}
		if cur, ok := latest[o.Retailer]; !ok || !o.ObservedAt.Before(cur.ObservedAt) {
			latest[o.Retailer] = o
		}
	}
	obs := make([]model.PriceObservation, 0, len(latest))
	for _, o := range latest {
		obs = append(obs, o)
	}
	return obs, nil
}

func (m *memStore) ObservationsFindRange(ctx context.Context, productID primitive.ObjectID, start time.Time, end time.Time) ([]model.PriceObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obs := []model.PriceObservation{}
	for _, o := range m.observations {
		if o.ProductID == productID && !o.ObservedAt.Before(start) && !o.ObservedAt.After(end) {
			obs = append(obs, o)
		}
	}
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Retailer != obs[j].Retailer {
			return obs[i].Retailer < obs[j].Retailer
		}
		return obs[i].ObservedAt.Before(obs[j].ObservedAt)
	})
	return obs, nil
}

func (m *memStore) AlertInsert(ctx context.Context, a model.PriceAlert) (model.PriceAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	m.alerts = append(m.alerts, a)
	return a, nil
}

func (m *memStore) AlertFindOne(ctx context.Context, alertID string) (model.PriceAlert, error) {
	id, err := parseID(alertID)
	if err != nil {
		return model.PriceAlert{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.PriceAlert{}, errors.Wrapf(model.ErrNotFound, "no PriceAlert with ID: %s", alertID)
}

func (m *memStore) AlertsFind(ctx context.Context, f database.AlertFilter) ([]model.PriceAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	as := []model.PriceAlert{}
	for _, a := range m.alerts {
		if f.ActiveOnly && !a.IsActive {
			continue
		}
		if !f.ProductID.IsZero() && a.ProductID != f.ProductID {
			continue
		}
		as = append(as, a)
	}
	return as, nil
}

func (m *memStore) AlertDeactivate(ctx context.Context, alertID string) error {
	id, err := parseID(alertID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].IsActive = false
			return nil
		}
	}
	return errors.Wrapf(model.ErrNotFound, "no PriceAlert with ID: %s", alertID)
}

func (m *memStore) AlertMarkTriggered(ctx context.Context, alertID primitive.ObjectID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.beforeMark != nil {
		m.beforeMark(alertID)
	}
	for i := range m.alerts {
		a := &m.alerts[i]
		if a.ID != alertID || !a.IsActive || a.Triggered {
			continue
		}
		a.Triggered = true
		a.TriggeredAt = &at
		a.UpdatedAt = at
		return true, nil
	}
	return false, nil
}

func (m *memStore) RecommendationsReplace(ctx context.Context, productID primitive.ObjectID, rs []model.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]model.Recommendation, len(rs))
	for i, r := range rs {
		r.ID = primitive.NewObjectID()
		r.ProductID = productID
		stored[i] = r
	}
	m.recommendations[productID] = stored
	return nil
}

func (m *memStore) RecommendationsFind(ctx context.Context, productID primitive.ObjectID) ([]model.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs := append([]model.Recommendation{}, m.recommendations[productID]...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Score > rs[j].Score })
	return rs, nil
}

// fakeRetailers answers searches from canned listings per source.
type fakeRetailers struct {
	mu       sync.Mutex
	sources  []client.Source
	listings map[client.Source][]model.Listing
	failing  map[client.Source]error
	queries  []string
	webhook  bool
	sent     []client.AlertWebhookRequest
	sendErr  error
}

var _ retailerClient = (*fakeRetailers)(nil)

func (f *fakeRetailers) Sources() []client.Source {
	return f.sources
}

func (f *fakeRetailers) Search(ctx context.Context, source client.Source, query string, limit int) ([]model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, string(source)+":"+query)
	if err := f.failing[source]; err != nil {
		return nil, err
	}
	ls := f.listings[source]
	if len(ls) > limit {
		ls = ls[:limit]
	}
	return ls, nil
}

func (f *fakeRetailers) WebhookEnabled() bool {
	return f.webhook
}

func (f *fakeRetailers) SendAlertWebhook(ctx context.Context, req client.AlertWebhookRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, req)
	return nil
}

var testSecretKey = func() jwk.Key {
	k, err := jwk.FromRaw([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		panic(err)
	}
	return k
}()

func newTestServer(db *memStore, rc *fakeRetailers) Server {
	if rc == nil {
		rc = &fakeRetailers{}
	}
	return Server{
		DB:            db,
		Client:        rc,
		Logger:        logger.Discard(),
		AuthSecretKey: testSecretKey,
		TokenTTL:      time.Hour,
		CORSOrigins:   []string{"http://localhost:3000"},
		SearchLimit:   5,
		Workers:       2,
		Now:           func() time.Time { return testNow },
	}
}

func (m *memStore) mustProduct(name, category string) model.Product {
	p, err := m.ProductInsert(context.Background(), model.Product{Name: name, Category: category})
	if err != nil {
		panic(err)
	}
	return p
}

func (m *memStore) mustObservation(p model.Product, retailer string, price float64, at time.Time) {
	_, err := m.ObservationInsert(context.Background(), model.PriceObservation{
		ProductID:  p.ID,
		Retailer:   retailer,
		Price:      price,
		InStock:    true,
		ObservedAt: at,
	})
	if err != nil {
		panic(err)
	}
}

func (m *memStore) mustAlert(p model.Product, threshold float64, scope model.AlertScope) model.PriceAlert {
	a, err := model.NewPriceAlert(p.ID, threshold, scope, testNow)
	if err != nil {
		panic(err)
	}
	a, _ = m.AlertInsert(context.Background(), a)
	return a
}

func (m *memStore) alert(id primitive.ObjectID) model.PriceAlert {
	a, _ := m.AlertFindOne(context.Background(), id.Hex())
	return a
}
