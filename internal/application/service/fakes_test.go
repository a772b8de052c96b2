package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/lock"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/messaging"
	"github.com/sangkips/salesdesk-api/pkg/pagination"
)

// memStore is an in-memory database shared by the fake repositories.
// memTransactor serializes transactions on txMu, which stands in for row locks.
type memStore struct {
	txMu sync.Mutex

	products   map[uuid.UUID]entity.Product
	customers  map[uuid.UUID]entity.Customer
	suppliers  map[uuid.UUID]entity.Supplier
	promotions map[uuid.UUID]entity.Promotion
	users      map[uuid.UUID]entity.User
	invoices   map[uuid.UUID]entity.Invoice
	items      map[uuid.UUID][]entity.InvoiceItem
	shipments  map[uuid.UUID]entity.Shipment
	stockIns   map[uuid.UUID]entity.StockIn

	// referenced invoices cannot be deleted
	referenced map[uuid.UUID]bool
	// beforeLock runs when products are locked; tests use it to stall a transaction
	beforeLock func(ctx context.Context) error
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[uuid.UUID]entity.Product{},
		customers:  map[uuid.UUID]entity.Customer{},
		suppliers:  map[uuid.UUID]entity.Supplier{},
		promotions: map[uuid.UUID]entity.Promotion{},
		users:      map[uuid.UUID]entity.User{},
		invoices:   map[uuid.UUID]entity.Invoice{},
		items:      map[uuid.UUID][]entity.InvoiceItem{},
		shipments:  map[uuid.UUID]entity.Shipment{},
		stockIns:   map[uuid.UUID]entity.StockIn{},
		referenced: map[uuid.UUID]bool{},
	}
}

type memSnapshot struct {
	products  map[uuid.UUID]entity.Product
	invoices  map[uuid.UUID]entity.Invoice
	items     map[uuid.UUID][]entity.InvoiceItem
	shipments map[uuid.UUID]entity.Shipment
	stockIns  map[uuid.UUID]entity.StockIn
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *memStore) snapshot() memSnapshot {
	items := make(map[uuid.UUID][]entity.InvoiceItem, len(m.items))
	for k, v := range m.items {
		items[k] = append([]entity.InvoiceItem(nil), v...)
	}
	return memSnapshot{
		products:  copyMap(m.products),
		invoices:  copyMap(m.invoices),
		items:     items,
		shipments: copyMap(m.shipments),
		stockIns:  copyMap(m.stockIns),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.products = s.products
	m.invoices = s.invoices
	m.items = s.items
	m.shipments = s.shipments
	m.stockIns = s.stockIns
}

func (m *memStore) stock(id uuid.UUID) int {
	return m.products[id].Quantity
}

type txMarker struct{}

type memTransactor struct{ store *memStore }

func (t memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func paginate[T any](all []T, params *pagination.PaginationParams) ([]T, int64) {
	params.Validate()
	total := int64(len(all))
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

// products

type memProductRepo struct{ *memStore }

func (r memProductRepo) Create(_ context.Context, p *entity.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = *p
	return nil
}

func (r memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) GetByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if r.beforeLock != nil {
		if err := r.beforeLock(ctx); err != nil {
			return nil, err
		}
	}
	return r.GetByIDs(ctx, ids)
}

func (r memProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	for _, items := range r.items {
		for _, it := range items {
			if it.ProductID == id {
				return repository.ErrStillReferenced
			}
		}
	}
	for _, si := range r.stockIns {
		for _, it := range si.Items {
			if it.ProductID == id {
				return repository.ErrStillReferenced
			}
		}
	}
	delete(r.products, id)
	return nil
}

func (r memProductRepo) List(_ context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	var all []entity.Product
	for _, p := range r.products {
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		if params.LowStock && !p.IsLowStock() {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	page, total := paginate(all, params.Pagination)
	return page, total, nil
}

func (r memProductRepo) GetLowStock(_ context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) DecrementStock(_ context.Context, id uuid.UUID, amount int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Quantity < amount {
		return false, nil
	}
	p.Quantity -= amount
	r.products[id] = p
	return true, nil
}

func (r memProductRepo) IncrementStock(_ context.Context, id uuid.UUID, amount int) error {
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Quantity += amount
	r.products[id] = p
	return nil
}

// customers and suppliers

type memCustomerRepo struct{ *memStore }

func (r memCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = *c
	return nil
}

func (r memCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.customers[c.ID] = *c
	return nil
}

func (r memCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	for _, inv := range r.invoices {
		if inv.CustomerID == id {
			return repository.ErrStillReferenced
		}
	}
	delete(r.customers, id)
	return nil
}

func (r memCustomerRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var all []entity.Customer
	for _, c := range r.customers {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	page, total := paginate(all, params)
	return page, total, nil
}

type memSupplierRepo struct{ *memStore }

func (r memSupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = *s
	return nil
}

func (r memSupplierRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	r.suppliers[s.ID] = *s
	return nil
}

func (r memSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	for _, si := range r.stockIns {
		if si.SupplierID == id {
			return repository.ErrStillReferenced
		}
	}
	delete(r.suppliers, id)
	return nil
}

func (r memSupplierRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error) {
	var all []entity.Supplier
	for _, s := range r.suppliers {
		if search == "" || strings.Contains(strings.ToLower(s.Name), strings.ToLower(search)) {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	page, total := paginate(all, params)
	return page, total, nil
}

// promotions

type memPromotionRepo struct{ *memStore }

func (r memPromotionRepo) Create(_ context.Context, p *entity.Promotion) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.promotions[p.ID] = *p
	return nil
}

func (r memPromotionRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Promotion, error) {
	p, ok := r.promotions[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPromotionRepo) GetByCode(_ context.Context, code string) (*entity.Promotion, error) {
	for _, p := range r.promotions {
		if strings.EqualFold(p.Code, code) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPromotionRepo) Update(_ context.Context, p *entity.Promotion) error {
	r.promotions[p.ID] = *p
	return nil
}

func (r memPromotionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for _, inv := range r.invoices {
		if inv.PromotionID != nil && *inv.PromotionID == id {
			return repository.ErrStillReferenced
		}
	}
	delete(r.promotions, id)
	return nil
}

func (r memPromotionRepo) List(_ context.Context, params *pagination.PaginationParams, activeOnly bool) ([]entity.Promotion, int64, error) {
	var all []entity.Promotion
	for _, p := range r.promotions {
		if !activeOnly || p.IsActive {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	page, total := paginate(all, params)
	return page, total, nil
}

// users

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, u *entity.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = *u
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) FindByFullName(_ context.Context, name string) ([]entity.User, error) {
	var out []entity.User
	for _, u := range r.users {
		if u.IsActive && strings.EqualFold(u.FullName(), name) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r memUserRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	var all []entity.User
	for _, u := range r.users {
		if search == "" || strings.Contains(strings.ToLower(u.FullName()), strings.ToLower(search)) {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	page, total := paginate(all, params)
	return page, total, nil
}

func (r memUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUserRepo) AssignRole(_ context.Context, userID uuid.UUID, roleID uint) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, role := range u.Roles {
		if role.ID == roleID {
			return nil
		}
	}
	u.Roles = append(u.Roles, entity.Role{ID: roleID})
	r.users[userID] = u
	return nil
}

// invoices, items and shipments

type memInvoiceRepo struct{ *memStore }

func (r memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	header := *inv
	header.Items = nil
	header.Shipment = nil
	r.invoices[inv.ID] = header
	return nil
}

func (r memInvoiceRepo) assemble(id uuid.UUID) *entity.Invoice {
	inv, ok := r.invoices[id]
	if !ok {
		return nil
	}
	items := append([]entity.InvoiceItem(nil), r.items[id]...)
	sort.Slice(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })
	inv.Items = items
	if s, ok := r.shipments[id]; ok {
		inv.Shipment = &s
	}
	for i := range inv.Items {
		if p, ok := r.products[inv.Items[i].ProductID]; ok {
			inv.Items[i].Product = &p
		}
	}
	if c, ok := r.customers[inv.CustomerID]; ok {
		inv.Customer = &c
	}
	if u, ok := r.users[inv.CreatorID]; ok {
		inv.Creator = &u
	}
	if inv.PromotionID != nil {
		if p, ok := r.promotions[*inv.PromotionID]; ok {
			inv.Promotion = &p
		}
	}
	return &inv
}

func (r memInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.assemble(id), nil
}

func (r memInvoiceRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	inv.Items, inv.Shipment = nil, nil
	return &inv, nil
}

func (r memInvoiceRepo) UpdateHeader(_ context.Context, inv *entity.Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return repository.ErrNotFound
	}
	header := *inv
	header.Items = nil
	header.Shipment = nil
	header.Customer = nil
	header.Creator = nil
	header.Promotion = nil
	r.invoices[inv.ID] = header
	return nil
}

func (r memInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.referenced[id] {
		return repository.ErrStillReferenced
	}
	if _, ok := r.invoices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r memInvoiceRepo) List(_ context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var all []entity.Invoice
	for id, inv := range r.invoices {
		if params.CustomerID != nil && inv.CustomerID != *params.CustomerID {
			continue
		}
		if params.PaymentMethod != nil && inv.PaymentMethod != *params.PaymentMethod {
			continue
		}
		if params.IsPaid != nil && inv.IsPaid != *params.IsPaid {
			continue
		}
		if params.UnshippedOnly {
			if s, ok := r.shipments[id]; !ok || s.Status != enum.ShipmentStatusPending {
				continue
			}
		}
		all = append(all, *r.assemble(id))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].InvoiceNo < all[j].InvoiceNo })
	page, total := paginate(all, params.Pagination)
	return page, total, nil
}

func (r memInvoiceRepo) DailySales(_ context.Context, from, to time.Time) ([]repository.DailySales, error) {
	byDay := map[time.Time]*repository.DailySales{}
	for _, inv := range r.invoices {
		if inv.ExportedAt.Before(from) || !inv.ExportedAt.Before(to) {
			continue
		}
		day := inv.ExportedAt.UTC().Truncate(24 * time.Hour)
		row, ok := byDay[day]
		if !ok {
			row = &repository.DailySales{Day: day}
			byDay[day] = row
		}
		row.Invoices++
		row.Revenue = row.Revenue.Add(inv.Total)
	}
	out := make([]repository.DailySales, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

type memItemRepo struct{ *memStore }

func (r memItemRepo) CreateBatch(_ context.Context, items []entity.InvoiceItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		stored := items[i]
		stored.Product = nil
		r.items[stored.InvoiceID] = append(r.items[stored.InvoiceID], stored)
	}
	return nil
}

func (r memItemRepo) GetByInvoiceID(_ context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	items := append([]entity.InvoiceItem(nil), r.items[invoiceID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })
	return items, nil
}

func (r memItemRepo) DeleteByInvoiceID(_ context.Context, invoiceID uuid.UUID) error {
	delete(r.items, invoiceID)
	return nil
}

type memShipmentRepo struct{ *memStore }

func (r memShipmentRepo) Create(_ context.Context, s *entity.Shipment) error {
	if _, exists := r.shipments[s.InvoiceID]; exists {
		return errors.New("duplicate shipment for invoice")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = "pending"
	}
	r.shipments[s.InvoiceID] = *s
	return nil
}

func (r memShipmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Shipment, error) {
	for _, s := range r.shipments {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (r memShipmentRepo) GetByInvoiceID(_ context.Context, invoiceID uuid.UUID) (*entity.Shipment, error) {
	s, ok := r.shipments[invoiceID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memShipmentRepo) Update(_ context.Context, s *entity.Shipment) error {
	r.shipments[s.InvoiceID] = *s
	return nil
}

func (r memShipmentRepo) DeleteByInvoiceID(_ context.Context, invoiceID uuid.UUID) error {
	delete(r.shipments, invoiceID)
	return nil
}

func (r memShipmentRepo) List(_ context.Context, params *repository.ShipmentFilterParams) ([]entity.Shipment, int64, error) {
	var all []entity.Shipment
	for _, s := range r.shipments {
		if params.Status == nil || s.Status == *params.Status {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	page, total := paginate(all, params.Pagination)
	return page, total, nil
}

// stock-ins

type memStockInRepo struct{ *memStore }

func (r memStockInRepo) Create(_ context.Context, s *entity.StockIn) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].StockInID = s.ID
	}
	stored := *s
	stored.Items = append([]entity.StockInItem(nil), s.Items...)
	r.stockIns[s.ID] = stored
	return nil
}

func (r memStockInRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.StockIn, error) {
	s, ok := r.stockIns[id]
	if !ok {
		return nil, nil
	}
	s.Items = append([]entity.StockInItem(nil), s.Items...)
	return &s, nil
}

func (r memStockInRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.StockIn, error) {
	return r.GetByID(ctx, id)
}

func (r memStockInRepo) Update(_ context.Context, s *entity.StockIn) error {
	stored := *s
	stored.Items = r.stockIns[s.ID].Items
	r.stockIns[s.ID] = stored
	return nil
}

func (r memStockInRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.stockIns[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.stockIns, id)
	return nil
}

func (r memStockInRepo) List(_ context.Context, params *repository.StockInFilterParams) ([]entity.StockIn, int64, error) {
	var all []entity.StockIn
	for _, s := range r.stockIns {
		if params.SupplierID != nil && s.SupplierID != *params.SupplierID {
			continue
		}
		if params.Status != nil && s.Status != *params.Status {
			continue
		}
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ReferenceNo < all[j].ReferenceNo })
	page, total := paginate(all, params.Pagination)
	return page, total, nil
}

// locking and events

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string) (lock.Lock, error) {
	return nil, lock.ErrNotObtained
}

type capturePublisher struct {
	mu     sync.Mutex
	events []messaging.InvoiceEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, event messaging.InvoiceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) last() messaging.InvoiceEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}
