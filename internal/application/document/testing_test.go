package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// memStore is the backing state shared across staged transactions
type memStore struct {
	docs      map[uuid.UUID]*document.Document
	ledgers   map[string]*inventory.LedgerRecord
	movements []*inventory.StockMovement
}

func newMemStore() *memStore {
	return &memStore{
		docs:    make(map[uuid.UUID]*document.Document),
		ledgers: make(map[string]*inventory.LedgerRecord),
	}
}

func (s *memStore) putDocument(doc *document.Document) {
	s.docs[doc.ID] = cloneDocument(doc)
}

func (s *memStore) putLedger(record *inventory.LedgerRecord) {
	s.ledgers[ledgerKey(record.WarehouseID, record.GoodsID, record.BatchNumber)] = cloneLedger(record)
}

func (s *memStore) ledger(warehouseID, goodsID uuid.UUID, batchNumber string) *inventory.LedgerRecord {
	return s.ledgers[ledgerKey(warehouseID, goodsID, batchNumber)]
}

func cloneDocument(doc *document.Document) *document.Document {
	clone := *doc
	clone.Lines = make([]document.DocumentLine, len(doc.Lines))
	copy(clone.Lines, doc.Lines)
	return &clone
}

func cloneLedger(record *inventory.LedgerRecord) *inventory.LedgerRecord {
	clone := *record
	return &clone
}

// stagingScope imitates the real transactional scope: repository writes land
// in a per-transaction stage and reach the store only when the function
// returns nil. An error discards the stage, like a rollback.
type stagingScope struct {
	store *memStore

	// movementFailAfter fails the Nth movement insert when > 0,
	// forcing a mid-execution rollback
	movementFailAfter int

	// beforeLedgerSave runs once before the next ledger SaveWithLock,
	// letting a test commit a competing write first
	beforeLedgerSave func()
}

func newStagingScope(store *memStore) *stagingScope {
	return &stagingScope{store: store}
}

func (s *stagingScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	txn := &stagedRepos{
		scope:         s,
		stagedDocs:    make(map[uuid.UUID]*document.Document),
		stagedLedgers: make(map[string]*inventory.LedgerRecord),
	}
	if err := fn(txn); err != nil {
		return err
	}
	txn.commit()
	return nil
}

type stagedRepos struct {
	scope           *stagingScope
	stagedDocs      map[uuid.UUID]*document.Document
	stagedLedgers   map[string]*inventory.LedgerRecord
	stagedMovements []*inventory.StockMovement
	movementCount   int
}

func (t *stagedRepos) commit() {
	for id, doc := range t.stagedDocs {
		t.scope.store.docs[id] = doc
	}
	for key, record := range t.stagedLedgers {
		t.scope.store.ledgers[key] = record
	}
	t.scope.store.movements = append(t.scope.store.movements, t.stagedMovements...)
}

func (t *stagedRepos) DocumentRepo() document.Repository   { return &stagedDocumentRepo{t} }
func (t *stagedRepos) LedgerRepo() inventory.LedgerRepository {
	return &stagedLedgerRepo{t}
}
func (t *stagedRepos) MovementRepo() inventory.MovementRepository {
	return &stagedMovementRepo{t}
}

// stagedDocumentRepo implements the handful of repository methods the
// services exercise; the embedded interface covers the rest.
type stagedDocumentRepo struct {
	txn *stagedRepos
}

var _ document.Repository = (*stagedDocumentRepo)(nil)

func (r *stagedDocumentRepo) findCurrent(id uuid.UUID) (*document.Document, error) {
	if doc, ok := r.txn.stagedDocs[id]; ok {
		return cloneDocument(doc), nil
	}
	if doc, ok := r.txn.scope.store.docs[id]; ok {
		return cloneDocument(doc), nil
	}
	return nil, shared.ErrNotFound
}

func (r *stagedDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*document.Document, error) {
	return r.findCurrent(id)
}

func (r *stagedDocumentRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*document.Document, error) {
	return r.findCurrent(id)
}

func (r *stagedDocumentRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*document.Document, error) {
	for _, doc := range r.txn.scope.store.docs {
		if doc.OrderNumber == orderNumber {
			return cloneDocument(doc), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stagedDocumentRepo) Save(_ context.Context, doc *document.Document) error {
	r.txn.stagedDocs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *stagedDocumentRepo) SaveWithLock(_ context.Context, doc *document.Document) error {
	r.txn.stagedDocs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *stagedDocumentRepo) FindByStatus(_ context.Context, _ document.ApprovalStatus, _ shared.Filter) ([]document.Document, error) {
	return nil, nil
}

func (r *stagedDocumentRepo) FindByBusinessType(_ context.Context, _ document.BusinessType, _ shared.Filter) ([]document.Document, error) {
	return nil, nil
}

func (r *stagedDocumentRepo) FindByWarehouse(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]document.Document, error) {
	return nil, nil
}

func (r *stagedDocumentRepo) FindByApplicant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]document.Document, error) {
	return nil, nil
}

func (r *stagedDocumentRepo) FindPendingApproval(_ context.Context, _ shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	for _, doc := range r.txn.scope.store.docs {
		if doc.Status.CanApprove() {
			docs = append(docs, *cloneDocument(doc))
		}
	}
	return docs, nil
}

func (r *stagedDocumentRepo) FindByDateRange(_ context.Context, _, _ time.Time, _ shared.Filter) ([]document.Document, error) {
	return nil, nil
}

func (r *stagedDocumentRepo) FindAll(_ context.Context, _ shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	for _, doc := range r.txn.scope.store.docs {
		docs = append(docs, *cloneDocument(doc))
	}
	return docs, nil
}

func (r *stagedDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.txn.scope.store.docs, id)
	return nil
}

func (r *stagedDocumentRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.txn.scope.store.docs)), nil
}

func (r *stagedDocumentRepo) CountByStatus(_ context.Context, status document.ApprovalStatus) (int64, error) {
	var n int64
	for _, doc := range r.txn.scope.store.docs {
		if doc.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *stagedDocumentRepo) ExistsByOrderNumber(_ context.Context, orderNumber string) (bool, error) {
	for _, doc := range r.txn.scope.store.docs {
		if doc.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

type stagedLedgerRepo struct {
	txn *stagedRepos
}

var _ inventory.LedgerRepository = (*stagedLedgerRepo)(nil)

func (r *stagedLedgerRepo) findCurrent(key string) (*inventory.LedgerRecord, bool) {
	if record, ok := r.txn.stagedLedgers[key]; ok {
		return cloneLedger(record), true
	}
	if record, ok := r.txn.scope.store.ledgers[key]; ok {
		return cloneLedger(record), true
	}
	return nil, false
}

func (r *stagedLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.LedgerRecord, error) {
	for _, record := range r.txn.scope.store.ledgers {
		if record.ID == id {
			return cloneLedger(record), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stagedLedgerRepo) FindByKey(_ context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*inventory.LedgerRecord, error) {
	if record, ok := r.findCurrent(ledgerKey(warehouseID, goodsID, batchNumber)); ok {
		return record, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stagedLedgerRepo) FindByKeyForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*inventory.LedgerRecord, error) {
	return r.FindByKey(ctx, warehouseID, goodsID, batchNumber)
}

func (r *stagedLedgerRepo) GetOrCreateForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*inventory.LedgerRecord, error) {
	if record, ok := r.findCurrent(ledgerKey(warehouseID, goodsID, batchNumber)); ok {
		return record, nil
	}
	record, err := inventory.NewLedgerRecord(warehouseID, goodsID, batchNumber)
	if err != nil {
		return nil, err
	}
	r.txn.stagedLedgers[ledgerKey(warehouseID, goodsID, batchNumber)] = cloneLedger(record)
	return record, nil
}

func (r *stagedLedgerRepo) FindByWarehouse(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]inventory.LedgerRecord, error) {
	return nil, nil
}

func (r *stagedLedgerRepo) FindByGoods(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]inventory.LedgerRecord, error) {
	return nil, nil
}

func (r *stagedLedgerRepo) FindWithStock(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]inventory.LedgerRecord, error) {
	return nil, nil
}

func (r *stagedLedgerRepo) FindBelowThreshold(_ context.Context, _ decimal.Decimal, _ shared.Filter) ([]inventory.LedgerRecord, error) {
	return nil, nil
}

func (r *stagedLedgerRepo) FindExpiringWithin(_ context.Context, _ time.Duration, _ shared.Filter) ([]inventory.LedgerRecord, error) {
	return nil, nil
}

func (r *stagedLedgerRepo) FindExpired(_ context.Context, _ shared.Filter) ([]inventory.LedgerRecord, error) {
	return nil, nil
}

func (r *stagedLedgerRepo) Save(_ context.Context, record *inventory.LedgerRecord) error {
	r.txn.stagedLedgers[ledgerKey(record.WarehouseID, record.GoodsID, record.BatchNumber)] = cloneLedger(record)
	return nil
}

// SaveWithLock imitates the optimistic update of the real repository: the
// write only lands when the caller still holds the current version, and a
// successful write bumps it.
func (r *stagedLedgerRepo) SaveWithLock(ctx context.Context, record *inventory.LedgerRecord) error {
	if hook := r.txn.scope.beforeLedgerSave; hook != nil {
		r.txn.scope.beforeLedgerSave = nil
		hook()
	}
	key := ledgerKey(record.WarehouseID, record.GoodsID, record.BatchNumber)
	if current, ok := r.findCurrent(key); ok && current.Version != record.Version {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Stock line was modified concurrently")
	}
	record.IncrementVersion()
	return r.Save(ctx, record)
}

func (r *stagedLedgerRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r *stagedLedgerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.txn.scope.store.ledgers)), nil
}

func (r *stagedLedgerRepo) SumQuantityByGoods(_ context.Context, goodsID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, record := range r.txn.scope.store.ledgers {
		if record.GoodsID == goodsID {
			sum = sum.Add(record.Quantity)
		}
	}
	return sum, nil
}

func (r *stagedLedgerRepo) SumValueByWarehouse(_ context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, record := range r.txn.scope.store.ledgers {
		if record.WarehouseID == warehouseID {
			sum = sum.Add(record.StockValue())
		}
	}
	return sum, nil
}

type stagedMovementRepo struct {
	txn *stagedRepos
}

var _ inventory.MovementRepository = (*stagedMovementRepo)(nil)

func (r *stagedMovementRepo) Create(_ context.Context, movement *inventory.StockMovement) error {
	r.txn.movementCount++
	if r.txn.scope.movementFailAfter > 0 && r.txn.movementCount >= r.txn.scope.movementFailAfter {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Simulated insert failure")
	}
	r.txn.stagedMovements = append(r.txn.stagedMovements, movement)
	return nil
}

func (r *stagedMovementRepo) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	for _, movement := range movements {
		if err := r.Create(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

func (r *stagedMovementRepo) FindByLedgerRecord(_ context.Context, ledgerRecordID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, movement := range r.txn.scope.store.movements {
		if movement.LedgerRecordID == ledgerRecordID {
			out = append(out, *movement)
		}
	}
	return out, nil
}

func (r *stagedMovementRepo) FindByDocument(_ context.Context, documentID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, movement := range r.txn.scope.store.movements {
		if movement.DocumentID != nil && *movement.DocumentID == documentID {
			out = append(out, *movement)
		}
	}
	return out, nil
}

func (r *stagedMovementRepo) FindByWarehouse(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	return nil, nil
}

func (r *stagedMovementRepo) FindByDateRange(_ context.Context, _, _ time.Time, _ shared.Filter) ([]inventory.StockMovement, error) {
	return nil, nil
}

func (r *stagedMovementRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.txn.scope.store.movements)), nil
}

// fixedNumbers hands out sequential order numbers for tests
type fixedNumbers struct {
	n int
}

func (g *fixedNumbers) Next(_ context.Context, prefix string) (string, error) {
	g.n++
	return fmt.Sprintf("%s20260831-%04d", prefix, g.n), nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
