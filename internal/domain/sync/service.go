package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"storysync/internal/domain/device"
	"storysync/internal/domain/entity"
)

const DefaultMaxBatchSize = 1000

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// Pull возвращает изменения для устройства и обновляет его отметку синхронизации
	Pull(ctx context.Context, d *device.Device, req PullRequest) (*PullResponse, error)

	// Push применяет пакет изменений устройства
	Push(ctx context.Context, d *device.Device, changes []EntityChange) (*PushResult, error)

	// Status возвращает состояние синхронизации устройства
	Status(ctx context.Context, d *device.Device) (*StatusResponse, error)
}

// ServiceConfig настройки сервиса синхронизации
type ServiceConfig struct {
	MaxBatchSize int
}

// Service реализация сервиса синхронизации
type Service struct {
	registry *entity.Registry
	entities EntityRepository
	syncLog  LogRepository
	devices  DeviceToucher
	metrics  Metrics
	log      *slog.Logger
	config   *ServiceConfig
	now      func() time.Time
}

// NewService создает новый сервис синхронизации
func NewService(
	registry *entity.Registry,
	entities EntityRepository,
	syncLog LogRepository,
	devices DeviceToucher,
	log *slog.Logger,
	config *ServiceConfig,
) *Service {
	if config == nil {
		config = &ServiceConfig{MaxBatchSize: DefaultMaxBatchSize}
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultMaxBatchSize
	}

	return &Service{
		registry: registry,
		entities: entities,
		syncLog:  syncLog,
		devices:  devices,
		metrics:  nopMetrics{},
		log:      log.With(slog.String("component", "sync")),
		config:   config,
		now:      time.Now,
	}
}

// WithMetrics подключает счетчики
func (s *Service) WithMetrics(m Metrics) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// GetChangesSince собирает изменения после since; since == nil означает полную синхронизацию.
// При полной синхронизации живые сущности отдаются как create: у клиента еще нет копии.
func (s *Service) GetChangesSince(ctx context.Context, since *time.Time, entityTypes []string) ([]EntityChange, error) {
	since = entity.NormalizePtr(since)
	changes := make([]EntityChange, 0)

	for _, typ := range s.registry.Resolve(entityTypes) {
		records, err := s.entities.ListChangedSince(ctx, typ, since)
		if err != nil {
			return nil, fmt.Errorf("list %s changes: %w", typ.Name, err)
		}

		for i := range records {
			rec := &records[i]
			version := rec.Version
			updatedAt := NewTimestamp(rec.UpdatedAt)

			change := EntityChange{
				EntityType: typ.Name,
				EntityID:   rec.ID,
				Version:    &version,
				UpdatedAt:  &updatedAt,
			}
			switch {
			case rec.IsDeleted():
				change.Operation = OpDelete
			case since == nil || entity.Normalize(rec.CreatedAt).After(*since):
				change.Operation = OpCreate
				change.Data = typ.Snapshot(rec)
			default:
				change.Operation = OpUpdate
				change.Data = typ.Snapshot(rec)
			}
			changes = append(changes, change)
		}
		s.metrics.ObservePull(typ.Name, len(records))
	}

	return changes, nil
}

// CountChangesSince считает изменения по тому же условию, что и GetChangesSince
func (s *Service) CountChangesSince(ctx context.Context, since *time.Time, entityTypes []string) (int, error) {
	since = entity.NormalizePtr(since)
	total := 0
	for _, typ := range s.registry.Resolve(entityTypes) {
		n, err := s.entities.CountChangedSince(ctx, typ, since)
		if err != nil {
			return 0, fmt.Errorf("count %s changes: %w", typ.Name, err)
		}
		total += n
	}
	return total, nil
}

func (s *Service) Pull(ctx context.Context, d *device.Device, req PullRequest) (*PullResponse, error) {
	// метка берется до чтения, чтобы изменения во время выборки попали в следующий pull
	syncTime := NewTimestamp(s.now())

	changes, err := s.GetChangesSince(ctx, req.SinceTimestamp.Ptr(), req.EntityTypes)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, d)

	s.log.Info("pull served",
		slog.String("device_id", d.DeviceID),
		slog.Int("changes", len(changes)),
		slog.Bool("full", req.SinceTimestamp.Ptr() == nil),
	)

	return &PullResponse{
		Changes:       changes,
		SyncTimestamp: syncTime,
		HasMore:       false,
	}, nil
}

func (s *Service) Push(ctx context.Context, d *device.Device, changes []EntityChange) (*PushResult, error) {
	if len(changes) > s.config.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d changes, limit %d", ErrBatchTooLarge, len(changes), s.config.MaxBatchSize)
	}

	result := s.ApplyChanges(ctx, d, changes)
	s.touch(ctx, d)

	s.log.Info("push applied",
		slog.String("device_id", d.DeviceID),
		slog.Int("accepted", result.Accepted),
		slog.Int("conflicts", len(result.Conflicts)),
		slog.Int("rejected", result.Rejected),
	)
	return result, nil
}

func (s *Service) Status(ctx context.Context, d *device.Device) (*StatusResponse, error) {
	pending, err := s.CountChangesSince(ctx, d.LastSync, nil)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		DeviceID:            d.DeviceID,
		DeviceName:          d.Name,
		LastSyncAt:          timestampPtr(d.LastSync),
		PendingChangesCount: pending,
		ServerTimestamp:     NewTimestamp(s.now()),
	}, nil
}

// ApplyChanges обрабатывает изменения строго по порядку. Ошибка в одном изменении
// засчитывается как rejected и не прерывает пакет.
func (s *Service) ApplyChanges(ctx context.Context, d *device.Device, changes []EntityChange) *PushResult {
	result := &PushResult{Conflicts: make([]ConflictInfo, 0)}

	for i := range changes {
		change := changes[i]
		change.Normalize()

		outcome, conflict, err := s.safeApply(ctx, d, &change)
		switch outcome {
		case OutcomeAccepted:
			result.Accepted++
		case OutcomeConflict:
			result.Conflicts = append(result.Conflicts, *conflict)
		default:
			result.Rejected++
			s.log.Warn("change rejected",
				slog.Int("index", i),
				slog.String("entity_type", change.EntityType),
				slog.Int64("entity_id", change.EntityID),
				slog.String("operation", string(change.Operation)),
				slog.String("error", errString(err)),
			)
		}
		s.metrics.ObserveChange(s.metricLabel(change.EntityType), metricOp(change.Operation), outcome)
	}

	return result
}

func (s *Service) safeApply(ctx context.Context, d *device.Device, change *EntityChange) (outcome Outcome, conflict *ConflictInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, conflict, err = OutcomeRejected, nil, fmt.Errorf("panic: %v", r)
		}
	}()

	outcome, conflict, err = s.applyChange(ctx, d, change)
	if err != nil {
		return OutcomeRejected, nil, err
	}
	return outcome, conflict, nil
}

func (s *Service) applyChange(ctx context.Context, d *device.Device, change *EntityChange) (Outcome, *ConflictInfo, error) {
	if err := change.Err(); err != nil {
		return OutcomeRejected, nil, err
	}
	typ, ok := s.registry.Lookup(change.EntityType)
	if !ok {
		return OutcomeRejected, nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, change.EntityType)
	}
	if change.EntityID <= 0 {
		return OutcomeRejected, nil, fmt.Errorf("%w: entity_id must be positive", ErrInvalidChange)
	}

	switch change.Operation {
	case OpCreate:
		return s.applyCreate(ctx, d, typ, change)
	case OpUpdate:
		return s.applyUpdate(ctx, d, typ, change)
	case OpDelete:
		return s.applyDelete(ctx, d, typ, change)
	}
	return OutcomeRejected, nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, change.Operation)
}

func (s *Service) applyCreate(ctx context.Context, d *device.Device, typ *entity.Type, change *EntityChange) (Outcome, *ConflictInfo, error) {
	if err := requireBaseline(change); err != nil {
		return OutcomeRejected, nil, err
	}

	if change.Data == nil {
		return OutcomeRejected, nil, fmt.Errorf("%w: data is required for %s", ErrInvalidChange, change.Operation)
	}

	values, err := typ.Patch(change.Data, entity.PatchCreate)
	if err != nil {
		return OutcomeRejected, nil, err
	}

	updatedAt := entity.Normalize(change.UpdatedAt.Time)
	createdAt := updatedAt
	if raw, ok := change.Data[entity.FieldCreatedAt].(string); ok {
		if t, err := ParseTimestamp(raw); err == nil {
			createdAt = t
		}
	}

	rec := &entity.Record{
		ID:        change.EntityID,
		Version:   *change.Version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Fields:    values,
	}
	err = s.entities.Create(ctx, typ, rec)
	if errors.Is(err, entity.ErrAlreadyExists) {
		existing, gerr := s.entities.Get(ctx, typ, change.EntityID)
		if gerr != nil {
			return OutcomeRejected, nil, fmt.Errorf("load existing %s#%d: %w", typ.Name, change.EntityID, gerr)
		}
		return OutcomeConflict, s.conflict(typ, existing, change, ResolutionDesktopWins), nil
	}
	if err != nil {
		return OutcomeRejected, nil, fmt.Errorf("create %s#%d: %w", typ.Name, change.EntityID, err)
	}

	s.appendLog(ctx, d, typ, change.EntityID, OpCreate, rec.Version)
	return OutcomeAccepted, nil, nil
}

func (s *Service) applyUpdate(ctx context.Context, d *device.Device, typ *entity.Type, change *EntityChange) (Outcome, *ConflictInfo, error) {
	if err := requireBaseline(change); err != nil {
		return OutcomeRejected, nil, err
	}

	if change.Data == nil {
		return OutcomeRejected, nil, fmt.Errorf("%w: data is required for %s", ErrInvalidChange, change.Operation)
	}

	values, err := typ.Patch(change.Data, entity.PatchUpdate)
	if err != nil {
		return OutcomeRejected, nil, err
	}

	newVersion, err := s.entities.Update(ctx, typ, change.EntityID, *change.Version, values, entity.Normalize(s.now()))
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return OutcomeRejected, nil, fmt.Errorf("%w: %s#%d", ErrEntityMissing, typ.Name, change.EntityID)
	case errors.Is(err, entity.ErrVersionMismatch):
		existing, gerr := s.entities.Get(ctx, typ, change.EntityID)
		if gerr != nil {
			return OutcomeRejected, nil, fmt.Errorf("load existing %s#%d: %w", typ.Name, change.EntityID, gerr)
		}
		return OutcomeConflict, s.conflict(typ, existing, change, ResolutionMerge), nil
	case err != nil:
		return OutcomeRejected, nil, fmt.Errorf("update %s#%d: %w", typ.Name, change.EntityID, err)
	}

	s.appendLog(ctx, d, typ, change.EntityID, OpUpdate, newVersion)
	return OutcomeAccepted, nil, nil
}

// applyDelete не сверяет версии: удаление побеждает всегда.
// Отсутствующая или уже удаленная сущность принимается без изменений.
func (s *Service) applyDelete(ctx context.Context, d *device.Device, typ *entity.Type, change *EntityChange) (Outcome, *ConflictInfo, error) {
	newVersion, err := s.entities.SoftDelete(ctx, typ, change.EntityID, entity.Normalize(s.now()))
	if errors.Is(err, entity.ErrNotFound) {
		return OutcomeAccepted, nil, nil
	}
	if err != nil {
		return OutcomeRejected, nil, fmt.Errorf("delete %s#%d: %w", typ.Name, change.EntityID, err)
	}

	s.appendLog(ctx, d, typ, change.EntityID, OpDelete, newVersion)
	return OutcomeAccepted, nil, nil
}

func (s *Service) conflict(typ *entity.Type, existing *entity.Record, change *EntityChange, resolution Resolution) *ConflictInfo {
	mobileData := change.Data
	if mobileData == nil {
		mobileData = Fields{}
	}
	return &ConflictInfo{
		EntityType:       typ.Name,
		EntityID:         change.EntityID,
		MobileVersion:    *change.Version,
		DesktopVersion:   existing.Version,
		MobileUpdatedAt:  NewTimestamp(change.UpdatedAt.Time),
		DesktopUpdatedAt: NewTimestamp(existing.UpdatedAt),
		MobileData:       mobileData,
		DesktopData:      typ.Snapshot(existing),
		Resolution:       resolution,
	}
}

// appendLog пишет журнал без отката изменения при ошибке
func (s *Service) appendLog(ctx context.Context, d *device.Device, typ *entity.Type, id int64, op Operation, version int64) {
	err := s.syncLog.Append(ctx, LogEntry{
		DeviceID:   d.DeviceID,
		EntityType: typ.Name,
		EntityID:   id,
		Operation:  op,
		Version:    version,
		CreatedAt:  entity.Normalize(s.now()),
	})
	if err != nil {
		s.log.Warn("sync log write failed",
			slog.String("entity_type", typ.Name),
			slog.Int64("entity_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) touch(ctx context.Context, d *device.Device) {
	if err := s.devices.TouchLastSync(ctx, d); err != nil {
		s.log.Warn("touch last sync failed",
			slog.String("device_id", d.DeviceID),
			slog.String("error", err.Error()),
		)
	}
}

// metricLabel не пускает произвольные строки клиента в метки
func (s *Service) metricLabel(entityType string) string {
	if _, ok := s.registry.Lookup(entityType); ok {
		return entityType
	}
	return "unknown"
}

func metricOp(op Operation) Operation {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return op
	}
	return "unknown"
}

func requireBaseline(change *EntityChange) error {
	if change.Version == nil || change.UpdatedAt == nil || change.UpdatedAt.IsZero() {
		return ErrMissingBaseline
	}
	if *change.Version < 1 {
		return fmt.Errorf("%w: version must be at least 1", ErrInvalidChange)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
