package blob

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/resilience"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/id"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// DefaultQuota is the per-user storage quota in bytes
const DefaultQuota int64 = 50 * 1024 * 1024

// maxOverflowScan bounds how much of a rejected body is read to size the overage
const maxOverflowScan int64 = 1 << 30

// blobExt is appended to every stored blob; blobs are zstd compressed at rest
const blobExt = ".zst"

// Errors returned by the blob provider
var (
	ErrNotFound      = errors.New("file not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrInvalidPath   = errors.New("invalid storage path")
	ErrBadPattern    = errors.New("invalid file pattern")
)

// Config configures a Provider
type Config struct {
	Root       string
	Quota      int64
	SigningKey []byte
	URLTTL     time.Duration
}

// Provider stores uploaded files on disk with their metadata in SQLite.
// Every user has a fixed byte quota checked before any write.
type Provider struct {
	db     *sql.DB
	cfg    Config
	guard  *resilience.Guard
	logger *zap.Logger
	hasher *utils.Hasher
	now    func() time.Time

	encoder *zstd.Encoder
	metrics *monitoring.Metrics

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // Protected by locksMu
}

// NewProvider creates a blob provider rooted at cfg.Root
func NewProvider(db *sql.DB, cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.Quota <= 0 {
		cfg.Quota = DefaultQuota
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = DefaultURLTTL
	}
	if len(cfg.SigningKey) == 0 {
		cfg.SigningKey = []byte(utils.DefaultHasher().HashString(cfg.Root))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	return &Provider{
		db:      db,
		cfg:     cfg,
		guard:   resilience.NewGuard("blob", logger),
		logger:  logger,
		hasher:  utils.DefaultHasher(),
		now:     time.Now,
		encoder: encoder,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// lockUser serializes quota-checked writes for one user
func (p *Provider) lockUser(userID string) func() {
	p.locksMu.Lock()
	mu, ok := p.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		p.locks[userID] = mu
	}
	p.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// WithMetrics adds metrics tracking to the provider
func (p *Provider) WithMetrics(metrics *monitoring.Metrics) *Provider {
	p.metrics = metrics
	p.guard.WithMetrics(metrics)
	return p
}

// WithGuard replaces the collaborator guard
func (p *Provider) WithGuard(guard *resilience.Guard) *Provider {
	p.guard = guard
	return p
}

// WithClock replaces the time source
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Quota returns the per-user quota in bytes
func (p *Provider) Quota() int64 {
	return p.cfg.Quota
}

// CheckQuota reports whether size more bytes fit in the user's quota
func (p *Provider) CheckQuota(ctx context.Context, userID string, size int64) types.QuotaCheck {
	used, err := p.usage(ctx, userID)
	if err != nil {
		return types.QuotaCheck{QuotaBytes: p.cfg.Quota, Error: err.Error()}
	}

	check := types.QuotaCheck{
		Allowed:      used+size <= p.cfg.Quota,
		CurrentUsage: used,
		QuotaBytes:   p.cfg.Quota,
	}
	if !check.Allowed {
		check.ExceededBy = used + size - p.cfg.Quota
	}
	return check
}

// Upload stores one file for userID. The quota is checked first and nothing
// is written when it would be exceeded.
func (p *Provider) Upload(ctx context.Context, userID, filename string, r io.Reader, size int64) types.UploadResult {
	if err := utils.ValidateID(userID, "user_id", true); err != nil {
		return p.uploadFailed(err.Error())
	}
	if size < 0 {
		return p.uploadFailed("invalid file size")
	}

	// Usage must not change between the quota check and the insert
	unlock := p.lockUser(userID)
	defer unlock()

	check := p.CheckQuota(ctx, userID, size)
	if check.Error != "" {
		return p.uploadFailed(check.Error)
	}
	if !check.Allowed {
		return p.quotaDenied(check)
	}

	// Never read past what the quota can hold, whatever size claimed
	limit := p.cfg.Quota - check.CurrentUsage
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return p.uploadFailed(fmt.Sprintf("failed to read upload: %v", err))
	}
	if int64(len(data)) > limit {
		rest, _ := io.Copy(io.Discard, io.LimitReader(r, maxOverflowScan))
		check.Allowed = false
		check.ExceededBy = check.CurrentUsage + int64(len(data)) + rest - p.cfg.Quota
		return p.quotaDenied(check)
	}

	ulid := id.Default().GenerateString()
	record := &types.FileRecord{
		ID:          id.FilePrefix + "_" + ulid,
		UserID:      userID,
		Filename:    filename,
		SizeBytes:   int64(len(data)),
		StoragePath: userID + "/" + ulid + "-" + utils.SanitizeFilename(filename),
		MimeType:    mimetype.Detect(data).String(),
		Checksum:    p.hasher.Hash(data),
		CreatedAt:   p.now(),
	}

	if err := p.writeBlob(record.StoragePath, data); err != nil {
		p.logger.Warn("Blob write failed", zap.String("user_id", userID), zap.Error(err))
		return p.uploadFailed("failed to store file")
	}

	err = p.guard.Run(ctx, "insert_metadata", func(ctx context.Context) error {
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO file_metadata (id, user_id, filename, size_bytes, storage_path, mime_type, checksum, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, record.UserID, record.Filename, record.SizeBytes,
			record.StoragePath, record.MimeType, record.Checksum, record.CreatedAt.UnixNano())
		return err
	})
	if err != nil {
		p.removeBlob(record.StoragePath)
		p.logger.Warn("Metadata insert failed", zap.String("user_id", userID), zap.Error(err))
		return p.uploadFailed("failed to record file metadata")
	}

	if p.metrics != nil {
		p.metrics.RecordUpload("success", record.SizeBytes)
	}
	p.logger.Info("File uploaded",
		zap.String("user_id", userID),
		zap.String("file_id", record.ID),
		zap.Int64("size", record.SizeBytes),
		zap.String("mime", record.MimeType),
	)
	return types.UploadResult{Success: true, File: record}
}

// List returns the user's files, newest first. A non-empty pattern is a
// doublestar glob matched against the original filename.
func (p *Provider) List(ctx context.Context, userID, pattern string) ([]types.FileRecord, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, ErrBadPattern
	}

	records, err := resilience.Do(ctx, p.guard, "list", func(ctx context.Context) ([]types.FileRecord, error) {
		return p.queryRecords(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	if pattern == "" {
		return records, nil
	}
	matched := make([]types.FileRecord, 0, len(records))
	for _, rec := range records {
		if ok, _ := doublestar.Match(pattern, rec.Filename); ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Get returns one file record owned by userID
func (p *Provider) Get(ctx context.Context, userID, fileID string) (*types.FileRecord, error) {
	rec, err := resilience.Do(ctx, p.guard, "get", func(ctx context.Context) (*types.FileRecord, error) {
		return p.queryRecord(ctx, "id", fileID, userID)
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Delete removes the blob at storagePath and the metadata row for fileID.
// When the blob cannot be removed the metadata is kept and an error returned.
func (p *Provider) Delete(ctx context.Context, userID, fileID, storagePath string) error {
	rec, err := p.Get(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if storagePath != "" && storagePath != rec.StoragePath {
		return ErrInvalidPath
	}

	if err := p.removeBlob(rec.StoragePath); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	err = p.guard.Run(ctx, "delete_metadata", func(ctx context.Context) error {
		_, err := p.db.ExecContext(ctx, "DELETE FROM file_metadata WHERE id = ? AND user_id = ?", fileID, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	p.logger.Info("File deleted", zap.String("user_id", userID), zap.String("file_id", fileID))
	return nil
}

// AdminReset deletes every blob and metadata row owned by userID and sweeps
// stray files left in the user's directory. It returns the number of
// metadata rows removed.
func (p *Provider) AdminReset(ctx context.Context, userID string) (int, error) {
	if err := utils.ValidateID(userID, "user_id", true); err != nil {
		return 0, err
	}

	records, err := resilience.Do(ctx, p.guard, "list", func(ctx context.Context) ([]types.FileRecord, error) {
		return p.queryRecords(ctx, userID)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list files: %w", err)
	}

	var failed []string
	for _, rec := range records {
		if err := p.removeBlob(rec.StoragePath); err != nil {
			failed = append(failed, rec.StoragePath)
		}
	}

	var removed int64
	err = p.guard.Run(ctx, "reset", func(ctx context.Context) error {
		res, err := p.db.ExecContext(ctx, "DELETE FROM file_metadata WHERE user_id = ?", userID)
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete metadata: %w", err)
	}

	swept, sweepErr := p.sweep(ctx, userID)
	p.logger.Info("Storage reset",
		zap.String("user_id", userID),
		zap.Int64("removed", removed),
		zap.Int("swept", swept),
		zap.Int("failed", len(failed)),
	)

	if len(failed) > 0 {
		return int(removed), fmt.Errorf("failed to delete %d blobs", len(failed))
	}
	return int(removed), sweepErr
}

// Usage returns the bytes used by userID and the quota
func (p *Provider) Usage(ctx context.Context, userID string) (types.StorageUsage, error) {
	used, err := p.usage(ctx, userID)
	if err != nil {
		return types.StorageUsage{Total: p.cfg.Quota}, err
	}
	return types.StorageUsage{Used: used, Total: p.cfg.Quota}, nil
}

// Open returns a reader over the decompressed blob at storagePath
func (p *Provider) Open(ctx context.Context, storagePath string) (io.ReadCloser, *types.FileRecord, error) {
	rec, err := resilience.Do(ctx, p.guard, "get", func(ctx context.Context) (*types.FileRecord, error) {
		return p.queryRecord(ctx, "storage_path", storagePath, "")
	})
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, ErrNotFound
	}

	full, err := p.diskPath(storagePath)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open blob: %w", err)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to open decoder: %w", err)
	}
	return &blobReader{Decoder: dec, file: f}, rec, nil
}

// Close releases the encoder
func (p *Provider) Close() error {
	return p.encoder.Close()
}

type blobReader struct {
	*zstd.Decoder
	file *os.File
}

func (b *blobReader) Close() error {
	b.Decoder.Close()
	return b.file.Close()
}

func (p *Provider) usage(ctx context.Context, userID string) (int64, error) {
	return resilience.Do(ctx, p.guard, "usage", func(ctx context.Context) (int64, error) {
		var used int64
		err := p.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(size_bytes), 0) FROM file_metadata WHERE user_id = ?", userID,
		).Scan(&used)
		return used, err
	})
}

func (p *Provider) queryRecords(ctx context.Context, userID string) ([]types.FileRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, filename, size_bytes, storage_path, mime_type, checksum, created_at
		FROM file_metadata WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []types.FileRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// queryRecord reads one record by column, returning nil when there is none
func (p *Provider) queryRecord(ctx context.Context, column, value, userID string) (*types.FileRecord, error) {
	query := `SELECT id, user_id, filename, size_bytes, storage_path, mime_type, checksum, created_at
		FROM file_metadata WHERE ` + column + ` = ?`
	args := []interface{}{value}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	rec, err := scanRecord(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*types.FileRecord, error) {
	var rec types.FileRecord
	var created int64
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Filename, &rec.SizeBytes,
		&rec.StoragePath, &rec.MimeType, &rec.Checksum, &created)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, created)
	return &rec, nil
}

// diskPath maps a storage path to its file under the root
func (p *Provider) diskPath(storagePath string) (string, error) {
	clean := path.Clean(storagePath)
	if clean != storagePath || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") || !strings.Contains(clean, "/") {
		return "", ErrInvalidPath
	}
	return filepath.Join(p.cfg.Root, filepath.FromSlash(clean)) + blobExt, nil
}

// writeBlob compresses data and writes it atomically
func (p *Provider) writeBlob(storagePath string, data []byte) error {
	full, err := p.diskPath(storagePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	compressed := p.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, bytes.NewReader(compressed)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// removeBlob deletes the blob; a missing blob counts as removed
func (p *Provider) removeBlob(storagePath string) error {
	full, err := p.diskPath(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (p *Provider) uploadFailed(message string) types.UploadResult {
	if p.metrics != nil {
		p.metrics.RecordUpload("error", 0)
	}
	return types.UploadResult{Error: message}
}

func (p *Provider) quotaDenied(check types.QuotaCheck) types.UploadResult {
	if p.metrics != nil {
		p.metrics.RecordUpload("denied", 0)
		p.metrics.IncQuotaDenials()
	}
	return types.UploadResult{
		QuotaCheck: &check,
		Error:      ErrQuotaExceeded.Error(),
	}
}
