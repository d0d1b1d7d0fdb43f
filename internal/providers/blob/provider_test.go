package blob

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, quota int64) *Provider {
	t.Helper()
	db, err := persist.OpenDB(persist.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p, err := NewProvider(db, Config{
		Root:       t.TempDir(),
		Quota:      quota,
		SigningKey: []byte("test-key"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func upload(t *testing.T, p *Provider, user, name, body string) string {
	t.Helper()
	result := p.Upload(context.Background(), user, name, strings.NewReader(body), int64(len(body)))
	require.True(t, result.Success, result.Error)
	return result.File.ID
}

func TestUploadStoresCompressedBlob(t *testing.T) {
	p := newTestProvider(t, 1024)
	ctx := context.Background()

	result := p.Upload(ctx, "u1", "notes v1.txt", strings.NewReader("hello stellar"), 13)
	require.True(t, result.Success, result.Error)

	rec := result.File
	assert.True(t, strings.HasPrefix(rec.StoragePath, "u1/"))
	assert.True(t, strings.HasSuffix(rec.StoragePath, "-notes_v1.txt"))
	assert.Equal(t, int64(13), rec.SizeBytes)
	assert.Contains(t, rec.MimeType, "text/plain")
	assert.NotEmpty(t, rec.Checksum)

	rc, opened, err := p.Open(ctx, rec.StoragePath)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello stellar", string(data))
	assert.Equal(t, rec.ID, opened.ID)

	usage, err := p.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(13), usage.Used)
	assert.Equal(t, int64(1024), usage.Total)
}

func TestQuotaDenialWritesNothing(t *testing.T) {
	p := newTestProvider(t, 100)
	metrics := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	p.WithMetrics(metrics)
	ctx := context.Background()

	upload(t, p, "u1", "a.bin", strings.Repeat("a", 80))

	check := p.CheckQuota(ctx, "u1", 30)
	assert.False(t, check.Allowed)
	assert.Equal(t, int64(80), check.CurrentUsage)
	assert.Equal(t, int64(10), check.ExceededBy)

	result := p.Upload(ctx, "u1", "b.bin", strings.NewReader(strings.Repeat("b", 30)), 30)
	assert.False(t, result.Success)
	require.NotNil(t, result.QuotaCheck)
	assert.Equal(t, int64(10), result.QuotaCheck.ExceededBy)
	assert.Equal(t, ErrQuotaExceeded.Error(), result.Error)

	files, err := p.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	entries, err := os.ReadDir(filepath.Join(p.cfg.Root, "u1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QuotaDenials))
}

func TestUploadRejectsUnderstatedSize(t *testing.T) {
	p := newTestProvider(t, 10)

	result := p.Upload(context.Background(), "u1", "big.bin", strings.NewReader(strings.Repeat("x", 50)), 1)
	assert.False(t, result.Success)
	require.NotNil(t, result.QuotaCheck)
	assert.Equal(t, int64(40), result.QuotaCheck.ExceededBy)
}

func TestConcurrentUploadsRespectQuota(t *testing.T) {
	p := newTestProvider(t, 100)
	body := strings.Repeat("c", 60)

	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result := p.Upload(context.Background(), "u1", "c.bin", strings.NewReader(body), int64(len(body)))
			results[i] = result.Success
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	usage, err := p.Usage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), usage.Used)
}

func TestQuotaIsPerUser(t *testing.T) {
	p := newTestProvider(t, 10)
	upload(t, p, "u1", "a", "0123456789")

	assert.True(t, p.CheckQuota(context.Background(), "u2", 10).Allowed)
	assert.False(t, p.CheckQuota(context.Background(), "u1", 1).Allowed)
}

func TestListNewestFirstWithPattern(t *testing.T) {
	p := newTestProvider(t, 1024)
	clock := time.Unix(1000, 0)
	p.WithClock(func() time.Time { clock = clock.Add(time.Second); return clock })

	upload(t, p, "u1", "report.txt", "1")
	upload(t, p, "u1", "photo.png", "2")
	upload(t, p, "u1", "draft.txt", "3")
	upload(t, p, "u2", "other.txt", "4")

	files, err := p.List(context.Background(), "u1", "")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "draft.txt", files[0].Filename)
	assert.Equal(t, "report.txt", files[2].Filename)

	files, err = p.List(context.Background(), "u1", "*.txt")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = p.List(context.Background(), "u1", "[")
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestDeleteRemovesBlobAndMetadata(t *testing.T) {
	p := newTestProvider(t, 1024)
	ctx := context.Background()

	fileID := upload(t, p, "u1", "a.txt", "data")
	rec, err := p.Get(ctx, "u1", fileID)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Delete(ctx, "u2", fileID, rec.StoragePath), ErrNotFound)
	assert.ErrorIs(t, p.Delete(ctx, "u1", fileID, "u1/elsewhere"), ErrInvalidPath)

	require.NoError(t, p.Delete(ctx, "u1", fileID, rec.StoragePath))

	_, err = p.Get(ctx, "u1", fileID)
	assert.ErrorIs(t, err, ErrNotFound)
	full, _ := p.diskPath(rec.StoragePath)
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
}

func TestAdminResetEmptiesUserStorage(t *testing.T) {
	p := newTestProvider(t, 1024)
	ctx := context.Background()

	upload(t, p, "u1", "a.txt", "one")
	upload(t, p, "u1", "b.txt", "two")
	upload(t, p, "u2", "c.txt", "three")

	stray := filepath.Join(p.cfg.Root, "u1", "nested", "orphan.zst")
	require.NoError(t, os.MkdirAll(filepath.Dir(stray), 0755))
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0644))

	removed, err := p.AdminReset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	files, err := p.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, files)
	_, err = os.Stat(filepath.Join(p.cfg.Root, "u1"))
	assert.True(t, os.IsNotExist(err))

	files, err = p.List(ctx, "u2", "")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSignedDownloadURL(t *testing.T) {
	p := newTestProvider(t, 1024)
	now := time.Unix(5000, 0)
	p.WithClock(func() time.Time { return now })

	link, expires, err := p.DownloadURL("u1/abc-a.txt")
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultURLTTL), expires)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, DownloadPath, parsed.Path)
	q := parsed.Query()

	assert.NoError(t, p.VerifyDownload(q.Get("path"), q.Get("expires"), q.Get("sig")))
	assert.ErrorIs(t, p.VerifyDownload("u1/other", q.Get("expires"), q.Get("sig")), ErrBadSignature)

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, p.VerifyDownload(q.Get("path"), q.Get("expires"), q.Get("sig")), ErrURLExpired)

	_, _, err = p.DownloadURL("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestOpenUnknownPath(t *testing.T) {
	p := newTestProvider(t, 1024)
	_, _, err := p.Open(context.Background(), "u1/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadDetectsBinaryType(t *testing.T) {
	p := newTestProvider(t, 1024)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)

	result := p.Upload(context.Background(), "u1", "img", bytes.NewReader(png), int64(len(png)))
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "image/png", result.File.MimeType)
}
