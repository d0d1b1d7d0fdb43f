package blob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"time"
)

// DefaultURLTTL is how long a signed download URL stays valid
const DefaultURLTTL = time.Hour

// DownloadPath is the route signed URLs point at
const DownloadPath = "/files/download"

// Signed URL errors
var (
	ErrBadSignature = errors.New("invalid download signature")
	ErrURLExpired   = errors.New("download link expired")
)

// DownloadURL returns a signed, time-limited URL for the blob at storagePath
func (p *Provider) DownloadURL(storagePath string) (string, time.Time, error) {
	if _, err := p.diskPath(storagePath); err != nil {
		return "", time.Time{}, err
	}

	expires := p.now().Add(p.cfg.URLTTL)
	exp := strconv.FormatInt(expires.Unix(), 10)

	q := url.Values{}
	q.Set("path", storagePath)
	q.Set("expires", exp)
	q.Set("sig", p.sign(storagePath, exp))
	return DownloadPath + "?" + q.Encode(), expires, nil
}

// VerifyDownload checks a signature produced by DownloadURL
func (p *Provider) VerifyDownload(storagePath, expires, sig string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrBadSignature
	}

	want := p.sign(storagePath, expires)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrBadSignature
	}
	if p.now().Unix() > exp {
		return ErrURLExpired
	}
	return nil
}

func (p *Provider) sign(storagePath, expires string) string {
	mac := hmac.New(sha256.New, p.cfg.SigningKey)
	mac.Write([]byte(storagePath))
	mac.Write([]byte{0})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}
