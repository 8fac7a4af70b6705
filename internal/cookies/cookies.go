package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT
// epoch (1601-01-01, which Chromium timestamps count from) and the Unix epoch.
const chromeEpochOffsetSeconds int64 = 11_644_473_600

// chromeToUnix converts a Chromium timestamp (microseconds since 1601-01-01)
// to a Unix timestamp.
func chromeToUnix(chromeUSec int64) int64 {
	return (chromeUSec / 1_000_000) - chromeEpochOffsetSeconds
}

// Reader extracts cookies from a Chromium profile's Cookies database so the
// scraper can reuse the operator's authenticated session.
type Reader struct {
	dbPath  string
	decrypt decryptFunc
}

func NewReader(dbPath string) *Reader {
	return &Reader{dbPath: dbPath, decrypt: newDecryptor()}
}

// Cookies reads the database and returns cookies for the given hosts (all
// cookies when no host is given). Session cookies are kept; expired ones are
// dropped. Encrypted values that cannot be decrypted are skipped with a log
// line, never a hard failure: a partial cookie set can still carry a session.
func (r *Reader) Cookies(ctx context.Context, hosts ...string) ([]*http.Cookie, error) {
	snapshot, cleanup, err := snapshotCopy(r.dbPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot cookie database: %w", err)
	}
	defer cleanup()

	dsn := "file:" + filepath.ToSlash(snapshot) + "?immutable=1"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	defer db.Close()

	metaVersion := readMetaVersion(ctx, db)

	where, args := hostWhereClause(hosts)
	rows, err := db.QueryContext(ctx, `
		SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly
		FROM cookies
		WHERE `+where+`
		ORDER BY host_key, path, name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query cookies: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var out []*http.Cookie
	for rows.Next() {
		var (
			hostKey, name, path, value string
			encrypted                  []byte
			expiresUTC                 int64
			isSecure, isHTTPOnly       int
		)
		if err := rows.Scan(&hostKey, &name, &path, &value, &encrypted, &expiresUTC, &isSecure, &isHTTPOnly); err != nil {
			return nil, fmt.Errorf("scan cookie row: %w", err)
		}

		if value == "" && len(encrypted) > 0 {
			plain, ok := r.decrypt(encrypted, metaVersion)
			if !ok {
				slog.Debug("skipping undecryptable cookie", "host", hostKey, "name", name)
				continue
			}
			value = plain
		}
		if value == "" {
			continue
		}

		cookie := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Domain:   hostKey,
			Secure:   isSecure != 0,
			HttpOnly: isHTTPOnly != 0,
		}
		// expires_utc of zero marks a session cookie, which is exactly what a
		// fresh login produces; those are kept without an expiry.
		if expiresUTC != 0 {
			expiry := time.Unix(chromeToUnix(expiresUTC), 0)
			if expiry.Before(now) {
				continue
			}
			cookie.Expires = expiry
		}
		out = append(out, cookie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cookie rows: %w", err)
	}
	return out, nil
}

// hostWhereClause matches a host exactly, with a leading dot, and any
// subdomain, for each requested host.
func hostWhereClause(hosts []string) (string, []any) {
	if len(hosts) == 0 {
		return "value != '' OR encrypted_value IS NOT NULL", nil
	}
	var clauses []string
	var args []any
	for _, host := range hosts {
		host = strings.TrimPrefix(strings.TrimSpace(host), ".")
		if host == "" {
			continue
		}
		clauses = append(clauses, "host_key = ? OR host_key = ? OR host_key LIKE ?")
		args = append(args, host, "."+host, "%."+host)
	}
	if len(clauses) == 0 {
		return "1=1", nil
	}
	return "(" + strings.Join(clauses, ") OR (") + ")", args
}

func readMetaVersion(ctx context.Context, db *sql.DB) int64 {
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value); err != nil {
		return 0
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
