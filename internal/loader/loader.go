// Package loader fetches and decodes attribution input bundles from local
// files, HTTP(S) endpoints, and FTP servers.
package loader

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Options configures source fetching.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	UserAgent     string
}

// Loader resolves a source reference into a materialized InputBundle.
type Loader struct {
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// New creates a Loader with the given fetch options.
func New(opts Options) *Loader {
	return &Loader{
		http: NewHTTPFetcher(opts),
		ftp:  NewFTPFetcher(opts),
	}
}

// Load fetches the source and decodes it into an InputBundle. JSON sources
// carry the full bundle; CSV and XLSX sources carry clients only, leaving the
// channel arrays empty.
func (l *Loader) Load(ctx context.Context, source string) (*model.InputBundle, error) {
	ext := sourceExt(source)

	zap.L().Info("loading input bundle",
		zap.String("source", source),
		zap.String("format", ext),
	)

	switch ext {
	case ".json", "":
		rc, err := l.open(ctx, source)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck
		return DecodeBundle(rc)

	case ".csv":
		rc, err := l.open(ctx, source)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck
		clients, err := ReadClientsCSV(ctx, rc)
		if err != nil {
			return nil, err
		}
		return &model.InputBundle{Clients: clients}, nil

	case ".xlsx":
		// The XLSX reader needs a seekable file, so remote sources are
		// staged to a temp file first.
		path, cleanup, err := l.localPath(ctx, source)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		clients, err := ReadClientsXLSX(path)
		if err != nil {
			return nil, err
		}
		return &model.InputBundle{Clients: clients}, nil

	default:
		return nil, eris.Errorf("loader: unsupported source format %q", ext)
	}
}

// open returns a reader for the source, dispatching on URL scheme.
func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.http.Download(ctx, source)
	case strings.HasPrefix(source, "ftp://"):
		return l.ftp.Download(ctx, source)
	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: open %s", source)
		}
		return f, nil
	}
}

// localPath returns a filesystem path for the source, downloading remote
// sources to a temp file. The cleanup func removes any temp file created.
func (l *Loader) localPath(ctx context.Context, source string) (string, func(), error) {
	if !strings.Contains(source, "://") {
		return source, func() {}, nil
	}

	tmp, err := os.CreateTemp("", "attribution-*"+sourceExt(source))
	if err != nil {
		return "", nil, eris.Wrap(err, "loader: create temp file")
	}
	tmp.Close() //nolint:errcheck

	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	var n int64
	switch {
	case strings.HasPrefix(source, "ftp://"):
		n, err = l.ftp.DownloadToFile(ctx, source, path)
	default:
		n, err = l.http.DownloadToFile(ctx, source, path)
	}
	if err != nil {
		cleanup()
		return "", nil, err
	}

	zap.L().Debug("staged remote source",
		zap.String("source", source),
		zap.Int64("bytes", n),
	)
	return path, cleanup, nil
}

// sourceExt extracts the lowercase file extension, ignoring any query string.
func sourceExt(source string) string {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" {
		return strings.ToLower(filepath.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(source))
}
