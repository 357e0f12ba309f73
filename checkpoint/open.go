// SPDX-License-Identifier: MIT

package checkpoint

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Open builds a Store from a URL:
//
//	file:///var/lib/sseq  or a bare path  filesystem directory
//	mem://                                 process memory
//	badger:///var/lib/sseq.badger          BadgerDB directory (badger://memory for in-memory)
//	sqlite:///var/lib/sseq.db              SQLite database file
//	s3://bucket/prefix?region=..&endpoint=..&path_style=true
func Open(ctx context.Context, raw string) (Store, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnknownScheme)
	}
	if !strings.Contains(raw, "://") {
		return NewFS(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: parse %q: %w", raw, err)
	}
	path := localPath(u)

	switch u.Scheme {
	case "file":
		return NewFS(path)
	case "mem", "memory":
		return NewMemory(), nil
	case "badger":
		if u.Host == "memory" && u.Path == "" {
			return OpenBadger(BadgerConfig{InMemory: true})
		}
		return OpenBadger(BadgerConfig{Path: path, SyncWrites: u.Query().Get("sync") == "true"})
	case "sqlite":
		return OpenSQLite(ctx, path)
	case "s3":
		q := u.Query()
		st, err := OpenS3(ctx, S3Config{
			Bucket:    u.Host,
			Prefix:    strings.TrimPrefix(u.Path, "/"),
			Region:    q.Get("region"),
			Endpoint:  q.Get("endpoint"),
			PathStyle: q.Get("path_style") == "true",
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, u.Scheme)
	}
}

// localPath joins host and path so that both "file:///abs" and "file://rel/dir"
// work.
func localPath(u *url.URL) string {
	if u.Host == "" {
		return filepath.FromSlash(u.Path)
	}

	return filepath.FromSlash(u.Host + u.Path)
}
