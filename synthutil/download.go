/*
Copyright © 2026 the fv3net authors.
This file is part of fv3net.

fv3net is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fv3net is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fv3net.  If not, see <http://www.gnu.org/licenses/>.
*/

package synthutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"

	"github.com/oelbert/fv3net/cloud"
)

// IsBlob returns whether the given path represents a blob storage
// location (i.e., if it starts with 'gs://', 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// maybeDownload checks if the input is an existing file locally. If it
// is not, and the path is an http(s) URL or a blob storage location,
// the file is downloaded to a temporary directory, retrying with
// exponential backoff, and the path of the local copy is returned.
// Paths that are neither are returned unchanged; opening them later
// reports the underlying problem.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, log)
	}
	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns the
// path to the downloaded file.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	dir, err := os.MkdirTemp("", "synth")
	if err != nil {
		return "", fmt.Errorf("synthutil: creating temporary download directory: %v", err)
	}
	out := filepath.Join(dir, filepath.Base(path))
	err = backoff.RetryNotify(
		func() error {
			resp, err := http.Get(path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("downloading '%s': %s", path, resp.Status)
			}
			w, err := os.Create(out)
			if err != nil {
				return err
			}
			defer w.Close()
			_, err = io.Copy(w, resp.Body)
			return err
		},
		backoff.WithContext(backoff.NewExponentialBackOff(), ctx),
		func(err error, d time.Duration) {
			log.Printf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	bucket, key, err := openFileBlob(ctx, path)
	if err != nil {
		return "", err
	}
	defer bucket.Close()
	dir, err := os.MkdirTemp("", "synth")
	if err != nil {
		return "", fmt.Errorf("synthutil: creating temporary download directory: %v", err)
	}
	out := filepath.Join(dir, filepath.Base(path))
	err = backoff.RetryNotify(
		func() error {
			b, err := bucket.ReadAll(ctx, key)
			if err != nil {
				return err
			}
			return os.WriteFile(out, b, 0644)
		},
		backoff.WithContext(backoff.NewExponentialBackOff(), ctx),
		func(err error, d time.Duration) {
			log.Printf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

// openFileBlob opens the bucket holding the blob at path and returns
// it together with the blob's key within the bucket. For file:// URLs
// the bucket is rooted at the file's directory, which is created if it
// does not exist yet.
func openFileBlob(ctx context.Context, path string) (*blob.Bucket, string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, "", fmt.Errorf("synthutil: parsing '%s': %v", path, err)
	}
	if u.Scheme == "file" {
		p := u.Hostname() + u.Path
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, "", fmt.Errorf("synthutil: creating '%s': %v", filepath.Dir(p), err)
		}
		bucket, err := cloud.OpenBucket(ctx, "file://"+filepath.Dir(p))
		if err != nil {
			return nil, "", err
		}
		return bucket, filepath.Base(p), nil
	}
	bucket, err := cloud.OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return nil, "", err
	}
	return bucket, strings.TrimPrefix(u.Path, "/"), nil
}
