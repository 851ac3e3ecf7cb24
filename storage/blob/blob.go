// Copyright 2024 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blob

import (
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorse-io/dsplit/config"
	"github.com/juju/errors"
)

// Store reads and writes named objects below a root directory or bucket prefix.
type Store interface {
	// Open a file for reading.
	Open(name string) (io.ReadCloser, error)
	// Create a file for writing, overwriting any existing one. Close must be
	// called, and it returns the first write or upload error.
	Create(name string) (io.WriteCloser, error)
}

// Open returns the store for location. Supported schemes are s3://bucket/prefix,
// gs://bucket/prefix and azblob://container/prefix. Anything else is a local
// directory.
func Open(location string, cfg config.StorageConfig) (Store, error) {
	u, ok := parseURL(location)
	if !ok {
		return NewPOSIX(location), nil
	}
	prefix := strings.Trim(u.Path, "/")
	switch u.Scheme {
	case config.SchemeS3:
		s3Config := cfg.S3
		s3Config.Bucket = u.Host
		s3Config.Prefix = prefix
		return NewS3(s3Config)
	case config.SchemeGCS:
		gcsConfig := cfg.GCS
		gcsConfig.Bucket = u.Host
		gcsConfig.Prefix = prefix
		return NewGCS(gcsConfig)
	case config.SchemeAzure:
		return NewAzureBlob(cfg.Azure, u.Host, prefix)
	case "file":
		return NewPOSIX(u.Path), nil
	default:
		return nil, errors.NotSupportedf("storage scheme %s", u.Scheme)
	}
}

// SplitLocation splits the location of a file into the location of its store
// and its name inside that store.
func SplitLocation(location string) (string, string) {
	if u, ok := parseURL(location); ok {
		dir, name := path.Split(u.Path)
		u.Path = dir
		return u.String(), name
	}
	return filepath.Dir(location), filepath.Base(location)
}

// parseURL parses location as a URL with a scheme. Windows drive letters are
// not schemes.
func parseURL(location string) (*url.URL, bool) {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		return nil, false
	}
	return u, true
}

// objectName joins prefix and name with forward slashes.
func objectName(prefix, name string) string {
	return path.Join(prefix, filepath.ToSlash(name))
}

// uploadWriter feeds an upload running in another goroutine. Close waits for
// the upload to finish.
type uploadWriter struct {
	*io.PipeWriter
	done chan error
}

func newUploadWriter(upload func(r io.Reader) error) *uploadWriter {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := upload(pr)
		_ = pr.CloseWithError(err)
		done <- err
	}()
	return &uploadWriter{PipeWriter: pw, done: done}
}

func (w *uploadWriter) Close() error {
	if err := w.PipeWriter.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(<-w.done)
}
