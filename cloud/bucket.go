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

// Package cloud opens blob storage buckets on the providers the
// training workflows store their datasets on.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where
// provider is the name of the storage provider and name is the name of
// the bucket. The currently accepted storage providers are "file" for
// the local filesystem (e.g., for testing), "gs" for Google Cloud
// Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileBucket(u.Hostname() + u.Path)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("cloud.OpenBucket: invalid provider %s", u.Scheme)
	}
}

// OpenLocation splits a dataset location into a bucket and the key
// prefix of the dataset within it. A location with a provider scheme,
// such as 'gs://bucket/sub/data.zarr', opens the provider's bucket and
// returns "sub/data.zarr"; a plain filesystem path opens a local
// bucket rooted at the path itself, creating the directory if needed,
// and returns an empty prefix.
func OpenLocation(ctx context.Context, location string) (*blob.Bucket, string, error) {
	if !strings.Contains(location, "://") {
		if err := os.MkdirAll(location, 0o755); err != nil {
			return nil, "", fmt.Errorf("cloud.OpenLocation: %v", err)
		}
		bucket, err := fileBucket(location)
		if err != nil {
			return nil, "", err
		}
		return bucket, "", nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("cloud.OpenLocation: %v", err)
	}
	if u.Scheme == "file" {
		return OpenLocation(ctx, u.Hostname()+u.Path)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Hostname())
	if err != nil {
		return nil, "", err
	}
	return bucket, strings.TrimLeft(u.Path, "/"), nil
}

// fileBucket serves a local directory. Metadata sidecar files are
// disabled so the directory stays a plain zarr tree.
func fileBucket(dir string) (*blob.Bucket, error) {
	return fileblob.OpenBucket(dir, &fileblob.Options{Metadata: fileblob.MetadataDontWrite})
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s := session.Must(session.NewSession(c))
	return s3blob.OpenBucket(ctx, s, name, nil)
}
