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
	"os"

	"gocloud.dev/blob"
)

// uploadBytes writes b to the blob storage location given by dest.
func uploadBytes(ctx context.Context, dest string, b []byte) error {
	bucket, key, err := openFileBlob(ctx, dest)
	if err != nil {
		return fmt.Errorf("synthutil: opening bucket to upload '%s': %v", dest, err)
	}
	defer bucket.Close()
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("synthutil: opening writer to upload '%s': %v", dest, err)
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		return fmt.Errorf("synthutil: uploading '%s': %v", dest, err)
	}
	return w.Close()
}

// uploadFile copies the local file src to the blob storage location
// dest.
func uploadFile(ctx context.Context, src, dest string) error {
	r, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("synthutil: opening file '%s' for upload: %v", src, err)
	}
	defer r.Close()
	bucket, key, err := openFileBlob(ctx, dest)
	if err != nil {
		return fmt.Errorf("synthutil: opening bucket to upload '%s': %v", dest, err)
	}
	defer bucket.Close()
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("synthutil: opening writer to upload '%s': %v", dest, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("synthutil: uploading file '%s' to '%s': %v", src, dest, err)
	}
	return w.Close()
}
