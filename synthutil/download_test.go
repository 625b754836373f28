package synthutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func helperLog() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func TestIsBlob(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"gs://bucket/data.zarr", true},
		{"s3://bucket/data.zarr", true},
		{"file:///tmp/data.zarr", true},
		{"/tmp/data.zarr", false},
		{"https://example.com/schema.json", false},
		{"schema.json", false},
	}
	for _, test := range tests {
		if got := IsBlob(test.path); got != test.want {
			t.Errorf("IsBlob(%q) = %v; want %v", test.path, got, test.want)
		}
	}
}

func TestMaybeDownloadLocal(t *testing.T) {
	k, err := maybeDownload(context.Background(), "/dev/null", helperLog())
	if err != nil {
		t.Fatal(err)
	}
	if k != "/dev/null" {
		t.Error("Expected /dev/null, got ", k)
	}
}

func TestMaybeDownloadLocal2(t *testing.T) {
	k, err := maybeDownload(context.Background(), "/blah/test/", helperLog())
	if err != nil {
		t.Fatal(err)
	}
	if k != "/blah/test/" {
		t.Error("Expected /blah/test/, got ", k)
	}
}

func TestMaybeDownloadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version": 2}`))
	}))
	defer srv.Close()

	k, err := maybeDownload(context.Background(), srv.URL+"/schema.json", helperLog())
	if err != nil {
		t.Fatal(err)
	}
	if k == srv.URL+"/schema.json" {
		t.Fatal("expected a local copy, got the URL back")
	}
	b, err := os.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"version": 2}` {
		t.Errorf("downloaded %q", b)
	}
}

func TestMaybeDownloadFileBlob(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(src, []byte("blob contents"), 0644); err != nil {
		t.Fatal(err)
	}

	k, err := maybeDownload(context.Background(), "file://"+src, helperLog())
	if err != nil {
		t.Fatal(err)
	}
	if k == src {
		t.Fatal("expected a copy in a temporary directory")
	}
	b, err := os.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "blob contents" {
		t.Errorf("downloaded %q", b)
	}
}

func TestUploadBytes(t *testing.T) {
	dir := t.TempDir()
	dest := "file://" + filepath.Join(dir, "nested", "schema.json")
	if err := uploadBytes(context.Background(), dest, []byte("uploaded")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "nested", "schema.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "uploaded" {
		t.Errorf("uploaded %q", b)
	}
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.nc")
	if err := os.WriteFile(src, []byte("netcdf bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	dest := "file://" + filepath.Join(dir, "out", "data.nc")
	if err := uploadFile(context.Background(), src, dest); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "out", "data.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "netcdf bytes" {
		t.Errorf("uploaded %q", b)
	}
}
