package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"jobtracker-backend/internal/shared/storage/object"
	"jobtracker-backend/internal/shared/util"
)

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestSaveUploadsUnderHashedUserKey(t *testing.T) {
	client := newFakeS3()
	store := NewWithClient(client, Options{Bucket: "resumes", Prefix: "/uploads/", KMSKeyID: "kms-1"})
	body := "%PDF-1.4\n" + strings.Repeat("x", 1024)

	key, size, mimeType, err := store.Save(context.Background(), "user-1", "Jane Resume.pdf", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, util.HashUserKey("user-1")+"/") || !strings.HasSuffix(key, "_Jane Resume.pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if size != int64(len(body)) || mimeType != "application/pdf" {
		t.Fatalf("unexpected size %d or mime %q", size, mimeType)
	}
	if len(client.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(client.puts))
	}
	put := client.puts[0]
	if aws.ToString(put.Key) != "uploads/"+key || aws.ToString(put.Bucket) != "resumes" {
		t.Fatalf("unexpected put target %s/%s", aws.ToString(put.Bucket), aws.ToString(put.Key))
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-1" {
		t.Fatalf("expected kms encryption, got %s", put.ServerSideEncryption)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != body {
		t.Fatalf("round trip mismatch")
	}
}

func TestSaveRejectsTraversal(t *testing.T) {
	store := NewWithClient(newFakeS3(), Options{Bucket: "resumes"})
	if _, _, _, err := store.Save(context.Background(), "user-1", "../escape.pdf", strings.NewReader("x")); !errors.Is(err, util.ErrInvalidFileName) {
		t.Fatalf("expected ErrInvalidFileName, got %v", err)
	}
}

func TestOpenMissingKeyIsNotFound(t *testing.T) {
	store := NewWithClient(newFakeS3(), Options{Bucket: "resumes"})
	if _, err := store.Open(context.Background(), "missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected object.ErrNotFound, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Region: "us-east-1"}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestDeleteUsesPrefixedKey(t *testing.T) {
	client := newFakeS3()
	store := NewWithClient(client, Options{Bucket: "resumes", Prefix: "uploads/"})
	ctx := context.Background()
	key, _, _, err := store.Save(ctx, "user-1", "resume.pdf", strings.NewReader("%PDF-1.4\n"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(client.objects) != 1 {
		t.Fatalf("expected one object, got %d", len(client.objects))
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(client.objects) != 0 {
		t.Fatalf("expected object removed, remaining %v", client.objects)
	}
}
