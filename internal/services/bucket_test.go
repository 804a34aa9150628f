package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func TestStorageRefRoundTrip(t *testing.T) {
	ref := StorageRef("edusloth-dev-documents", "user-1/document/abc.pdf")
	if ref != "s3://edusloth-dev-documents/user-1/document/abc.pdf" {
		t.Fatalf("unexpected ref %q", ref)
	}
	bucket, key, ok := ParseStorageRef(ref)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if bucket != "edusloth-dev-documents" || key != "user-1/document/abc.pdf" {
		t.Fatalf("unexpected parse result %q %q", bucket, key)
	}
}

func TestParseStorageRef_Rejects(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"local path", "uploads/abc.pdf"},
		{"missing key", "s3://bucket-only"},
		{"empty bucket", "s3:///key"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := ParseStorageRef(tt.ref); ok {
				t.Fatalf("expected parse to fail for %q", tt.ref)
			}
		})
	}
}

func TestDescribeStorageError(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"NoSuchBucket", "storage bucket does not exist"},
		{"AccessDenied", "storage access denied"},
		{"InvalidAccessKeyId", "storage credentials invalid"},
		{"SignatureDoesNotMatch", "storage request signature mismatch"},
		{"NoSuchKey", "storage object not found"},
		{"SomethingElse", "storage unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: tt.code, Message: "boom"})
			if got := DescribeStorageError(err); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
	if got := DescribeStorageError(errors.New("plain")); got != "storage unavailable" {
		t.Fatalf("non-API error should be generic, got %q", got)
	}
}
