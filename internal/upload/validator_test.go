package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr error
	}{
		{name: "plain chat export", file: "chat.txt", size: 100, wantErr: nil},
		{name: "exactly at limit", file: "chat.txt", size: MaxSizeBytes, wantErr: nil},
		{name: "empty file", file: "empty.txt", size: 0, wantErr: nil},
		{name: "one byte over limit", file: "chat.txt", size: MaxSizeBytes + 1, wantErr: ErrFileTooLarge},
		{name: "zip archive", file: "chat.zip", size: 100, wantErr: ErrWrongFileType},
		{name: "uppercase suffix", file: "CHAT.TXT", size: 100, wantErr: ErrWrongFileType},
		{name: "suffix in middle", file: "chat.txt.bak", size: 100, wantErr: ErrWrongFileType},
		{name: "no extension", file: "chat", size: 100, wantErr: ErrWrongFileType},
		{name: "wrong type wins over size", file: "chat.csv", size: MaxSizeBytes * 2, wantErr: ErrWrongFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Name: tt.file, SizeBytes: tt.size}
			err := Validate(c)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !IsValidationError(err) {
				t.Errorf("expected a validation error, got %T", err)
			}
		})
	}
}

func TestCandidateTagsMatchLimits(t *testing.T) {
	typ := reflect.TypeOf(Candidate{})

	name, _ := typ.FieldByName("Name")
	if tag := name.Tag.Get("validate"); tag != "endswith="+AcceptedSuffix {
		t.Errorf("Name tag = %q", tag)
	}

	size, _ := typ.FieldByName("SizeBytes")
	if tag := size.Tag.Get("validate"); tag != "lte="+strconv.FormatInt(MaxSizeBytes, 10) {
		t.Errorf("SizeBytes tag = %q", tag)
	}

	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("validate")
		if tag == "" {
			continue
		}
		rule := strings.SplitN(tag, "=", 2)[0]
		if _, ok := ruleKinds[rule]; !ok {
			t.Errorf("tag %q on %s has no validation kind", rule, typ.Field(i).Name)
		}
	}
}

func TestValidationErrorMessages(t *testing.T) {
	err := Validate(Candidate{Name: "photo.png", SizeBytes: 10})
	if err.Error() != "Please upload a .txt file exported from WhatsApp" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	err = Validate(Candidate{Name: "chat.txt", SizeBytes: MaxSizeBytes + 1})
	if err.Error() != "File size exceeds 10MB limit" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	if errors.Is(err, ErrWrongFileType) {
		t.Error("size error should not match wrong-type sentinel")
	}
}

func TestNewCandidate(t *testing.T) {
	c := NewCandidate("chat.txt", []byte("hello"))
	if c.SizeBytes != 5 {
		t.Errorf("SizeBytes = %d, want 5", c.SizeBytes)
	}

	rc, err := c.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want hello", data)
	}
}

func TestCandidateFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "group.txt")
	if err := os.WriteFile(path, []byte("12/01/2024, 10:00 - Ana: hi"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	c, err := CandidateFromPath(path)
	if err != nil {
		t.Fatalf("CandidateFromPath() error = %v", err)
	}
	if c.Name != "group.txt" {
		t.Errorf("Name = %q, want group.txt", c.Name)
	}
	if c.SizeBytes != 27 {
		t.Errorf("SizeBytes = %d, want 27", c.SizeBytes)
	}

	if _, err := CandidateFromPath(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := CandidateFromPath(dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestCandidateWithoutContent(t *testing.T) {
	c := Candidate{Name: "chat.txt"}
	if _, err := c.Open(); err == nil {
		t.Error("expected error opening candidate without content")
	}
}
