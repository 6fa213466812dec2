package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDigest(t *testing.T) {
	sum := SHA256Hex([]byte("wildfly"))
	d, err := ParseDigest(" SHA256:" + strings.ToUpper(sum) + " ")
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if d.Algorithm != DigestAlgorithmSHA256 || d.Hex != sum {
		t.Fatalf("unexpected digest: %+v", d)
	}

	zero, err := ParseDigest("")
	if err != nil || !zero.IsZero() {
		t.Fatalf("expected zero digest, got %+v err=%v", zero, err)
	}

	for _, bad := range []string{"abcdef", "sha256:xyz", "crc32:abcdef", "blake3:", "sha1:abcd", "sha256:abcdef", "md5:" + sum} {
		if _, err := ParseDigest(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestVerifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wildfly-20.0.1.Final.zip")
	content := []byte("archive body")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, d := range []Digest{
		{Algorithm: DigestAlgorithmSHA256, Hex: SHA256Hex(content)},
		{Algorithm: DigestAlgorithmBLAKE3, Hex: BLAKE3Hex(content)},
		{},
	} {
		if err := d.VerifyFile(path); err != nil {
			t.Fatalf("VerifyFile(%s) failed: %v", d, err)
		}
	}

	wrong := Digest{Algorithm: DigestAlgorithmMD5, Hex: "00000000000000000000000000000000"}
	err := wrong.VerifyFile(path)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestBackupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standalone.conf")
	now := time.Date(2020, 9, 1, 12, 0, 0, 0, time.UTC)

	if err := BackupFile(path, []byte("orig"), BackupNone, now); err != nil {
		t.Fatalf("BackupFile none failed: %v", err)
	}
	if _, err := os.Stat(BackupPath(path, now)); !os.IsNotExist(err) {
		t.Fatalf("expected no backup for none strategy")
	}

	if err := BackupFile(path, []byte("orig"), BackupTimestamp, now); err != nil {
		t.Fatalf("BackupFile failed: %v", err)
	}
	got, err := os.ReadFile(path + ".20200901120000.bak")
	if err != nil || string(got) != "orig" {
		t.Fatalf("unexpected backup: %q err=%v", got, err)
	}
}
