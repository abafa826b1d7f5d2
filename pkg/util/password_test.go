package util

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-site-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-site-pass" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword("s3cret-site-pass", hash) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Fatalf("wrong password accepted")
	}
}
