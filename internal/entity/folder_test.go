package entity

import (
	"regexp"
	"testing"
	"time"
)

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jane@example.com", "jane_example_com"},
		{"Jane Doe", "Jane_Doe"},
		{"already-safe_42", "already-safe_42"},
		{"ünïcode", "_n_code"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeIdentifier(tt.in); got != tt.want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubmissionFolder_PassesValidator(t *testing.T) {
	users := []string{"jane@example.com", "a b/c", "x", "../../etc/passwd", "日本"}

	for _, u := range users {
		folder := SubmissionFolder(u, "sub_1723456789012_abc123xyz")
		if !ValidateFolderPath(folder) {
			t.Errorf("SubmissionFolder(%q) = %q, rejected by validator", u, folder)
		}
	}
}

func TestValidateFolderPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"users/jane/submissions/sub_1", true},
		{"users/jane/submissions/", false},
		{"users/jane", false},
		{"users/ja ne/submissions/sub_1", false},
		{"users/jane/submissions/sub_1/image_0.jpg", false},
		{"other/jane/submissions/sub_1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateFolderPath(tt.path); got != tt.want {
			t.Errorf("ValidateFolderPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName(3, ".JPG"); got != "image_3.jpg" {
		t.Fatalf("got %q", got)
	}
	if got := ObjectName(0, ""); got != "image_0" {
		t.Fatalf("got %q", got)
	}
}

func TestNewSubmissionID(t *testing.T) {
	now := time.UnixMilli(1723456789012)
	shape := regexp.MustCompile(`^sub_1723456789012_[0-9a-z]{9}$`)

	seen := make(map[string]struct{})
	for range 100 {
		id, err := NewSubmissionID(now)
		if err != nil {
			t.Fatal(err)
		}
		if !shape.MatchString(id) {
			t.Fatalf("unexpected id %q", id)
		}
		seen[id] = struct{}{}
	}

	if len(seen) < 99 {
		t.Fatalf("ids collide too often: %d unique of 100", len(seen))
	}
}

func TestUserInfo(t *testing.T) {
	u := UserInfo{Email: "  ", Name: "Jane", Project: "p"}
	if u.Valid() {
		t.Error("blank email must be invalid")
	}
	if got := u.Identifier(); got != "Jane" {
		t.Errorf("Identifier() = %q, want name fallback", got)
	}

	u.Email = "jane@example.com"
	if !u.Valid() {
		t.Error("complete user info must be valid")
	}
	if got := u.Identifier(); got != "jane@example.com" {
		t.Errorf("Identifier() = %q, want email", got)
	}
}
