package mongodb

import (
	"testing"
	"time"
)

func TestNew_ZeroAttemptsStillDials(t *testing.T) {
	m, err := New("not-a-mongodb-uri", ConnAttempts(0), ConnTimeout(time.Millisecond))
	if err == nil {
		t.Fatal("expected an error for an unusable uri")
	}
	if m != nil {
		t.Fatalf("got %+v, want nil on failed connect", m)
	}
}
