// 指示: miu200521358
package merr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExtractErrorIDWalksWrappedChain(t *testing.T) {
	base := NewMError("15202", ErrorKindValidate, "mapped=%d", nil, 0)
	wrapped := fmt.Errorf("outer: %w", base)

	if got := ExtractErrorID(wrapped); got != "15202" {
		t.Fatalf("error id mismatch: got=%s want=%s", got, "15202")
	}
	if got := ExtractErrorKind(wrapped); got != ErrorKindValidate {
		t.Fatalf("error kind mismatch: got=%s want=%s", got, ErrorKindValidate)
	}
	if ExtractErrorID(errors.New("plain")) != "" {
		t.Fatalf("plain error should not carry id")
	}
}

func TestMErrorIsComparesByID(t *testing.T) {
	a := NewMError("15201", ErrorKindValidate, "a", nil)
	b := NewMError("15201", ErrorKindValidate, "b", errors.New("cause"))
	c := NewMError("15202", ErrorKindValidate, "c", nil)

	if !errors.Is(b, a) {
		t.Fatalf("same id should match")
	}
	if errors.Is(c, a) {
		t.Fatalf("different id should not match")
	}
	if b.Unwrap() == nil || b.Message() != "b" {
		t.Fatalf("cause or message lost: %v", b)
	}
}
