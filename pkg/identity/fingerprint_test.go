package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministicForSameInputs(t *testing.T) {
	span := NormalizeSpan([]string{"func foo() {  ", "  return 1", "}"})
	fp1 := Fingerprint("code_smell", "a.go", span)
	fp2 := Fingerprint("code_smell", "a.go", span)
	require.Equal(t, fp1, fp2)
}

func TestFingerprintDiffersOnSpan(t *testing.T) {
	span1 := NormalizeSpan([]string{"a"})
	span2 := NormalizeSpan([]string{"b"})
	require.NotEqual(t,
		Fingerprint("code_smell", "a.go", span1),
		Fingerprint("code_smell", "a.go", span2),
	)
}

func TestNormalizeSpanStripsTrailingWhitespace(t *testing.T) {
	got := NormalizeSpan([]string{"line one   ", "line two\t"})
	require.Equal(t, "line one\nline two", got)
}

func TestFingerprintFallsBackToTitleWithoutSpan(t *testing.T) {
	fp := Fingerprint("dead_code", "b.go", "Unused helper function")
	require.Len(t, fp, 64)
}
