package utils

import (
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLine = []byte("123 432 1 23421 100 2341\n")

func Benchmark_StdFields(b *testing.B) {
	ints := make([]uint64, 6)
	for i := 0; i < b.N; i++ {
		for j, f := range strings.Fields(string(testLine)) {
			ints[j], _ = strconv.ParseUint(f, 10, 64)
		}
	}
}

func Benchmark_SplitFields(b *testing.B) {
	fields := make([]string, 6)
	ints := make([]uint64, 6)
	for i := 0; i < b.N; i++ {
		n := SplitFields(fields, testLine)
		for j := 0; j < n; j++ {
			ints[j], _ = ParseUint64(fields[j])
		}
	}
}

func Test_ParseUint64(t *testing.T) {
	fields := make([]string, 8)
	require.Equal(t, 6, SplitFields(fields, testLine))
	want := []uint64{123, 432, 1, 23421, 100, 2341}
	for i, w := range want {
		got, ok := ParseUint64(fields[i])
		assert.True(t, ok)
		assert.Equal(t, w, got)
	}

	got, ok := ParseUint64("18446744073709551615")
	assert.True(t, ok)
	assert.Equal(t, uint64(18446744073709551615), got)
	for _, bad := range []string{"", "12a", "-1", "18446744073709551616", "1.5"} {
		_, ok := ParseUint64(bad)
		assert.False(t, ok, bad)
	}
}

func Test_SplitFields(t *testing.T) {
	fields := make([]string, 10)
	for _, line := range []string{
		"hello world this is a test",
		"hello world this is a test ",
		" hello world this is a test",
		"hello   world  this  is      a    test",
		"hello\tworld\tthis\tis\ta\ttest",
		"\thello world this is a test\t",
		"hello\t world\t this\t is\ta\ttest\r\n",
	} {
		n := SplitFields(fields, []byte(line))
		assert.Equal(t, []string{"hello", "world", "this", "is", "a", "test"}, fields[:n], "%q", line)
	}

	assert.Zero(t, SplitFields(fields, []byte(" \t\r")))
	short := make([]string, 2)
	assert.Equal(t, 2, SplitFields(short, []byte("1 2 3 4")))
	assert.Equal(t, "2", short[1])
}

func Test_LineScanner(t *testing.T) {
	input := "0 1\n1 2 0.5\n\n# comment\n2 3"
	// One byte per read, to cross buffer refills.
	s := NewLineScanner(iotest.OneByteReader(strings.NewReader(input)), 16)
	var got []string
	for line := s.Scan(); line != nil; line = s.Scan() {
		got = append(got, string(line))
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"0 1", "1 2 0.5", "", "# comment", "2 3"}, got)

	s = NewLineScanner(strings.NewReader("short\nthis line does not fit\n"), 8)
	assert.Equal(t, "short", string(s.Scan()))
	assert.Nil(t, s.Scan())
	assert.ErrorIs(t, s.Err(), ErrLineTooLong)

	s = NewLineScanner(iotest.ErrReader(iotest.ErrTimeout), 8)
	assert.Nil(t, s.Scan())
	assert.ErrorIs(t, s.Err(), iotest.ErrTimeout)
}
