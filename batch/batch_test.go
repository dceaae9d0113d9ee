package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	input := strings.Join([]string{
		"a3[bc]4[d]e",
		"",
		"2[a",
		"   ",
		"2[3[x]y]\r",
		"a3",
	}, "\n")

	var out bytes.Buffer
	sum, err := Run(context.Background(), strings.NewReader(input), &out, Options{Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 4, Valid: 2, Invalid: 2}, sum)
	assert.Equal(t, ""+
		"a3[bc]4[d]e\tabcbcbcdddde\n"+
		"2[a\terror: invalid bracket positioning\n"+
		"2[3[x]y]\txxxyxxxy\n"+
		"a3\terror: invalid character positioning\n",
		out.String())
}

func TestRun_PreservesOrder(t *testing.T) {
	var in, want strings.Builder
	for i := 1; i <= 500; i++ {
		line := fmt.Sprintf("x%d[a]", i%7)
		fmt.Fprintln(&in, line)
		fmt.Fprintf(&want, "%s\tx%s\n", line, strings.Repeat("a", i%7))
	}

	for _, workers := range []int{0, 1, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var out bytes.Buffer
			sum, err := Run(context.Background(), strings.NewReader(in.String()), &out, Options{Workers: workers})
			require.NoError(t, err)
			assert.Equal(t, 500, sum.Total)
			assert.Equal(t, 500, sum.Valid)
			assert.Equal(t, want.String(), out.String())
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	sum, err := Run(context.Background(), strings.NewReader(""), &out, Options{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Empty(t, out.String())
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := strings.Repeat("3[a]\n", 1000)
	_, err := Run(ctx, strings.NewReader(input), &bytes.Buffer{}, Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRun_WriteError(t *testing.T) {
	input := strings.Repeat("3[a]\n", 10000)
	_, err := Run(context.Background(), strings.NewReader(input), failingWriter{}, Options{Workers: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_OverflowingLine(t *testing.T) {
	input := "3[a]\n9223372036854775807[ab]\n"

	var out bytes.Buffer
	sum, err := Run(context.Background(), strings.NewReader(input), &out, Options{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 2, Valid: 1, Invalid: 1}, sum)
	assert.Equal(t, ""+
		"3[a]\taaa\n"+
		"9223372036854775807[ab]\terror: unpacked length overflows\n",
		out.String())
}

func TestRun_LineTooLong(t *testing.T) {
	input := strings.Repeat("a", maxLineBytes+1)
	_, err := Run(context.Background(), strings.NewReader(input), &bytes.Buffer{}, Options{Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
}
