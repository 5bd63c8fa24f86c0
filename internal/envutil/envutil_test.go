package envutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIn_CaseFolded(t *testing.T) {
	environ := []string{"PATH=/bin", "Tmp=/var/tmp", "TMP=/other"}

	v, ok := LookupIn(environ, "tmp")
	assert.True(t, ok)
	assert.Equal(t, "/var/tmp", v, "first match wins")

	v, ok = LookupIn(environ, "PaTh")
	assert.True(t, ok)
	assert.Equal(t, "/bin", v)
}

func TestLookupIn_Absent(t *testing.T) {
	v, ok := LookupIn([]string{"HOME=/root"}, "TEMP")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestLookupIn_ValueWithEquals(t *testing.T) {
	v, ok := LookupIn([]string{"OPTS=a=b=c"}, "opts")
	assert.True(t, ok)
	assert.Equal(t, "a=b=c", v)
}

func TestLookupIn_SkipsMalformed(t *testing.T) {
	v, ok := LookupIn([]string{"garbage", "X=1"}, "x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestLookup_ProcessEnvironment(t *testing.T) {
	t.Setenv("CONFORM_ENVUTIL_LOOKUP", "yes")

	v, ok := Lookup("conform_envutil_lookup")
	assert.True(t, ok)
	assert.Equal(t, "yes", v)
}

func TestGet_Fallback(t *testing.T) {
	assert.Equal(t, "dflt", Get("CONFORM_ENVUTIL_SURELY_UNSET", "dflt"))
}
