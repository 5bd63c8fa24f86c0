package corpus

import (
	"bytes"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/roach88/conform/internal/suite"
)

// codecNames maps test parameters to the IANA names they look up.
var codecNames = map[string]string{
	"utf8":      "UTF-8",
	"latin1":    "ISO-8859-1",
	"shift_jis": "Shift_JIS",
	"euc_kr":    "EUC-KR",
	"koi8_r":    "KOI8-R",
	"utf7":      "UTF-7",
}

// Codecs builds the test_codecs upstream module. It checks codec lookup by
// IANA name and a few encode/decode round trips.
func Codecs() *suite.Module {
	mod := suite.NewModule("test_codecs")

	params := make([]string, 0, len(codecNames))
	for p := range codecNames {
		params = append(params, p)
	}
	mod.Class("LookupTests", nil).
		Parametrize("test_lookup", params, func(t *suite.T, param string) {
			name := codecNames[param]
			enc, err := ianaindex.IANA.Encoding(name)
			require.NoError(t, err)
			require.NotNil(t, enc, "no codec for %s", name)
		}).
		Add("test_lookup_case_insensitive", func(t *suite.T) {
			lower, err := ianaindex.IANA.Encoding("iso-8859-1")
			require.NoError(t, err)
			upper, err := ianaindex.IANA.Encoding("ISO-8859-1")
			require.NoError(t, err)
			assert.Equal(t, upper, lower)
		}).
		Add("test_unknown", func(t *suite.T) {
			_, err := ianaindex.IANA.Encoding("no-such-codec")
			assert.Error(t, err)
		})

	mod.Class("RoundTripTests", nil).
		Add("test_latin1", func(t *suite.T) {
			roundTrip(t, charmap.ISO8859_1, "café", []byte{'c', 'a', 'f', 0xe9})
		}).
		Add("test_koi8_r", func(t *suite.T) {
			roundTrip(t, charmap.KOI8R, "мир", []byte{0xcd, 0xc9, 0xd2})
		}).
		Add("test_utf16_bom", func(t *suite.T) {
			enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
			roundTrip(t, enc, "hi", []byte{0xff, 0xfe, 'h', 0, 'i', 0})
		}).
		Add("test_unencodable", func(t *suite.T) {
			_, err := charmap.ISO8859_1.NewEncoder().String("€")
			assert.Error(t, err)
		}).
		Add("test_strict_decode", func(t *suite.T) {
			// Strict decoding must reject a lone continuation byte.
			_, err := unicode.UTF8.NewDecoder().Bytes([]byte{'a', 0x80})
			require.Error(t, err, "invalid UTF-8 decoded without error")
		}).
		Add("test_replace_decode", func(t *suite.T) {
			out, err := unicode.UTF8.NewDecoder().String("a\x80")
			require.NoError(t, err)
			assert.True(t, strings.ContainsRune(out, '�'))
		})

	return mod
}

func roundTrip(t *suite.T, enc encoding.Encoding, text string, want []byte) {
	t.Helper()
	got, err := enc.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got), "encode %q: got % x, want % x", text, got, want)

	back, err := enc.NewDecoder().Bytes(got)
	require.NoError(t, err)
	assert.Equal(t, text, string(back))
}
