package generators

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/roach88/conform/internal/gen"
)

// EncodingAliases maps the lower-case spellings scripts use to an IANA
// registered charset name.
var EncodingAliases = map[string]string{
	"ascii":      "us-ascii",
	"big5":       "big5",
	"cp1251":     "windows-1251",
	"cp1252":     "windows-1252",
	"cp437":      "ibm437",
	"cp866":      "ibm866",
	"cp936":      "gbk",
	"euc_jp":     "euc-jp",
	"euc_kr":     "euc-kr",
	"eucjp":      "euc-jp",
	"gb18030":    "gb18030",
	"gbk":        "gbk",
	"hz":         "hz-gb-2312",
	"iso2022_jp": "iso-2022-jp",
	"iso8859_1":  "iso-8859-1",
	"koi8_r":     "koi8-r",
	"koi8_u":     "koi8-u",
	"l1":         "iso-8859-1",
	"latin1":     "iso-8859-1",
	"latin2":     "iso-8859-2",
	"latin_1":    "iso-8859-1",
	"mac_roman":  "macintosh",
	"shift_jis":  "shift_jis",
	"sjis":       "shift_jis",
	"u8":         "utf-8",
	"utf8":       "utf-8",
	"utf_16_be":  "utf-16be",
	"utf_16_le":  "utf-16le",
	"utf_8":      "utf-8",
}

// Alias is one resolved entry of the alias table.
type Alias struct {
	Alias     string
	Canonical string
}

// ResolveAliases resolves every alias to the charset's preferred MIME name,
// or its IANA name when it has none. Charsets that are registered but have
// no implementation are left out. Entries are sorted by alias.
func ResolveAliases(aliases map[string]string) ([]Alias, error) {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Alias
	for _, alias := range keys {
		enc, err := ianaindex.IANA.Encoding(aliases[alias])
		if err != nil {
			return nil, errors.Wrapf(err, "alias %s", alias)
		}
		if enc == nil {
			continue
		}
		name, err := ianaindex.MIME.Name(enc)
		if err != nil || name == "" {
			name, err = ianaindex.IANA.Name(enc)
			if err != nil {
				return nil, errors.Wrapf(err, "alias %s: no canonical name", alias)
			}
		}
		out = append(out, Alias{Alias: alias, Canonical: name})
	}
	return out, nil
}

// WriteAliases emits a switch case per alias.
func WriteAliases(w *gen.CodeWriter) error {
	resolved, err := ResolveAliases(EncodingAliases)
	if err != nil {
		return err
	}
	for _, a := range resolved {
		w.Write(`case "%s": return "%s";`, a.Alias, a.Canonical)
	}
	return nil
}
