package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"

	"solver/internal/types"
)

const maxFuzzInput = 4 << 10

var headerSeeds = []string{
	"impl A as Clone",
	"impl B<_> as Clone",
	"impl B<i32> as Clone;",
	"impl B<&mut [u8]> as From<NonZero<u64>>",
	"impl Pair<_, B<?>> as From<*mut !>",
	"impl &drop Pair<bool, char>",
	"impl *[_]",
	"impl (B<(_)>) as From<str>",
	"impl Pair<B<B<B<_>>>, _,> as Clone",
	"impl",
	"impl B<",
	"impl A as Missing",
	"",
}

// newInterner declares the items every harness resolves against.
func newInterner() *types.Interner {
	in := types.NewInterner()
	in.MustAdt("A")
	in.MustAdt("B", types.ArgType)
	in.MustAdt("Pair", types.ArgType, types.ArgType)
	in.MustTrait("Clone")
	in.MustTrait("From", types.ArgType)
	return in
}

func addHeaderSeeds(f *testing.F) {
	for _, s := range headerSeeds {
		f.Add(s)
	}
	for _, s := range testdataHeaders() {
		f.Add(s)
	}
}

func addPairSeeds(f *testing.F) {
	for i, a := range headerSeeds {
		for _, b := range headerSeeds[i:] {
			f.Add(a, b)
		}
	}
}

// testdataHeaders collects impl headers from testdata manifests, if any.
func testdataHeaders() []string {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return nil
	}
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".toml" {
			return nil
		}
		var doc struct {
			Impls []struct {
				Header string `toml:"header"`
			} `toml:"impl"`
		}
		if _, err := toml.DecodeFile(path, &doc); err != nil {
			return nil
		}
		for _, im := range doc.Impls {
			if len(im.Header) <= maxFuzzInput {
				out = append(out, im.Header)
			}
		}
		return nil
	})
	return out
}
