package version

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anisan-cli/skipsync/constant"
)

// ErrMalformed is returned for tags that are not versions.
var ErrMalformed = errors.New("malformed version")

// release is a parsed release tag.
type release struct {
	parts      [3]int
	prerelease string
}

// parse reads tags such as 1.2.3, v1.2, skipsync-v1.2.3, v1.3.0-rc.1 or 1.2.3+build.5.
// Missing minor and patch numbers are zero.
func parse(tag string) (release, error) {
	var r release

	s := strings.TrimPrefix(strings.TrimSpace(tag), constant.App+"-")
	s = strings.TrimPrefix(s, "v")
	s, _, _ = strings.Cut(s, "+")
	s, r.prerelease, _ = strings.Cut(s, "-")

	fields := strings.Split(s, ".")
	if len(fields) > len(r.parts) {
		return r, fmt.Errorf("%w: %q", ErrMalformed, tag)
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return r, fmt.Errorf("%w: %q", ErrMalformed, tag)
		}
		r.parts[i] = n
	}

	return r, nil
}

// Compare orders two release tags: 1 if a is later than b, -1 if earlier, 0 if they
// name the same release. A pre-release comes before the release it leads to.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for i := range av.parts {
		if c := cmp.Compare(av.parts[i], bv.parts[i]); c != 0 {
			return c, nil
		}
	}

	switch {
	case av.prerelease == bv.prerelease:
		return 0, nil
	case av.prerelease == "":
		return 1, nil
	case bv.prerelease == "":
		return -1, nil
	default:
		return strings.Compare(av.prerelease, bv.prerelease), nil
	}
}
